package fastdl

// ProgressCallback defines the callback function for progress updates. The
// CLI shell wires this to a schollz/progressbar/v3 bar keyed by description
// (asset path), in the same shape as the teacher's cmd/grab ProgressManager.
type ProgressCallback func(current, total int64, description string)
