package fastdl

import "testing"

// TestBuildChunksPartition verifies §8 testable property 1: chunk-partition
// completeness and disjointness.
func TestBuildChunksPartition(t *testing.T) {
	sizes := []int64{0, 1, ChunkSize - 1, ChunkSize, ChunkSize + 1, 3*ChunkSize + 12345}
	for _, size := range sizes {
		chunks := BuildChunks(size)
		if size <= 0 {
			if len(chunks) != 0 {
				t.Errorf("BuildChunks(%d) = %d chunks, want 0", size, len(chunks))
			}
			continue
		}

		var covered int64
		for i, c := range chunks {
			if c.Index != i {
				t.Errorf("chunk %d has Index %d", i, c.Index)
			}
			if c.Begin != covered {
				t.Errorf("chunk %d begins at %d, want %d (gap or overlap)", i, c.Begin, covered)
			}
			if c.End <= c.Begin {
				t.Errorf("chunk %d is empty: [%d, %d)", i, c.Begin, c.End)
			}
			if c.End-c.Begin > ChunkSize {
				t.Errorf("chunk %d exceeds ChunkSize: %d", i, c.End-c.Begin)
			}
			covered = c.End
		}
		if covered != size {
			t.Errorf("BuildChunks(%d) covers up to %d, want %d", size, covered, size)
		}
	}
}

func TestObjectURL(t *testing.T) {
	var hash [20]byte
	copy(hash[:], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14})
	got := objectURL("http://cdn.example.com/la/patch", hash)
	want := "http://cdn.example.com/la/patch/objects/01/0203040506070809" + "0a0b0c0d0e0f1011121314"
	if got != want {
		t.Errorf("objectURL = %q, want %q", got, want)
	}
}
