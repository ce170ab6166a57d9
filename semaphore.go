package fastdl

import "context"

// semaphore is a counting gate implemented as a buffered channel, per §5's
// "Network semaphore / disk semaphore: independent counting gates enforcing
// parallelism ceilings." Downloader.Run creates a network and a disk instance
// and passes them down to file and chunk tasks; the planner's HEAD phase uses
// its own network instance of the same size.
type semaphore chan struct{}

// newSemaphore creates a semaphore with n permits.
func newSemaphore(n int) semaphore {
	if n <= 0 {
		n = 1
	}
	return make(semaphore, n)
}

// acquire blocks until a permit is available or ctx is cancelled.
func (s semaphore) acquire(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release returns a permit to the pool.
func (s semaphore) release() {
	<-s
}
