package fastdl

import (
	"context"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

// Context bundles a run's cancellation token, options, shared HTTP client,
// and logger — the handle threaded through planner, file, and chunk tasks.
// Cancelling ctx is this implementation's answer to §5's "an implementation
// SHOULD add a cancellation token" redesign note: cmd/fast-dl cancels it on
// SIGINT/SIGTERM, and planner, file, and chunk tasks stop waiting once it is
// done. A failed file or chunk task does not cancel it; sibling tasks run to
// completion.
type Context struct {
	ctx              context.Context
	option           Option
	client           *resty.Client
	logger           *slog.Logger
	progressCallback ProgressCallback
}

// NewContext creates a new Context with the provided options.
func NewContext(ctx context.Context, option Option) *Context {
	return &Context{
		ctx:    ctx,
		option: option,
		client: newClient(option),
		logger: newLogger(option),
	}
}

// Context returns the context associated with this run.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Option returns the options associated with this run.
func (c *Context) Option() Option {
	return c.option
}

// Client returns the shared resty client for this run.
func (c *Context) Client() *resty.Client {
	if c.client == nil {
		c.client = newClient(c.Option())
	}
	return c.client
}

// Logger returns the logger for this run.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		c.logger = newLogger(c.Option())
	}
	return c.logger
}

// SetProgressCallback sets the progress callback for the context.
func (c *Context) SetProgressCallback(callback ProgressCallback) {
	c.progressCallback = callback
}

// GetProgressCallback returns the progress callback.
func (c *Context) GetProgressCallback() ProgressCallback {
	return c.progressCallback
}
