package resource

import (
	"context"
	"io"
)

// Reader throttles reads through the controller's IO limiter.
type Reader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewReader wraps r. A nil controller makes it a pass-through.
func NewReader(ctx context.Context, r io.Reader, rc *Controller) *Reader {
	return &Reader{ctx: ctx, r: r, rc: rc}
}

// Read charges the limiter for the bytes actually read.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
