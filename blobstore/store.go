package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading and writing dataset files.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create opens a blob for streaming writes. The blob becomes visible on Close.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader over [off, off+length).
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// WritableBlob is a handle to a blob being written.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data where the backend supports it.
	Sync() error
}

// Aborter is implemented by writable blobs that can discard buffered data
// instead of committing it.
type Aborter interface {
	Abort() error
}

// Abort discards w when it supports Aborter and closes it otherwise.
func Abort(w WritableBlob) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort()
	}
	return w.Close()
}

// OpenReader opens name and returns a reader over the whole blob.
// Closing the reader closes the blob.
func OpenReader(ctx context.Context, s BlobStore, name string) (io.ReadCloser, int64, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	size := b.Size()
	if size == 0 {
		_ = b.Close()
		return io.NopCloser(eofReader{}), 0, nil
	}
	rc, err := b.ReadRange(ctx, 0, size)
	if err != nil {
		_ = b.Close()
		return nil, 0, err
	}
	return &blobReader{ReadCloser: rc, blob: b}, size, nil
}

type blobReader struct {
	io.ReadCloser
	blob Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// rangeEnd bounds off+length to a blob of the given size.
// A negative length means "to the end".
func rangeEnd(size, off, length int64) int64 {
	end := off + length
	if length < 0 || end > size {
		end = size
	}
	return end
}
