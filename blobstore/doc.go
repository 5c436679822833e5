// Package blobstore provides the storage abstraction datasets are loaded from
// and saved to.
//
// BlobStore is the interface for reading and writing named blobs (dataset
// CSV files, comparison reports). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic writes via rename
//   - MemoryStore: in-memory, for tests and generated datasets
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Remote backends should implement ReadRange with ranged GETs so that
// OpenReader streams instead of buffering whole files.
package blobstore
