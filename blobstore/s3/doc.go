// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/large/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	ds, err := dataset.Load(ctx, store, dataset.DefaultNames())
//
// # Features
//
//   - Range reads, so dataset files stream instead of buffering
//   - Multipart uploads for large saved datasets
//   - Automatic pagination for listing
//   - Configurable prefix to keep several datasets in one bucket
package s3
