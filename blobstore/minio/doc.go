// Package minio provides a BlobStore implementation using the MinIO client.
//
// Works against MinIO and other S3-compatible servers (Ceph, SeaweedFS, Garage)
// without the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.Dial("localhost:9000", "datasets", "large/", minioblob.Credentials{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, err := dataset.Load(ctx, store, dataset.DefaultNames())
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
