// Package hash provides the CRC32-Castagnoli (CRC32C) checksum used to
// verify dataset uploads.
//
// S3 accepts CRC32C as an object checksum, so uploads are verified end to
// end without hashing the payload twice.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
