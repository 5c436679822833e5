// Package dataset reads, writes, and generates the flight, passenger, and
// reservation files both engines are built from.
//
// A dataset is three CSV files named by Names. Each file may be compressed;
// the codec is chosen by extension:
//
//	.csv        plain
//	.csv.gz     gzip (klauspost/compress)
//	.csv.zst    zstd (klauspost/compress)
//	.csv.lz4    lz4 frame (pierrec/lz4)
//
// Files are fetched from any blobstore.BlobStore. Load fetches the three
// files in parallel, bounded by the resource controller's worker slots and
// throttled by its IO limit when one is configured.
//
// Generate produces a synthetic dataset whose reservations respect every
// flight's capacity.
package dataset
