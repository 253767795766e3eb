// Package storage provides access to the object store holding uploaded
// inventory export files.
//
// It wraps the MinIO Go client behind a small interface so the inventory
// loader can read exports from either AWS S3 or a self-hosted MinIO instance,
// and so storage interactions can be mocked in unit tests (see
// core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the export bucket.
//   - GetObject: Retrieves an export file as a stream.
//   - ListObjects: Lists available export files.
package storage
