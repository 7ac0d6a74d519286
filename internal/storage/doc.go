// Package storage provides the object store the pipeline reads feeds from and
// persists artifacts to. Keys are slash-separated; overwriting a key is always
// allowed, which is what makes re-running a pipeline safe.
//
// FileStore maps keys onto a directory tree, MemoryStore keeps everything in
// process for tests, and RateLimitedStore throttles calls to any backend.
package storage
