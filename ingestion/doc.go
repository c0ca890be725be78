// Package ingestion turns a directory of documents into a populated collection.
//
// A Pipeline run proceeds in stages:
//   - Discover documents matching a glob pattern, sorted by path
//   - Extract text concurrently on a worker pool, keeping discovery order
//   - Split each document into overlapping chunks
//   - Embed chunks in ordered, fixed-size batches
//   - Upsert every chunk in a single write and record the collection manifest
//
// Documents that fail extraction or contain no text are logged and skipped.
// Re-running a pipeline over the same documents is idempotent.
package ingestion
