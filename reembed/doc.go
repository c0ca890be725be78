// Package reembed re-embeds every record of an existing collection with the
// configured embedding model.
//
// Vectors from different models are not comparable, so a collection whose
// manifest names another model refuses ingestion and queries. Running a
// Reembedder replaces every stored vector batch by batch, then rewrites the
// manifest to name the new model. Embedding calls are retried with
// exponential backoff and progress is reported as batches complete.
package reembed
