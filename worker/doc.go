// Package worker runs the pipeline's stage consumers. A Worker polls one
// task kind off the durable queue and hands each delivery to a handler on a
// bounded goroutine pool. Handlers settle their deliveries themselves: ack
// on success, nack or dead-letter on failure. A crash anywhere in between
// leaves the task leased, and lease expiry brings it back into circulation.
//
// Two handlers exist. EmbedHandler generates vectors for a document's
// pending chunks in bounded parallel batches. ExtractHandler runs every
// delivery through the admission gate and, once the document's embeddings
// are complete, extracts indicator values and persists them keyed by
// (document, code) so replays supersede rather than duplicate.
package worker
