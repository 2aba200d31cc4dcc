// Package ingest turns disclosure report sources into stored documents and
// chunks, and queues the pipeline work for them.
//
// The Ingestor runs the intake workflow for one report at a time:
//   - Fetching the raw bytes (HTTP or local file)
//   - Extracting per-page text (PDF, with a printable-text fallback)
//   - Chunking pages for embedding
//   - Persisting the document with its expected chunk count
//   - Enqueuing the embed and extract tasks
//
// Every write is an upsert keyed on (Company, ReportYear), so re-running an
// ingest repairs a crash between persistence and enqueue instead of
// duplicating data.
package ingest
