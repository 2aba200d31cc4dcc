// Package pipeline orchestrates full scoring runs. The drain monitor watches
// a stage's queue depth and declares the stage complete only after the queue
// has stayed empty for a confirmation window, as a bounded state machine
// rather than an open-ended busy loop. The runner sequences the macro
// stages: ingest the report set, drain the embed queue, drain extraction,
// then aggregate and store one score per document.
package pipeline
