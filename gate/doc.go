// Package gate implements the dependency gate that holds indicator-extraction
// tasks until their document's embeddings are complete.
//
// The gate never caches readiness: every Decide call asks the oracle for a
// fresh snapshot, because chunk counts move underneath it while embedding
// workers run. A task the gate cannot admit is deferred with a delay, and a
// task that exhausts its readiness or executor-failure budget is dead-lettered
// with the last snapshot attached for diagnosis.
//
// Admission is a gate, not a lock: the gate may admit the same document twice
// (redelivery after a crashed consumer, overlapping workers). Executors must
// therefore write their results idempotently; the storage layer's
// per-(document, indicator) upsert keys satisfy this contract.
package gate
