// Package ingest implements the bulk ingestion pipeline.
//
// Each batch (one CSV file upstream) is processed by an independent worker:
// parse, bulk-create missing instruments, bulk-insert tick rows in chunks,
// then recompute latest pointers for the instruments the batch touched. A
// failing batch is reported in its result and never affects sibling
// batches; cross-batch correctness relies only on the database's unique
// constraints and the catalog's race-tolerant create.
//
// The pipeline is not re-entrant: re-running it over the same input inserts
// duplicate ticks. Callers dedupe upstream.
package ingest
