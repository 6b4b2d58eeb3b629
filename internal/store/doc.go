// Package store provides durable storage for tessera messages, events, and
// data payloads.
//
// Messages and the event log live in SQLite; data payloads live in a
// Badger keyspace. Three narrow surfaces are exposed:
//
//   - message store: put/get/delete keyed by (tenant, cid), query by record
//     identifier or by equality filter over the index record
//   - event log: append-only, keyed by (tenant, cid), read back in append
//     position order
//   - data store: content-addressed blobs keyed by (tenant, data cid)
//
// Critical patterns carried throughout:
//
//   - All writes are idempotent (INSERT ... ON CONFLICT DO NOTHING, and
//     deletes of absent rows are no-ops) so retries after partial failures
//     reconverge instead of erroring.
//   - All record queries order by (message_timestamp ASC, cid ASC COLLATE
//     BINARY) - the same total order the conflict resolver uses - so results
//     are deterministic across nodes and replays.
//   - Per-key serializability for the read-compare-write sequence is the
//     caller's concern (see records.Processor); the store guarantees only
//     statement/transaction atomicity.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - single connection: SQLite allows one writer at a time
package store
