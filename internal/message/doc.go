// Package message provides the envelope types for tessera mutations.
//
// This package contains the tagged message variants (RecordsWrite,
// RecordsDelete), RFC 8785 canonical JSON serialization, content-addressed
// identifiers, and the total order relation used for conflict resolution.
// All other internal packages import message; message imports nothing
// internal. This keeps the envelope the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - NO float types anywhere in envelopes - breaks canonical hashing
//   - Timestamps are RFC 3339 with nanosecond precision, always UTC
//   - The order relation is a strict total order: timestamp first, then
//     byte-lexicographic content ID. This tie-break is part of the wire
//     contract - every node must converge on the same newest message
//     without coordination.
//   - All JSON tags use camelCase (wire format), unlike internal snake_case
package message
