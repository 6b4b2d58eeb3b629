// Package records orchestrates record mutations: parse, authenticate,
// resolve conflicts against the existing message set, persist, and prune.
//
// The conflict rule is "provably newest wins", never "first to arrive
// wins": acceptance depends only on the total order over messages, so the
// outcome at any single node is independent of arrival order - a
// prerequisite for multi-node convergence.
//
// The read-existing, compare-newest, write-accepted sequence for one record
// must behave as if serialized against any other writer of that record,
// or two racing deletes could both observe the same stale newest and both
// commit. The processor makes this explicit with a mutex keyed by
// (tenant, record identifier); the stores themselves only guarantee
// statement atomicity.
package records
