// Package protocol implements protocol definitions and their structural
// validation.
//
// A definition is a normalized protocol URI, a map of record type names to
// optional schema URIs, and a recursively nested rule tree keyed by
// record-type path segments. Validation enforces the structural invariants
// a definition must satisfy before it can govern records:
//
//   - global roles may be declared only at depth 1 from the tree root
//   - every role referenced by an action must name a path declared with the
//     global-role flag
//   - protocol and schema identifiers must already be in canonical
//     normalized form (normalization happens only on the creation path)
//
// Validation is all-or-nothing: the first violation aborts and nothing is
// partially installed. The walk is iterative with an explicit stack so
// adversarially deep trees cannot exhaust the goroutine stack.
package protocol
