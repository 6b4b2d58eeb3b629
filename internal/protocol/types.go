package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Control keys inside a rule set. Any other key is a nested rule set.
const (
	// ControlPrefix marks non-structural keys inside a rule set.
	ControlPrefix = "$"

	keyGlobalRole = "$globalRole"
	keyActions    = "$actions"
)

// Definition is an installable protocol definition.
type Definition struct {
	// Protocol is the protocol identifier, canonical normalized URI form.
	Protocol string `json:"protocol"`

	// Types maps record type names to their declarations.
	Types map[string]TypeDef `json:"types"`

	// Structure is the root of the rule tree. Its direct children are the
	// depth-1 record-type paths.
	Structure RuleSet `json:"structure"`
}

// TypeDef declares a record type within a definition.
type TypeDef struct {
	// Schema is the schema identifier, canonical normalized URI form.
	Schema string `json:"schema,omitempty"`

	// DataFormats restricts the data formats writable under this type.
	DataFormats []string `json:"dataFormats,omitempty"`
}

// ActionRule grants an actor class the ability to act on records at the
// rule set's path.
type ActionRule struct {
	// Who names an actor class ("anyone", "author", "recipient").
	Who string `json:"who,omitempty"`

	// Of scopes Who to records under a relative protocol path.
	Of string `json:"of,omitempty"`

	// Can names the permitted operation ("read", "write", "delete").
	Can string `json:"can,omitempty"`

	// Role references a depth-1 path declared with the global-role flag.
	// Mutually exclusive with Who in practice; validation only checks that
	// the reference resolves.
	Role string `json:"role,omitempty"`
}

// RuleSet is one node of the recursive rule tree.
//
// On the wire a rule set is a JSON object mixing control keys ($globalRole,
// $actions) with nested rule sets under type-name keys, so RuleSet carries
// custom JSON marshaling.
type RuleSet struct {
	// GlobalRole declares this path as a role usable anywhere in the tree.
	// Valid only at depth 1; enforced by ValidateDefinition.
	GlobalRole bool

	// Actions are the action rules declared at this path.
	Actions []ActionRule

	// Children are the nested rule sets, keyed by child type name.
	Children map[string]RuleSet
}

// UnmarshalJSON decodes the mixed control-key/child-key wire form.
// Unknown control keys are rejected rather than silently treated as
// children - a typo like "$globalrole" must not become a record type.
func (r *RuleSet) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("rule set: %w", err)
	}

	*r = RuleSet{}
	for key, raw := range fields {
		switch {
		case key == keyGlobalRole:
			if err := json.Unmarshal(raw, &r.GlobalRole); err != nil {
				return fmt.Errorf("rule set %s: %w", keyGlobalRole, err)
			}
		case key == keyActions:
			if err := json.Unmarshal(raw, &r.Actions); err != nil {
				return fmt.Errorf("rule set %s: %w", keyActions, err)
			}
		case strings.HasPrefix(key, ControlPrefix):
			return fmt.Errorf("rule set: unknown control key %q", key)
		default:
			var child RuleSet
			if err := json.Unmarshal(raw, &child); err != nil {
				return fmt.Errorf("rule set %q: %w", key, err)
			}
			if r.Children == nil {
				r.Children = make(map[string]RuleSet)
			}
			r.Children[key] = child
		}
	}
	return nil
}

// MarshalJSON encodes back to the mixed wire form.
func (r RuleSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Children)+2)
	if r.GlobalRole {
		out[keyGlobalRole] = true
	}
	if len(r.Actions) > 0 {
		out[keyActions] = r.Actions
	}
	for name, child := range r.Children {
		out[name] = child
	}
	return json.Marshal(out)
}
