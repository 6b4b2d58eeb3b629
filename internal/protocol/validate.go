package protocol

import "fmt"

// PathSeparator joins rule-tree path segments.
const PathSeparator = "/"

// MaxRuleDepth bounds rule-tree nesting. Depth and branching are unbounded
// in principle; the guard keeps adversarial definitions from exhausting
// resources during the walk.
const MaxRuleDepth = 64

// ValidateDefinition checks a definition against the structural invariants.
//
// The first violation encountered aborts with that specific error; no
// partial definition is ever considered valid. When multiple violations
// exist, which one is reported first is unspecified (map iteration order),
// but at least one present violation is always detected.
func ValidateDefinition(def *Definition) error {
	if def.Protocol == "" {
		return &StructuralError{
			Code:    ErrCodeMalformed,
			Message: "definition has no protocol identifier",
		}
	}

	// Stored identifiers must already be canonical. Normalization happens
	// only on the creation path, before validation.
	if err := requireNormalized("protocol", def.Protocol); err != nil {
		return err
	}
	for name, t := range def.Types {
		if t.Schema == "" {
			continue
		}
		if err := requireNormalized(fmt.Sprintf("types.%s.schema", name), t.Schema); err != nil {
			return err
		}
	}

	// Global roles live only at depth 1. Collect them in a single flat pass
	// over the root's direct children and treat the set as an immutable
	// snapshot for the whole walk.
	globalRoles := make(map[string]bool, len(def.Structure.Children))
	for name, child := range def.Structure.Children {
		if child.GlobalRole {
			globalRoles[name] = true
		}
	}

	return walkRuleSets(def.Structure, globalRoles)
}

// frame is one pending rule set in the iterative walk.
type frame struct {
	path  string // segments joined by PathSeparator; "" at the root
	depth int    // 0 at the root, 1 for its direct children
	rules RuleSet
}

// walkRuleSets validates every rule set in the tree.
// Iterative with an explicit stack: recursion depth is attacker-controlled
// input here, so the goroutine stack must not be.
func walkRuleSets(root RuleSet, globalRoles map[string]bool) error {
	stack := []frame{{path: "", depth: 0, rules: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > MaxRuleDepth {
			return &StructuralError{
				Code:    ErrCodeDepthExceeded,
				Path:    f.path,
				Message: fmt.Sprintf("rule tree exceeds maximum depth %d", MaxRuleDepth),
			}
		}

		if f.rules.GlobalRole && f.depth != 1 {
			return &StructuralError{
				Code:    ErrCodeGlobalRolePlacement,
				Path:    f.path,
				Message: "$globalRole may only be declared at a root-level path",
			}
		}

		for _, action := range f.rules.Actions {
			if action.Role == "" {
				continue
			}
			if !globalRoles[action.Role] {
				return &StructuralError{
					Code:    ErrCodeInvalidRole,
					Path:    f.path,
					Role:    action.Role,
					Message: "role does not resolve to a $globalRole declaration",
				}
			}
		}

		for name, child := range f.rules.Children {
			stack = append(stack, frame{
				path:  joinPath(f.path, name),
				depth: f.depth + 1,
				rules: child,
			})
		}
	}
	return nil
}

// requireNormalized rejects identifiers that are not already canonical.
func requireNormalized(field, uri string) error {
	norm, err := NormalizeURI(uri)
	if err != nil {
		return &StructuralError{
			Code:    ErrCodeMalformed,
			Message: fmt.Sprintf("%s: %v", field, err),
		}
	}
	if norm != uri {
		return &StructuralError{
			Code:    ErrCodeNotNormalized,
			Message: fmt.Sprintf("%s: %q is not in normalized form (want %q)", field, uri, norm),
		}
	}
	return nil
}

func joinPath(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + PathSeparator + segment
}
