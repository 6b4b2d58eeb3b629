package protocol

import (
	"errors"
	"fmt"
)

// Structural error codes (P100-P199).
const (
	// ErrCodeGlobalRolePlacement: $globalRole declared below depth 1.
	ErrCodeGlobalRolePlacement = "P101"

	// ErrCodeInvalidRole: action references a role with no matching
	// depth-1 global-role declaration.
	ErrCodeInvalidRole = "P102"

	// ErrCodeNotNormalized: protocol or schema identifier is not in
	// canonical normalized form.
	ErrCodeNotNormalized = "P103"

	// ErrCodeDepthExceeded: rule tree nests deeper than MaxRuleDepth.
	ErrCodeDepthExceeded = "P104"

	// ErrCodeMalformed: definition fails basic structural requirements
	// (empty protocol, unparsable identifier).
	ErrCodeMalformed = "P105"
)

// StructuralError rejects a definition in its entirety.
// Raised only during configuration validation; nothing is partially
// installed.
type StructuralError struct {
	// Code identifies the error category.
	Code string

	// Path is the rule-tree path where the violation was found, segments
	// joined by "/". Empty for definition-level violations.
	Path string

	// Role is the dangling role reference, for ErrCodeInvalidRole.
	Role string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	switch {
	case e.Role != "" && e.Path != "":
		return fmt.Sprintf("[%s] %s (role=%s, path=%s)", e.Code, e.Message, e.Role, e.Path)
	case e.Path != "":
		return fmt.Sprintf("[%s] %s (path=%s)", e.Code, e.Message, e.Path)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// IsGlobalRolePlacement reports whether err is a misplaced global-role
// declaration. Uses errors.As to handle wrapped errors.
func IsGlobalRolePlacement(err error) bool {
	return hasCode(err, ErrCodeGlobalRolePlacement)
}

// IsInvalidRole reports whether err is a dangling role reference.
func IsInvalidRole(err error) bool {
	return hasCode(err, ErrCodeInvalidRole)
}

// IsNotNormalized reports whether err is a non-canonical identifier.
func IsNotNormalized(err error) bool {
	return hasCode(err, ErrCodeNotNormalized)
}

func hasCode(err error, code string) bool {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
