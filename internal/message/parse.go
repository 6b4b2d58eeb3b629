package message

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

// Shape names an envelope definition in the embedded CUE schema.
type Shape string

const (
	ShapeRecordsWrite       Shape = "#RecordsWrite"
	ShapeRecordsDelete      Shape = "#RecordsDelete"
	ShapeProtocolsConfigure Shape = "#ProtocolsConfigure"
)

var (
	schemaOnce sync.Once
	schemaVal  cue.Value
	schemaErr  error
)

// loadSchema compiles the embedded envelope schema once per process.
func loadSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile envelope schema: %w", err)
			return
		}
		schemaVal = v
	})
	return schemaVal, schemaErr
}

// ValidateShape checks raw envelope JSON against the named shape.
// A failure is a ValidationError - structural parse happens before any
// store access, so rejection has no side effects.
func ValidateShape(shape Shape, raw []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	expr, err := cuejson.Extract("message.json", raw)
	if err != nil {
		return &ValidationError{Message: "not valid JSON: " + err.Error()}
	}

	def := schema.LookupPath(cue.ParsePath(string(shape)))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup shape %s: %w", shape, err)
	}

	unified := def.Context().BuildExpr(expr).Unify(def)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return &ValidationError{Message: cueerrors.Details(err, nil)}
	}
	return nil
}

// envelopeProbe peeks at the discriminator tags without committing to a
// variant.
type envelopeProbe struct {
	Descriptor struct {
		Interface Interface `json:"interface"`
		Method    Method    `json:"method"`
	} `json:"descriptor"`
}

// Parse decodes raw JSON into the matching records message variant.
// Protocol configuration messages are parsed by the protocol package; this
// function rejects them with a ValidationError naming the tags.
func Parse(raw []byte) (Message, error) {
	var probe envelopeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &ValidationError{Message: "not valid JSON: " + err.Error()}
	}

	switch {
	case probe.Descriptor.Interface == InterfaceRecords && probe.Descriptor.Method == MethodWrite:
		return ParseWrite(raw)
	case probe.Descriptor.Interface == InterfaceRecords && probe.Descriptor.Method == MethodDelete:
		return ParseDelete(raw)
	default:
		return nil, &ValidationError{
			Field: "descriptor",
			Message: fmt.Sprintf("unsupported interface/method: %s/%s",
				probe.Descriptor.Interface, probe.Descriptor.Method),
		}
	}
}

// ParseWrite decodes and shape-checks a RecordsWrite envelope.
func ParseWrite(raw []byte) (*RecordsWrite, error) {
	if err := ValidateShape(ShapeRecordsWrite, raw); err != nil {
		return nil, err
	}
	var m RecordsWrite
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ValidationError{Message: "decode RecordsWrite: " + err.Error()}
	}
	if _, err := ParseTimestamp(m.Descriptor.MessageTimestamp); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseDelete decodes and shape-checks a RecordsDelete envelope.
func ParseDelete(raw []byte) (*RecordsDelete, error) {
	if err := ValidateShape(ShapeRecordsDelete, raw); err != nil {
		return nil, err
	}
	var m RecordsDelete
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ValidationError{Message: "decode RecordsDelete: " + err.Error()}
	}
	if _, err := ParseTimestamp(m.Descriptor.MessageTimestamp); err != nil {
		return nil, err
	}
	return &m, nil
}
