package message

import (
	"time"

	"github.com/google/uuid"
)

// Interface identifies the protocol surface a message addresses.
type Interface string

// Method identifies the operation within an interface.
type Method string

const (
	InterfaceRecords   Interface = "Records"
	InterfaceProtocols Interface = "Protocols"

	MethodWrite     Method = "Write"
	MethodDelete    Method = "Delete"
	MethodConfigure Method = "Configure"
)

// Authorization is the signed envelope attached to every message.
// Signature verification mechanics live behind the auth package boundary;
// this struct only carries the material.
type Authorization struct {
	Author             string `json:"author"`
	Signature          string `json:"signature"`
	PermissionsGrantID string `json:"permissionsGrantId,omitempty"`
}

// Message is the sealed union of accepted mutation variants.
// Only RecordsWrite and RecordsDelete implement it; protocol configuration
// messages live in the protocol package because they embed a definition.
//
// Decision points over messages use exhaustive type switches - there is no
// shared mutable state between variants.
type Message interface {
	message()

	// Interface and Method return the discriminator tags.
	Interface() Interface
	Method() Method

	// Timestamp returns the message timestamp in wire form.
	Timestamp() string

	// Author returns the signer identity from the authorization block.
	Author() string
}

// WriteDescriptor describes a RecordsWrite mutation.
// Optional fields marshal with omitempty so that absence on the wire is
// structural, never a null or empty placeholder.
type WriteDescriptor struct {
	Interface        Interface `json:"interface"`
	Method           Method    `json:"method"`
	RecordID         string    `json:"recordId"`
	MessageTimestamp string    `json:"messageTimestamp"`
	ContextID        string    `json:"contextId,omitempty"`
	Protocol         string    `json:"protocol,omitempty"`
	ProtocolPath     string    `json:"protocolPath,omitempty"`
	Recipient        string    `json:"recipient,omitempty"`
	Schema           string    `json:"schema,omitempty"`
	ParentID         string    `json:"parentId,omitempty"`
	DataCID          string    `json:"dataCid,omitempty"`
	DataFormat       string    `json:"dataFormat,omitempty"`
	DateCreated      string    `json:"dateCreated,omitempty"`
	Published        bool      `json:"published,omitempty"`
}

// DeleteDescriptor describes a RecordsDelete mutation.
// Deletes carry no payload fields of their own; everything needed for
// cross-referencing comes from the record's initial write at index time.
type DeleteDescriptor struct {
	Interface        Interface `json:"interface"`
	Method           Method    `json:"method"`
	RecordID         string    `json:"recordId"`
	MessageTimestamp string    `json:"messageTimestamp"`
}

// RecordsWrite is a signed write mutation for a logical record.
type RecordsWrite struct {
	Descriptor    WriteDescriptor `json:"descriptor"`
	Authorization Authorization   `json:"authorization"`
}

func (RecordsWrite) message() {}

func (m RecordsWrite) Interface() Interface { return m.Descriptor.Interface }
func (m RecordsWrite) Method() Method       { return m.Descriptor.Method }
func (m RecordsWrite) Timestamp() string    { return m.Descriptor.MessageTimestamp }
func (m RecordsWrite) Author() string       { return m.Authorization.Author }

// RecordsDelete is a signed delete mutation for a logical record.
type RecordsDelete struct {
	Descriptor    DeleteDescriptor `json:"descriptor"`
	Authorization Authorization    `json:"authorization"`
}

func (RecordsDelete) message() {}

func (m RecordsDelete) Interface() Interface { return m.Descriptor.Interface }
func (m RecordsDelete) Method() Method       { return m.Descriptor.Method }
func (m RecordsDelete) Timestamp() string    { return m.Descriptor.MessageTimestamp }
func (m RecordsDelete) Author() string       { return m.Authorization.Author }

// NowTimestamp returns the current time in wire form (RFC 3339, nanosecond
// precision, UTC).
func NowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// NewRecordID generates a fresh record identifier for a create path.
// UUIDv7 keeps identifiers roughly time-sortable in storage without
// participating in the order relation.
func NewRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ParseTimestamp parses a wire timestamp. Timestamps are validated here
// rather than in the envelope schema so the error names the offending value.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   "messageTimestamp",
			Message: "not an RFC 3339 timestamp: " + s,
		}
	}
	return t.UTC(), nil
}
