package protocol

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/tessera/internal/auth"
	"github.com/roach88/tessera/internal/message"
)

// ConfigureDescriptor is the descriptor of a ProtocolsConfigure message.
type ConfigureDescriptor struct {
	Interface        message.Interface `json:"interface"`
	Method           message.Method    `json:"method"`
	MessageTimestamp string            `json:"messageTimestamp"`
	Definition       Definition        `json:"definition"`
}

// Configure is a signed protocol configuration message. Once accepted, the
// embedded definition becomes the governing policy for records under its
// protocol URI.
type Configure struct {
	Descriptor    ConfigureDescriptor   `json:"descriptor"`
	Authorization message.Authorization `json:"authorization"`
}

// CID returns the content identifier of the configuration message.
func (c *Configure) CID() (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("configure cid: %w", err)
	}
	return message.EnvelopeCID(raw)
}

// SigningPayload returns the canonical descriptor bytes the signature
// covers.
func (c *Configure) SigningPayload() ([]byte, error) {
	raw, err := json.Marshal(c.Descriptor)
	if err != nil {
		return nil, fmt.Errorf("configure signing payload: %w", err)
	}
	return message.CanonicalBytes(raw)
}

// CreateConfigure builds a signed configuration message from a definition.
//
// Creation path: the definition is normalized first, then validated, then
// embedded and signed. This is the only place normalization happens - a
// definition arriving already serialized must be normalized by whoever
// created it.
func CreateConfigure(def Definition, timestamp string, signer auth.Signer, grantID string) (*Configure, error) {
	if def.Types == nil {
		// A nil map would serialize as null; canonical JSON forbids null.
		def.Types = make(map[string]TypeDef)
	}
	if err := NormalizeDefinition(&def); err != nil {
		return nil, &StructuralError{Code: ErrCodeMalformed, Message: err.Error()}
	}
	if err := ValidateDefinition(&def); err != nil {
		return nil, err
	}

	if timestamp == "" {
		timestamp = message.NowTimestamp()
	}
	if _, err := message.ParseTimestamp(timestamp); err != nil {
		return nil, err
	}

	c := &Configure{
		Descriptor: ConfigureDescriptor{
			Interface:        message.InterfaceProtocols,
			Method:           message.MethodConfigure,
			MessageTimestamp: timestamp,
			Definition:       def,
		},
	}

	payload, err := c.SigningPayload()
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("sign configure: %w", err)
	}
	c.Authorization = message.Authorization{
		Author:             signer.DID(),
		Signature:          sig,
		PermissionsGrantID: grantID,
	}
	return c, nil
}

// ParseConfigure re-validates an already-serialized configuration message:
// schema shape, authorization-envelope integrity, then the embedded
// definition. Non-normalized identifiers are rejected here, never
// re-normalized.
func ParseConfigure(ctx context.Context, raw []byte, authn auth.Authenticator, tenant string) (*Configure, error) {
	if err := message.ValidateShape(message.ShapeProtocolsConfigure, raw); err != nil {
		return nil, err
	}

	var c Configure
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, &message.ValidationError{Message: "decode ProtocolsConfigure: " + err.Error()}
	}
	if _, err := message.ParseTimestamp(c.Descriptor.MessageTimestamp); err != nil {
		return nil, err
	}

	payload, err := c.SigningPayload()
	if err != nil {
		return nil, err
	}
	if err := authn.Authenticate(ctx, tenant, c.Authorization.Author, payload, c.Authorization.Signature); err != nil {
		return nil, err
	}

	if err := ValidateDefinition(&c.Descriptor.Definition); err != nil {
		return nil, err
	}
	return &c, nil
}
