// Package auth is the boundary to identity and signature verification.
//
// DID resolution and signature cryptography are external collaborators; this
// package defines the narrow interfaces the processors depend on, plus an
// envelope-integrity implementation suitable for single-node and test use.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Signer produces a detached signature over canonical payload bytes.
type Signer interface {
	// DID returns the signer's identity.
	DID() string

	// Sign signs the payload and returns the encoded signature.
	Sign(payload []byte) (string, error)
}

// Verifier resolves an author identity and checks a signature.
// External collaborator: implementations wrap a DID resolver and the
// signature scheme in use.
type Verifier interface {
	Verify(ctx context.Context, did string, payload []byte, signature string) error
}

// Authenticator authorizes a signed message against a tenant.
type Authenticator interface {
	// Authenticate checks the signer identity and capability of a message.
	// payload is the canonical bytes the signature covers.
	Authenticate(ctx context.Context, tenant, author string, payload []byte, signature string) error
}

// Error reports an authentication or authorization failure.
// Never mutates state; surfaced to the caller as an authorization error.
type Error struct {
	Author string
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Author != "" {
		return fmt.Sprintf("unauthorized: %s (author=%s)", e.Reason, e.Author)
	}
	return "unauthorized: " + e.Reason
}

// IsAuth reports whether err is an authentication/authorization failure.
// Uses errors.As to handle wrapped errors.
func IsAuth(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

// EnvelopeAuthenticator validates envelope integrity and delegates the
// cryptographic check to an optional Verifier.
//
// With a nil Verifier only structural integrity is enforced: author present
// and DID-shaped, signature present. That is the single-node development
// posture; production wiring supplies a real Verifier.
type EnvelopeAuthenticator struct {
	Verifier Verifier
}

// Authenticate implements Authenticator.
func (a *EnvelopeAuthenticator) Authenticate(ctx context.Context, tenant, author string, payload []byte, signature string) error {
	if author == "" {
		return &Error{Reason: "message has no author"}
	}
	if !strings.HasPrefix(author, "did:") {
		return &Error{Author: author, Reason: "author is not a DID"}
	}
	if signature == "" {
		return &Error{Author: author, Reason: "message is not signed"}
	}
	if a.Verifier == nil {
		return nil
	}
	if err := a.Verifier.Verify(ctx, author, payload, signature); err != nil {
		return &Error{Author: author, Reason: err.Error()}
	}
	return nil
}

// HMACSigner signs payloads with an HMAC-SHA256 key.
// A stand-in for real DID key material: deterministic, verifiable, and
// clearly not portable across nodes that do not share the key. Used by the
// local CLI and tests.
type HMACSigner struct {
	did string
	key []byte
}

// NewHMACSigner creates a signer for the given DID and key.
func NewHMACSigner(did string, key []byte) *HMACSigner {
	return &HMACSigner{did: did, key: key}
}

// DID implements Signer.
func (s *HMACSigner) DID() string { return s.did }

// Sign implements Signer. The DID is mixed into the MAC so two identities
// sharing a key still produce distinct signatures.
func (s *HMACSigner) Sign(payload []byte) (string, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(s.did))
	mac.Write([]byte{0x00})
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks a signature produced by an HMACSigner sharing the key.
func (s *HMACSigner) Verify(ctx context.Context, did string, payload []byte, signature string) error {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(did))
	mac.Write([]byte{0x00})
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(signature)) {
		return fmt.Errorf("signature mismatch for %s", did)
	}
	return nil
}
