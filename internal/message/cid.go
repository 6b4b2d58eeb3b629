package message

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainMessage = "tessera/message/v1"
	DomainData    = "tessera/data/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // Null separator - CRITICAL for security
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CID computes the content identifier for a message.
// The identifier is stable across nodes given identical envelope content:
// lowercase hex SHA-256 over the RFC 8785 canonical bytes of the full
// envelope (descriptor + authorization). Structurally distinct messages
// never collide (assumed property of SHA-256).
func CID(m Message) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("cid: marshal envelope: %w", err)
	}
	return EnvelopeCID(raw)
}

// EnvelopeCID computes the content identifier over raw envelope JSON.
// The bytes are re-decoded and re-encoded canonically so that key order and
// whitespace in the input never influence the identifier.
func EnvelopeCID(raw []byte) (string, error) {
	canonical, err := CanonicalBytes(raw)
	if err != nil {
		return "", err
	}
	return hashWithDomain(DomainMessage, canonical), nil
}

// CanonicalBytes returns the RFC 8785 canonical form of raw envelope JSON.
func CanonicalBytes(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber() // preserve large integers exactly
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("canonical: decode envelope: %w", err)
	}
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	return canonical, nil
}

// DataCID computes the content identifier for a payload blob.
func DataCID(data []byte) string {
	return hashWithDomain(DomainData, data)
}
