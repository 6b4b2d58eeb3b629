package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/auth"
	"github.com/roach88/tessera/internal/message"
)

// testKey is the shared HMAC key for all test signers. Fixed so that
// fixtures signed by the same DID are byte-identical across runs.
var testKey = []byte("tessera-test-key")

// NewSigner creates a deterministic test signer for the given DID.
// All test signers share one key; pair with Verifier() when a test needs
// the cryptographic check to actually run.
func NewSigner(did string) *auth.HMACSigner {
	return auth.NewHMACSigner(did, testKey)
}

// Verifier returns a verifier that accepts signatures from any NewSigner.
func Verifier() auth.Verifier {
	return auth.NewHMACSigner("", testKey)
}

// SignedWrite builds a signed RecordsWrite envelope in wire form.
// An empty recordID mints a fresh identifier, as a create path would.
// mutate, if non-nil, adjusts the descriptor before signing.
func SignedWrite(t testing.TB, signer *auth.HMACSigner, recordID, timestamp string, mutate func(*message.WriteDescriptor)) []byte {
	t.Helper()

	if recordID == "" {
		recordID = message.NewRecordID()
	}
	desc := message.WriteDescriptor{
		Interface:        message.InterfaceRecords,
		Method:           message.MethodWrite,
		RecordID:         recordID,
		MessageTimestamp: timestamp,
		DataFormat:       "application/json",
		DateCreated:      timestamp,
	}
	if mutate != nil {
		mutate(&desc)
	}
	return signEnvelope(t, signer, desc, func(authz message.Authorization) any {
		return message.RecordsWrite{Descriptor: desc, Authorization: authz}
	})
}

// SignedDelete builds a signed RecordsDelete envelope in wire form.
func SignedDelete(t testing.TB, signer *auth.HMACSigner, recordID, timestamp string) []byte {
	t.Helper()

	desc := message.DeleteDescriptor{
		Interface:        message.InterfaceRecords,
		Method:           message.MethodDelete,
		RecordID:         recordID,
		MessageTimestamp: timestamp,
	}
	return signEnvelope(t, signer, desc, func(authz message.Authorization) any {
		return message.RecordsDelete{Descriptor: desc, Authorization: authz}
	})
}

// signEnvelope signs the canonical descriptor bytes and assembles the
// envelope via build, returning its wire encoding.
func signEnvelope(t testing.TB, signer *auth.HMACSigner, descriptor any, build func(message.Authorization) any) []byte {
	t.Helper()

	descRaw, err := json.Marshal(descriptor)
	require.NoError(t, err)
	payload, err := message.CanonicalBytes(descRaw)
	require.NoError(t, err)
	sig, err := signer.Sign(payload)
	require.NoError(t, err)

	envelope := build(message.Authorization{Author: signer.DID(), Signature: sig})
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return raw
}
