package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeAuthenticatorStructural(t *testing.T) {
	a := &EnvelopeAuthenticator{}
	ctx := context.Background()

	tests := []struct {
		name      string
		author    string
		signature string
		wantErr   bool
	}{
		{"valid", "did:example:alice", "sig", false},
		{"no author", "", "sig", true},
		{"author not a DID", "alice", "sig", true},
		{"no signature", "did:example:alice", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Authenticate(ctx, "did:example:tenant", tt.author, []byte("payload"), tt.signature)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsAuth(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvelopeAuthenticatorDelegatesToVerifier(t *testing.T) {
	key := []byte("key")
	signer := NewHMACSigner("did:example:alice", key)
	a := &EnvelopeAuthenticator{Verifier: NewHMACSigner("", key)}
	ctx := context.Background()

	payload := []byte("canonical descriptor bytes")
	sig, err := signer.Sign(payload)
	require.NoError(t, err)

	assert.NoError(t, a.Authenticate(ctx, "did:example:tenant", "did:example:alice", payload, sig))

	err = a.Authenticate(ctx, "did:example:tenant", "did:example:alice", []byte("tampered"), sig)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
}

func TestHMACSignerDeterministic(t *testing.T) {
	signer := NewHMACSigner("did:example:alice", []byte("key"))

	a, err := signer.Sign([]byte("payload"))
	require.NoError(t, err)
	b, err := signer.Sign([]byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHMACSignerIdentityBound(t *testing.T) {
	key := []byte("shared")
	alice := NewHMACSigner("did:example:alice", key)
	bob := NewHMACSigner("did:example:bob", key)

	sigA, err := alice.Sign([]byte("payload"))
	require.NoError(t, err)
	sigB, err := bob.Sign([]byte("payload"))
	require.NoError(t, err)

	assert.NotEqual(t, sigA, sigB, "identities sharing a key must produce distinct signatures")

	// Verification recomputes with the claimed DID, so a signature does not
	// transfer between identities.
	verifier := NewHMACSigner("", key)
	assert.NoError(t, verifier.Verify(context.Background(), "did:example:alice", []byte("payload"), sigA))
	assert.Error(t, verifier.Verify(context.Background(), "did:example:alice", []byte("payload"), sigB))
}

func TestIsAuth(t *testing.T) {
	assert.True(t, IsAuth(&Error{Reason: "nope"}))
	assert.False(t, IsAuth(context.Canceled))
	assert.False(t, IsAuth(nil))
}
