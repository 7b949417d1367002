package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikbrunner/smartmark/internal/identity"
)

var secret = []byte("test-secret")

func TestStatic(t *testing.T) {
	id, err := identity.Static("alice").Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", id.OwnerID)

	_, err = identity.Static("").Identity(context.Background())
	assert.ErrorIs(t, err, identity.ErrNoIdentity)
}

func TestToken_RoundTrip(t *testing.T) {
	raw, err := identity.IssueToken("bob", secret, time.Hour)
	require.NoError(t, err)

	id, err := identity.NewToken(raw, secret).Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", id.OwnerID)
}

func TestToken_Rejects(t *testing.T) {
	expired, err := identity.IssueToken("bob", secret, -time.Minute)
	require.NoError(t, err)
	noSubject, err := identity.IssueToken("", secret, time.Hour)
	require.NoError(t, err)
	good, err := identity.IssueToken("bob", secret, time.Hour)
	require.NoError(t, err)

	tests := map[string]*identity.Token{
		"garbage":      identity.NewToken("not-a-token", secret),
		"wrong secret": identity.NewToken(good, []byte("other")),
		"expired":      identity.NewToken(expired, secret),
		"no subject":   identity.NewToken(noSubject, secret),
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tok.Identity(context.Background())
			assert.ErrorIs(t, err, identity.ErrInvalidToken)
		})
	}
}

func TestResolve_PrefersToken(t *testing.T) {
	raw, err := identity.IssueToken("carol", secret, 0)
	require.NoError(t, err)

	id, err := identity.Resolve(context.Background(), "alice", raw, secret)
	require.NoError(t, err)
	assert.Equal(t, "carol", id.OwnerID)

	id, err = identity.Resolve(context.Background(), "alice", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.OwnerID)
}
