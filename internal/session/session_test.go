package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	id, err := New("  acme ", "ops@acme.io").Require()
	require.NoError(t, err)
	assert.Equal(t, "acme", id)

	_, err = New("   ", "ops@acme.io").Require()
	assert.ErrorIs(t, err, ErrNoTenant)
	assert.Equal(t, "No tenant ID found in session", err.Error())
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), New("acme", ""))
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "acme", s.TenantID)
}
