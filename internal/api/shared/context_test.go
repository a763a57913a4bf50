package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efme/efme-api/internal/domain"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)

	traceID := GetTraceID(ctxWithTrace)
	assert.NotEmpty(t, traceID, "Expected non-empty trace ID after setting")
	assert.Len(t, traceID, 32, "Expected trace ID length to be 32 hex characters (16 bytes)")

	// Original context should remain unchanged
	assert.Empty(t, GetTraceID(ctx), "Expected original context to remain unchanged")
}

func TestGenerateTraceID(t *testing.T) {
	traceID := generateTraceID()
	require.Len(t, traceID, 32)

	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err, "Expected valid hex string")

	// Probabilistic uniqueness check
	const iterations = 1000
	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		id := generateTraceID()
		assert.False(t, seen[id], "Expected trace IDs to be unique")
		seen[id] = true
	}
}

func TestFallbackTraceID(t *testing.T) {
	traceID := generateFallbackTraceID()
	assert.Len(t, traceID, 32)

	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)
}

func TestIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFromContext(ctx)
	assert.False(t, ok, "Expected no identity in fresh context")

	identity := Identity{UserID: uuid.New(), Role: domain.RoleTechnician}
	ctxWithIdentity := WithIdentity(ctx, identity)

	got, ok := IdentityFromContext(ctxWithIdentity)
	require.True(t, ok)
	assert.Equal(t, identity.UserID, got.UserID)
	assert.Equal(t, domain.RoleTechnician, got.Role)

	// Original context should remain unchanged
	_, ok = IdentityFromContext(ctx)
	assert.False(t, ok)
}

func TestIdentityFromContextRejectsZeroUserID(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: uuid.Nil, Role: domain.RoleManager})

	_, ok := IdentityFromContext(ctx)
	assert.False(t, ok, "Expected identity with zero user ID to be rejected")
}

func TestIdentityKeyIsDistinctFromTraceKey(t *testing.T) {
	identity := Identity{UserID: uuid.New(), Role: domain.RoleAdmin}
	ctx := WithIdentity(SetTraceID(context.Background()), identity)

	assert.NotEmpty(t, GetTraceID(ctx))

	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, got)
}
