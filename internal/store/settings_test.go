package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJWTSecretIsStable(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetJWTSecret(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := s.GetJWTSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTokenRevocation(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, "jti-1", epoch.Add(time.Hour)))
	require.NoError(t, s.RevokeToken(ctx, "jti-1", epoch.Add(time.Hour)))

	revoked, err = s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Expired revocations are pruned on the next revoke.
	clock.advance(2 * time.Hour)
	require.NoError(t, s.RevokeToken(ctx, "jti-2", clock.now().Add(time.Hour)))

	revoked, err = s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestAPILogs(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	userID := int64(7)

	require.NoError(t, s.RecordAPILog(ctx, APILog{Method: "GET", Path: "/api/health", StatusCode: 200}))
	clock.advance(time.Second)
	require.NoError(t, s.RecordAPILog(ctx, APILog{
		UserID:     &userID,
		Method:     "POST",
		Path:       "/api/transfers",
		StatusCode: 201,
		DurationMS: 12,
		RequestID:  "req-1",
	}))

	logs, err := s.ListAPILogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "/api/transfers", logs[0].Path)
	assert.Equal(t, userID, *logs[0].UserID)
	assert.Equal(t, "req-1", logs[0].RequestID)
	assert.Equal(t, epoch.Add(time.Second), logs[0].CreatedAt)
	assert.Nil(t, logs[1].UserID)

	limited, err := s.ListAPILogs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
