package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/quantum-studio/internal/application/services"
	tmocks "github.com/avatarctic/quantum-studio/test/mocks"
)

func TestRateLimiterService_DefaultsAllowThousandPerWindow(t *testing.T) {
	ctx := context.Background()
	repo := &tmocks.RateLimitRepositoryMock{}
	svc := impl.NewRateLimiterService(repo, nil, nil)

	var allowed bool
	var remaining, limit int
	var reset time.Time
	var err error
	for i := 0; i < 1000; i++ {
		allowed, remaining, limit, reset, err = svc.Allow(ctx, "192.0.2.1")
		require.NoError(t, err)
		require.True(t, allowed)
	}
	require.Equal(t, 0, remaining)
	require.Equal(t, 1000, limit)
	require.True(t, reset.After(time.Now()))
	require.LessOrEqual(t, time.Until(reset), 15*time.Minute)
	require.Equal(t, 30*time.Minute, repo.TTLs[0])

	allowed, remaining, _, _, err = svc.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 0, remaining)

	allowed, remaining, _, _, err = svc.Allow(ctx, "192.0.2.2")
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 999, remaining)
}

func TestRateLimiterService_BurstMultiplier(t *testing.T) {
	ctx := context.Background()
	svc := impl.NewRateLimiterService(&tmocks.RateLimitRepositoryMock{}, &impl.RateLimiterConfig{
		RequestsPerWindow: 2,
		BurstMultiplier:   1.5,
		Window:            time.Minute,
	}, nil)

	for i := 0; i < 3; i++ {
		allowed, _, limit, _, err := svc.Allow(ctx, "c")
		require.NoError(t, err)
		require.True(t, allowed)
		require.Equal(t, 2, limit)
	}
	allowed, _, _, _, err := svc.Allow(ctx, "c")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestRateLimiterService_FailsOpenOnStoreError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	repo := &tmocks.RateLimitRepositoryMock{
		IncrementWindowFn: func(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
			return 0, time.Now().Truncate(window), errors.New("connection refused")
		},
	}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerWindow: 5}, logger)

	allowed, remaining, limit, _, err := svc.Allow(context.Background(), "c")
	require.Error(t, err)
	require.True(t, allowed)
	require.Equal(t, 5, remaining)
	require.Equal(t, 5, limit)
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
