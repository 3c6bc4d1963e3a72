package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	config "github.com/avatarctic/quantum-studio/configs"
)

func run(t *testing.T, cfg *config.CacheConfig, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd(out, cfg)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func TestCachectl_RoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := &config.CacheConfig{RedisURL: "redis://" + srv.Addr(), KeyPrefix: "qs", DefaultTTL: time.Hour}

	out, err := run(t, cfg, "set", "user_1", `{"id":1}`, "--ttl", "30s")
	require.NoError(t, err)
	require.Equal(t, "OK", out)
	require.True(t, srv.Exists("qs:user_1"))
	require.Equal(t, 30*time.Second, srv.TTL("qs:user_1"))

	out, err = run(t, cfg, "get", "user_1")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1}`, out)

	out, err = run(t, cfg, "exists", "user_1")
	require.NoError(t, err)
	require.Equal(t, "true", out)

	out, err = run(t, cfg, "del", "user_1", "user_2")
	require.NoError(t, err)
	require.Equal(t, "1", out)

	_, err = run(t, cfg, "get", "user_1")
	require.ErrorIs(t, err, errMiss)
}

func TestCachectl_SetUsesDefaultTTLAndRejectsInvalidJSON(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := &config.CacheConfig{RedisURL: "redis://" + srv.Addr(), DefaultTTL: 5 * time.Minute}

	_, err := run(t, cfg, "set", "k", `{not json`)
	require.Error(t, err)
	require.False(t, srv.Exists("k"))

	_, err = run(t, cfg, "set", "k", `[1,2]`)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, srv.TTL("k"))
}

func TestCachectl_FlushHonoursPrefix(t *testing.T) {
	srv := miniredis.RunT(t)
	require.NoError(t, srv.Set("foreign", "x"))
	cfg := &config.CacheConfig{RedisURL: "redis://" + srv.Addr(), KeyPrefix: "qs", DefaultTTL: time.Hour}

	for _, k := range []string{"a", "b"} {
		_, err := run(t, cfg, "set", k, `1`)
		require.NoError(t, err)
	}
	out, err := run(t, cfg, "flush")
	require.NoError(t, err)
	require.Equal(t, "OK", out)
	require.Equal(t, []string{"foreign"}, srv.Keys())
}

func TestCachectl_RedisURLFlagOverridesConfig(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := &config.CacheConfig{DefaultTTL: time.Hour}

	_, err := run(t, cfg, "--redis-url", "redis://"+srv.Addr(), "set", "k", `"v"`)
	require.NoError(t, err)
	require.True(t, srv.Exists("k"))
}

func TestCachectl_ArgumentValidation(t *testing.T) {
	cfg := &config.CacheConfig{DefaultTTL: time.Hour}
	_, err := run(t, cfg, "get")
	require.Error(t, err)
	_, err = run(t, cfg, "del")
	require.Error(t, err)
	_, err = run(t, cfg, "flush", "extra")
	require.Error(t, err)
}
