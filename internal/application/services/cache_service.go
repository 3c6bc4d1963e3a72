package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// CacheService layers JSON encoding and fault absorption over a raw backend.
// Per-key methods never return errors; a failing backend reads as a miss and
// writes become logged no-ops.
type CacheService struct {
	cache      ports.Cache
	defaultTTL time.Duration
	logger     *logrus.Logger
}

// NewCacheService builds the helper layer. A non-positive defaultTTL falls back to ports.DefaultCacheTTL.
func NewCacheService(cache ports.Cache, defaultTTL time.Duration, logger *logrus.Logger) ports.CacheService {
	if defaultTTL <= 0 {
		defaultTTL = ports.DefaultCacheTTL
	}
	return &CacheService{cache: cache, defaultTTL: defaultTTL, logger: logger}
}

func (s *CacheService) warn(err error, op, key string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"backend": s.cache.Backend(),
		"op":      op,
		"key":     key,
	}).WithError(err).Warn("cache: operation failed")
}

func (s *CacheService) Get(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.warn(err, "get", key)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.warn(fmt.Errorf("decode cached value: %w", err), "get", key)
		return false
	}
	return true
}

func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.warn(fmt.Errorf("encode value: %w", err), "set", key)
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.warn(err, "set", key)
	}
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if _, err := s.cache.Delete(ctx, key); err != nil {
			s.warn(err, "delete", key)
		}
	}
}

func (s *CacheService) Exists(ctx context.Context, key string) bool {
	ok, err := s.cache.Exists(ctx, key)
	if err != nil {
		s.warn(err, "exists", key)
		return false
	}
	return ok
}

// FlushAll is administrative, so unlike the per-key methods it reports failure.
func (s *CacheService) FlushAll(ctx context.Context) error {
	if err := s.cache.FlushAll(ctx); err != nil {
		return fmt.Errorf("failed to flush %s cache: %w", s.cache.Backend(), err)
	}
	if s.logger != nil {
		s.logger.WithField("backend", s.cache.Backend()).Info("cache: flushed")
	}
	return nil
}

func (s *CacheService) Backend() string { return s.cache.Backend() }

// GetCached decodes the entry under key into a fresh T. A nil service is always a miss.
func GetCached[T any](ctx context.Context, c ports.CacheService, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	var v T
	if !c.Get(ctx, key, &v) {
		return nil, false
	}
	return &v, true
}
