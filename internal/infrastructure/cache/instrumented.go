package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

var operationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_operations_total",
		Help: "Cache backend operations by backend, operation and result",
	},
	[]string{"backend", "operation", "result"},
)

func init() {
	prometheus.MustRegister(operationsTotal)
}

// GetOperationsTotal returns the cache operations metric.
func GetOperationsTotal() *prometheus.CounterVec {
	return operationsTotal
}

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultOK    = "ok"
	resultError = "error"
)

// InstrumentedCache counts every backend call without changing its outcome.
type InstrumentedCache struct {
	inner ports.Cache
	ops   *prometheus.CounterVec
}

// NewInstrumentedCache wraps inner; a nil counter uses the package metric.
func NewInstrumentedCache(inner ports.Cache, ops *prometheus.CounterVec) *InstrumentedCache {
	if ops == nil {
		ops = operationsTotal
	}
	return &InstrumentedCache{inner: inner, ops: ops}
}

func (c *InstrumentedCache) observe(op string, err error, okResult string) {
	result := okResult
	if err != nil {
		result = resultError
	}
	c.ops.WithLabelValues(c.inner.Backend(), op, result).Inc()
}

func (c *InstrumentedCache) Backend() string { return c.inner.Backend() }

func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := c.inner.Get(ctx, key)
	result := resultMiss
	if ok {
		result = resultHit
	}
	c.observe("get", err, result)
	return v, ok, err
}

func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, value, ttl)
	c.observe("set", err, resultOK)
	return err
}

func (c *InstrumentedCache) Delete(ctx context.Context, key string) (int64, error) {
	n, err := c.inner.Delete(ctx, key)
	c.observe("delete", err, resultOK)
	return n, err
}

func (c *InstrumentedCache) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := c.inner.Exists(ctx, key)
	result := resultMiss
	if ok {
		result = resultHit
	}
	c.observe("exists", err, result)
	return ok, err
}

func (c *InstrumentedCache) FlushAll(ctx context.Context) error {
	err := c.inner.FlushAll(ctx)
	c.observe("flush", err, resultOK)
	return err
}

var _ ports.Cache = (*InstrumentedCache)(nil)
