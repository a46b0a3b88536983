package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// CacheMetrics counts lookups against in-process caches.
type CacheMetrics interface {
	// RecordLookup counts one lookup of cache with result CacheHit or CacheMiss.
	RecordLookup(ctx context.Context, cache, result string)
}

type cacheMetrics struct {
	lookupCounter metric.Int64Counter
}

// NewCacheMetrics creates CacheMetrics recording <namespace>_cache_lookups_total.
func NewCacheMetrics(meterProvider metric.MeterProvider, namespace string) (CacheMetrics, error) {
	meter := meterProvider.Meter(namespace)

	lookupCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_cache_lookups_total", namespace),
		metric.WithDescription("Total number of cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache lookup counter: %w", err)
	}

	return &cacheMetrics{lookupCounter: lookupCounter}, nil
}

// RecordLookup implements CacheMetrics.
func (c *cacheMetrics) RecordLookup(ctx context.Context, cache, result string) {
	c.lookupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cache),
		attribute.String("result", result),
	))
}

// NoOpCacheMetrics discards every lookup.
type NoOpCacheMetrics struct{}

// NewNoOpCacheMetrics creates a no-op CacheMetrics implementation.
func NewNoOpCacheMetrics() CacheMetrics {
	return &NoOpCacheMetrics{}
}

// RecordLookup does nothing.
func (n *NoOpCacheMetrics) RecordLookup(ctx context.Context, cache, result string) {}
