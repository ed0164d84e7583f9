// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MemoryMetrics tracks memory tiering activity for production monitoring.
type MemoryMetrics struct {
	// storedCounter tracks items stored into short-term memory
	storedCounter metric.Int64Counter

	// promotedCounter tracks STM->LTM consolidations
	promotedCounter metric.Int64Counter

	// evictedCounter tracks permanent LTM evictions
	evictedCounter metric.Int64Counter

	// matchCounter tracks retrieval matches by scope
	matchCounter metric.Int64Counter

	// stmSizeGauge tracks the current short-term store size
	stmSizeGauge metric.Int64Gauge

	// ltmSizeGauge tracks the current long-term store size
	ltmSizeGauge metric.Int64Gauge
}

// NewMemoryMetrics creates a memory metrics tracker with OTEL meters.
func NewMemoryMetrics() (*MemoryMetrics, error) {
	meter := otel.Meter("substrate/memory")

	storedCounter, err := meter.Int64Counter(
		"substrate.memory.stored.total",
		metric.WithDescription("Items stored into short-term memory"),
	)
	if err != nil {
		return nil, err
	}

	promotedCounter, err := meter.Int64Counter(
		"substrate.memory.promoted.total",
		metric.WithDescription("Items consolidated from STM to LTM"),
	)
	if err != nil {
		return nil, err
	}

	evictedCounter, err := meter.Int64Counter(
		"substrate.memory.evicted.total",
		metric.WithDescription("Items permanently evicted from LTM"),
	)
	if err != nil {
		return nil, err
	}

	matchCounter, err := meter.Int64Counter(
		"substrate.memory.retrieval.matches.total",
		metric.WithDescription("Retrieval matches by scope"),
	)
	if err != nil {
		return nil, err
	}

	stmSizeGauge, err := meter.Int64Gauge(
		"substrate.memory.stm.size",
		metric.WithDescription("Current short-term store size"),
	)
	if err != nil {
		return nil, err
	}

	ltmSizeGauge, err := meter.Int64Gauge(
		"substrate.memory.ltm.size",
		metric.WithDescription("Current long-term store size"),
	)
	if err != nil {
		return nil, err
	}

	return &MemoryMetrics{
		storedCounter:   storedCounter,
		promotedCounter: promotedCounter,
		evictedCounter:  evictedCounter,
		matchCounter:    matchCounter,
		stmSizeGauge:    stmSizeGauge,
		ltmSizeGauge:    ltmSizeGauge,
	}, nil
}

// RecordStored increments the stored counter.
func (m *MemoryMetrics) RecordStored(ctx context.Context) {
	if m == nil {
		return
	}
	m.storedCounter.Add(ctx, 1)
}

// RecordPromoted increments the promotion counter.
func (m *MemoryMetrics) RecordPromoted(ctx context.Context) {
	if m == nil {
		return
	}
	m.promotedCounter.Add(ctx, 1)
}

// RecordEvicted increments the eviction counter.
func (m *MemoryMetrics) RecordEvicted(ctx context.Context) {
	if m == nil {
		return
	}
	m.evictedCounter.Add(ctx, 1)
}

// RecordMatches adds retrieval matches for the given scope.
func (m *MemoryMetrics) RecordMatches(ctx context.Context, scope string, matches int) {
	if m == nil || matches <= 0 {
		return
	}
	m.matchCounter.Add(ctx, int64(matches),
		metric.WithAttributes(attribute.String(AttrMemoryScope, scope)))
}

// RecordSizes records the current tier sizes.
func (m *MemoryMetrics) RecordSizes(ctx context.Context, stmSize, ltmSize int) {
	if m == nil {
		return
	}
	m.stmSizeGauge.Record(ctx, int64(stmSize))
	m.ltmSizeGauge.Record(ctx, int64(ltmSize))
}
