package output

import "time"

// Cache lookup outcomes reported to IncCacheLookup.
const (
	LookupHit      = "hit"
	LookupMiss     = "miss"
	LookupNegative = "negative"
	LookupError    = "error"
)

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncCacheLookup counts a registry lookup by outcome.
	IncCacheLookup(outcome string)

	// ObserveSourceDuration records the duration of a definition source call.
	ObserveSourceDuration(duration time.Duration)

	// SetCRSCached sets the number of published CRS keys.
	SetCRSCached(count int)

	// IncTransformCount increments the transformation counter.
	IncTransformCount(kind string, success bool)

	// ObserveTransformDuration records transformation duration.
	ObserveTransformDuration(kind string, duration time.Duration)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)

	// ObserveStorageDuration records storage operation duration.
	ObserveStorageDuration(operation string, duration time.Duration)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncCacheLookup implements MetricsCollector.
func (n *NoOpMetrics) IncCacheLookup(_ string) {}

// ObserveSourceDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveSourceDuration(_ time.Duration) {}

// SetCRSCached implements MetricsCollector.
func (n *NoOpMetrics) SetCRSCached(_ int) {}

// IncTransformCount implements MetricsCollector.
func (n *NoOpMetrics) IncTransformCount(_ string, _ bool) {}

// ObserveTransformDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveTransformDuration(_ string, _ time.Duration) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}

// ObserveStorageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}
