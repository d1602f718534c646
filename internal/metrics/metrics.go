// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncAuthCacheHit()
	IncAuthCacheMiss()
	ObserveAuthDuration(duration time.Duration)
	IncLogin(status string) // status: "success" or "failure"

	// Account metrics
	IncUserRegistered()

	// Catalog metrics
	IncTagCreated()
	IncIngredientCreated()
	IncRecipeCreated()
	IncRecipeUpdated()
	IncRecipeDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
