package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthCacheHits       uint64
	AuthCacheMisses     uint64
	AuthDurationCount   uint64
	AuthDurationTotalNs int64
	LoginSuccesses      uint64
	LoginFailures       uint64
	UsersRegistered     uint64
	TagsCreated         uint64
	IngredientsCreated  uint64
	RecipesCreated      uint64
	RecipesUpdated      uint64
	RecipesDeleted      uint64
}

// InMemoryRecorder stores metrics in memory. Served from the admin metrics
// endpoint and used directly in tests.
type InMemoryRecorder struct {
	authCacheHits       uint64
	authCacheMisses     uint64
	authDurationCount   uint64
	authDurationTotalNs int64
	loginSuccesses      uint64
	loginFailures       uint64
	usersRegistered     uint64
	tagsCreated         uint64
	ingredientsCreated  uint64
	recipesCreated      uint64
	recipesUpdated      uint64
	recipesDeleted      uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AuthCacheHits:       atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:     atomic.LoadUint64(&m.authCacheMisses),
		AuthDurationCount:   atomic.LoadUint64(&m.authDurationCount),
		AuthDurationTotalNs: atomic.LoadInt64(&m.authDurationTotalNs),
		LoginSuccesses:      atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:       atomic.LoadUint64(&m.loginFailures),
		UsersRegistered:     atomic.LoadUint64(&m.usersRegistered),
		TagsCreated:         atomic.LoadUint64(&m.tagsCreated),
		IngredientsCreated:  atomic.LoadUint64(&m.ingredientsCreated),
		RecipesCreated:      atomic.LoadUint64(&m.recipesCreated),
		RecipesUpdated:      atomic.LoadUint64(&m.recipesUpdated),
		RecipesDeleted:      atomic.LoadUint64(&m.recipesDeleted),
	}
}

// IncAuthCacheHit increments the auth context cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	atomic.AddUint64(&m.authCacheHits, 1)
}

// IncAuthCacheMiss increments the auth context cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	atomic.AddUint64(&m.authCacheMisses, 1)
}

// ObserveAuthDuration records time spent authenticating a request.
func (m *InMemoryRecorder) ObserveAuthDuration(duration time.Duration) {
	atomic.AddUint64(&m.authDurationCount, 1)
	atomic.AddInt64(&m.authDurationTotalNs, duration.Nanoseconds())
}

// IncLogin increments the login counter for the given status.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		atomic.AddUint64(&m.loginSuccesses, 1)
		return
	}
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncTagCreated increments the tag created counter.
func (m *InMemoryRecorder) IncTagCreated() {
	atomic.AddUint64(&m.tagsCreated, 1)
}

// IncIngredientCreated increments the ingredient created counter.
func (m *InMemoryRecorder) IncIngredientCreated() {
	atomic.AddUint64(&m.ingredientsCreated, 1)
}

// IncRecipeCreated increments the recipe created counter.
func (m *InMemoryRecorder) IncRecipeCreated() {
	atomic.AddUint64(&m.recipesCreated, 1)
}

// IncRecipeUpdated increments the recipe updated counter.
func (m *InMemoryRecorder) IncRecipeUpdated() {
	atomic.AddUint64(&m.recipesUpdated, 1)
}

// IncRecipeDeleted increments the recipe deleted counter.
func (m *InMemoryRecorder) IncRecipeDeleted() {
	atomic.AddUint64(&m.recipesDeleted, 1)
}
