package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles and gradual rollout. Owners are
// assigned to rollout buckets by a stable hash of their id, so a given owner
// keeps the same answer across requests and restarts.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Per-owner overrides, mostly for debugging
	ownerOverrides map[string]map[string]bool
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100). Only consulted when Enabled is true.
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// Live leaderboard stream over websocket
	FeatureLeaderboardStream = "leaderboard.live_stream"

	// Persist a freshly rolled-over week back on read, not only on write
	FeatureProgressWriteback = "progress.read_writeback"

	// Badge evaluation on every fold (off means badges freeze in place)
	FeatureBadgeEvaluation = "badges.evaluation"
)

// NewFeatureFlags creates the registry with production defaults applied,
// then environment overrides on top (FEATURE_<NAME>=bool,
// FEATURE_<NAME>_PERCENT=0-100, dots replaced by underscores).
func NewFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:       make(map[string]*Feature),
		ownerOverrides: make(map[string]map[string]bool),
	}

	ff.register(&Feature{
		Name:           FeatureLeaderboardStream,
		Description:    "Live leaderboard updates over websocket",
		Enabled:        true,
		RolloutPercent: 100,
	})
	ff.register(&Feature{
		Name:           FeatureProgressWriteback,
		Description:    "Persist lazily rolled-over weeks on read",
		Enabled:        true,
		RolloutPercent: 100,
	})
	ff.register(&Feature{
		Name:           FeatureBadgeEvaluation,
		Description:    "Evaluate badge rules on every recorded activity",
		Enabled:        true,
		RolloutPercent: 100,
	})

	ff.applyEnv()
	return ff
}

func (ff *FeatureFlags) register(f *Feature) {
	ff.features[f.Name] = f
}

func (ff *FeatureFlags) applyEnv() {
	for name, f := range ff.features {
		key := "FEATURE_" + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))

		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				f.Enabled = b
			}
		}
		if val := os.Getenv(key + "_PERCENT"); val != "" {
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				f.RolloutPercent = p
			}
		}
	}
}

// IsEnabled reports whether the flag is globally on, ignoring rollout.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	return ok && f.Enabled
}

// IsEnabledFor reports whether the flag is on for the given owner, taking
// overrides and the rollout bucket into account.
func (ff *FeatureFlags) IsEnabledFor(name, ownerID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if overrides, ok := ff.ownerOverrides[ownerID]; ok {
		if enabled, ok := overrides[name]; ok {
			return enabled
		}
	}

	f, ok := ff.features[name]
	if !ok || !f.Enabled {
		return false
	}
	if f.RolloutPercent >= 100 {
		return true
	}
	if f.RolloutPercent <= 0 {
		return false
	}

	return rolloutBucket(name, ownerID) < f.RolloutPercent
}

// SetOverride forces the flag for one owner regardless of rollout.
func (ff *FeatureFlags) SetOverride(ownerID, name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if ff.ownerOverrides[ownerID] == nil {
		ff.ownerOverrides[ownerID] = make(map[string]bool)
	}
	ff.ownerOverrides[ownerID][name] = enabled
}

// Set flips the global state of a flag at runtime.
func (ff *FeatureFlags) Set(name string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if f, ok := ff.features[name]; ok {
		f.Enabled = enabled
	}
}

// rolloutBucket maps an owner to 0-99. Including the flag name decorrelates
// buckets between flags, so 10% of one feature is not the same 10% of
// another.
func rolloutBucket(name, ownerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte(ownerID))
	return int(h.Sum32() % 100)
}
