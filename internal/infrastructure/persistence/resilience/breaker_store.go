// Package resilience decorates stores with a circuit breaker. An open
// circuit surfaces as a transient error, so callers fall into their normal
// degraded path instead of waiting out a dead backend on every request.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
	"github.com/brainquest-hub/brainquest-progress-hub/pkg/circuitbreaker"
)

// IdentityStore wraps an identity.Store with a shared circuit breaker.
type IdentityStore struct {
	inner   identity.Store
	breaker *circuitbreaker.CircuitBreaker
}

// ProgressStore wraps a progress.Store with a shared circuit breaker.
type ProgressStore struct {
	inner   progress.Store
	breaker *circuitbreaker.CircuitBreaker
}

// NewStores decorates both durable stores with one breaker: identity and
// progress documents live in the same database, so its health is shared.
func NewStores(
	identities identity.Store,
	progresses progress.Store,
	logger *slog.Logger,
) (*IdentityStore, *ProgressStore) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "circuit_breaker")

	breaker := circuitbreaker.New(
		"database",
		circuitbreaker.WithFailureThreshold(3),
		circuitbreaker.WithSuccessThreshold(1),
		circuitbreaker.WithCooldown(10*time.Second),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			log.Warn("state changed", "breaker", name, "from", from.String(), "to", to.String())
		}),
		// Expected domain misses (not-found, validation) are not outages.
		circuitbreaker.WithIsFailure(shared.IsTransient),
	)

	return &IdentityStore{inner: identities, breaker: breaker},
		&ProgressStore{inner: progresses, breaker: breaker}
}

// translate maps a rejected call to the transient error the application
// layer degrades on; real errors pass through untouched.
func translate(op string, err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return shared.WrapError("persistence", op, shared.ErrServiceUnavailable,
			"database circuit open", err)
	}
	return err
}

func (s *IdentityStore) Load(ctx context.Context, ownerID identity.OwnerID) (*identity.Record, error) {
	var record *identity.Record
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		record, innerErr = s.inner.Load(ctx, ownerID)
		return innerErr
	})
	if err != nil {
		return nil, translate("Load", err)
	}
	return record, nil
}

func (s *IdentityStore) Save(ctx context.Context, record *identity.Record) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.inner.Save(ctx, record)
	})
	return translate("Save", err)
}

func (s *IdentityStore) List(ctx context.Context) ([]*identity.Record, error) {
	var records []*identity.Record
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		records, innerErr = s.inner.List(ctx)
		return innerErr
	})
	if err != nil {
		return nil, translate("List", err)
	}
	return records, nil
}

func (s *ProgressStore) Load(ctx context.Context, ownerID identity.OwnerID) (*progress.Weekly, error) {
	var weekly *progress.Weekly
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		weekly, innerErr = s.inner.Load(ctx, ownerID)
		return innerErr
	})
	if err != nil {
		return nil, translate("Load", err)
	}
	return weekly, nil
}

func (s *ProgressStore) Save(ctx context.Context, weekly *progress.Weekly) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.inner.Save(ctx, weekly)
	})
	return translate("Save", err)
}
