// Package postgres implements the durable persistence tier for the BrainQuest
// progress hub.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEEKLY PROGRESS REPOSITORY (durable tier)
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Store on PostgreSQL JSONB documents.
// One document per owner; rollover overwrites it in place.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// Load returns the owner's weekly record or progress.ErrProgressNotFound.
// Unlike identity.Store, a miss is not resolved here: week creation needs
// "today" and belongs to the aggregator.
func (r *ProgressRepository) Load(ctx context.Context, ownerID identity.OwnerID) (*progress.Weekly, error) {
	query := `SELECT doc FROM weekly_progress WHERE owner_id = $1`

	var doc []byte
	err := r.conn.QueryRow(ctx, query, ownerID.String()).Scan(&doc)
	if errors.Is(err, ErrNoRows) {
		return nil, progress.ErrProgressNotFound
	}
	if err != nil {
		return nil, shared.WrapError("progress", "Load", shared.ErrTransientIO, "query failed", err)
	}

	var weekly progress.Weekly
	if err := json.Unmarshal(doc, &weekly); err != nil {
		return nil, fmt.Errorf("progress.Load: failed to unmarshal document: %w", err)
	}

	return &weekly, nil
}

// Save overwrites the owner's weekly document in full (last-writer-wins).
func (r *ProgressRepository) Save(ctx context.Context, weekly *progress.Weekly) error {
	doc, err := json.Marshal(weekly)
	if err != nil {
		return fmt.Errorf("progress.Save: failed to marshal record: %w", err)
	}

	query := `
		INSERT INTO weekly_progress (owner_id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.conn.Exec(ctx, query, weekly.OwnerID.String(), doc, time.Now().UTC()); err != nil {
		return shared.WrapError("progress", "Save", shared.ErrTransientIO, "document overwrite failed", err)
	}

	return nil
}
