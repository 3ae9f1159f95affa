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
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY REPOSITORY (durable tier)
// ══════════════════════════════════════════════════════════════════════════════

// IdentityRepository implements identity.Store on PostgreSQL JSONB documents.
type IdentityRepository struct {
	conn *Connection
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(conn *Connection) *IdentityRepository {
	return &IdentityRepository{conn: conn}
}

// Load returns the owner's identity record. On a miss it synthesizes the
// default record (xp=0, level=1, seed badge) and writes it back before
// returning, establishing at-most-once initialization.
func (r *IdentityRepository) Load(ctx context.Context, ownerID identity.OwnerID) (*identity.Record, error) {
	record, err := r.fetch(ctx, ownerID)
	if errors.Is(err, identity.ErrIdentityNotFound) {
		return r.initialize(ctx, ownerID)
	}
	return record, err
}

// fetch reads the stored document. A miss is reported as
// identity.ErrIdentityNotFound; the sentinel never leaves the repository,
// Load resolves it through default-record synthesis.
func (r *IdentityRepository) fetch(ctx context.Context, ownerID identity.OwnerID) (*identity.Record, error) {
	var doc []byte
	err := r.conn.QueryRow(ctx, `SELECT doc FROM identities WHERE owner_id = $1`, ownerID.String()).Scan(&doc)
	if errors.Is(err, ErrNoRows) {
		return nil, identity.ErrIdentityNotFound
	}
	if err != nil {
		return nil, shared.WrapError("identity", "Load", shared.ErrTransientIO, "query failed", err)
	}

	var record identity.Record
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, fmt.Errorf("identity.Load: failed to unmarshal document: %w", err)
	}

	return &record, nil
}

// initialize writes the default record back on a load miss.
// A concurrent initializer may win the insert; the unique violation marks
// the lost race, and the stored document is re-read so both callers observe
// the same record.
func (r *IdentityRepository) initialize(ctx context.Context, ownerID identity.OwnerID) (*identity.Record, error) {
	record, err := identity.NewRecord(ownerID, identity.TierDurable)
	if err != nil {
		return nil, fmt.Errorf("identity.Load: %w", err)
	}

	doc, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("identity.Load: failed to marshal default record: %w", err)
	}

	query := `
		INSERT INTO identities (owner_id, doc, updated_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.conn.Exec(ctx, query, ownerID.String(), doc, time.Now().UTC()); err != nil {
		if IsUniqueViolation(err) {
			existing, rerr := r.fetch(ctx, ownerID)
			if rerr != nil {
				return nil, shared.WrapError("identity", "Load", shared.ErrTransientIO, "re-read after lost init race failed", rerr)
			}
			return existing, nil
		}
		return nil, shared.WrapError("identity", "Load", shared.ErrTransientIO, "default-record write-back failed", err)
	}

	return record, nil
}

// Save overwrites the owner's document in full. Last writer wins; there is
// no optimistic-concurrency token.
func (r *IdentityRepository) Save(ctx context.Context, record *identity.Record) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("identity.Save: failed to marshal record: %w", err)
	}

	query := `
		INSERT INTO identities (owner_id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.conn.Exec(ctx, query, record.OwnerID.String(), doc, time.Now().UTC()); err != nil {
		return shared.WrapError("identity", "Save", shared.ErrTransientIO, "document overwrite failed", err)
	}

	return nil
}

// List returns all identity records, used to rebuild the ranking cache.
func (r *IdentityRepository) List(ctx context.Context) ([]*identity.Record, error) {
	query := `SELECT doc FROM identities ORDER BY ((doc->>'xp')::int) DESC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError("identity", "List", shared.ErrTransientIO, "query failed", err)
	}
	defer rows.Close()

	var records []*identity.Record
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("identity.List: scan failed: %w", err)
		}

		var record identity.Record
		if err := json.Unmarshal(doc, &record); err != nil {
			return nil, fmt.Errorf("identity.List: failed to unmarshal document: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("identity", "List", shared.ErrTransientIO, "row iteration failed", err)
	}

	return records, nil
}
