// Package progress содержит доменную модель недельного прогресса BrainQuest.
package progress

import (
	"context"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Store определяет контракт хранилища недельных записей.
// Реализации в infrastructure слое: ephemeral (map в памяти) и durable
// (JSONB-документ на владельца в PostgreSQL).
//
// Save - полная перезапись документа (last-writer-wins). Вытесненная при
// ролловере неделя не архивируется: Save новой недели просто затирает старую.
type Store interface {
	// Load возвращает недельную запись владельца или ErrProgressNotFound.
	Load(ctx context.Context, ownerID identity.OwnerID) (*Weekly, error)

	// Save полностью перезаписывает недельный документ владельца.
	Save(ctx context.Context, weekly *Weekly) error
}

// Router выбирает хранилище прогресса по уровню долговечности.
type Router interface {
	Resolve(tier identity.Tier) Store
}
