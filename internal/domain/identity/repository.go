// Package identity содержит доменную модель игровой личности BrainQuest.
package identity

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// STORE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Store определяет контракт хранилища записей личности.
// Две реализации в infrastructure слое: ephemeral (map в памяти) и
// durable (документ на владельца в PostgreSQL). Выбор делается один раз
// по tier через Router при разрешении личности.
//
// Семантика:
//   - Load при промахе в долговечном хранилище синтезирует запись по
//     умолчанию и записывает её обратно до возврата (at-most-once init);
//   - Save - полная перезапись документа (last-writer-wins), токена
//     оптимистической конкуренции нет: параллельные писатели одного
//     владельца могут молча затирать друг друга.
type Store interface {
	// Load возвращает запись владельца, синтезируя запись по умолчанию
	// при её отсутствии.
	Load(ctx context.Context, ownerID OwnerID) (*Record, error)

	// Save полностью перезаписывает документ владельца.
	Save(ctx context.Context, record *Record) error

	// List возвращает все записи (для пересборки кеша рейтинга).
	List(ctx context.Context) ([]*Record, error)
}

// Router выбирает хранилище по уровню долговечности.
type Router interface {
	// Resolve возвращает хранилище для указанного tier.
	Resolve(tier Tier) Store
}
