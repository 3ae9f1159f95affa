// Package leaderboard содержит доменную модель общего лидерборда BrainQuest.
package leaderboard

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// BROADCAST CHANNEL INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Broadcaster - канал рассылки rank-релевантных изменений всем подключённым
// зрителям. Контракт best-effort: без подтверждений, без replay-буфера.
// Зритель, подключившийся после публикации, не увидит её до следующей
// публикации или явного снапшота.
//
// Канал - явно владеемый объект с жизненным циклом init/teardown в границах
// сервиса, а не амбиентное глобальное состояние.
type Broadcaster interface {
	// Publish рассылает строку всем текущим подписчикам. Недоставка
	// отдельному зрителю молча отбрасывается.
	Publish(entry Entry)

	// Subscribe возвращает живой поток строк для зрителя до Unsubscribe.
	Subscribe(viewerID string) (<-chan Entry, error)

	// Unsubscribe отключает зрителя и закрывает его поток.
	Unsubscribe(viewerID string)

	// Close завершает канал и отключает всех зрителей.
	Close()
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// RankingCache - кеш рейтинга для pull-запроса топ-N.
// Отделён от broadcast-канала: снапшот - это явный pull, fallback зрителя
// при потере транспорта (ручной re-pull, не автоматический replay).
type RankingCache interface {
	// Upsert заменяет строку владельца в кеше.
	Upsert(ctx context.Context, entry Entry) error

	// Top возвращает не более n строк: XP по убыванию, при равенстве
	// ownerId по возрастанию.
	Top(ctx context.Context, n int) ([]Entry, error)

	// Rebuild атомарно пересобирает кеш из полного набора строк.
	Rebuild(ctx context.Context, entries []Entry) error
}
