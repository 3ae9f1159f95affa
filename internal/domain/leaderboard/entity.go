// Package leaderboard содержит доменную модель общего лидерборда BrainQuest.
// Лидерборд - eventually-consistent проекция: каждая запись пересобирается
// при изменении xp/level личности и не имеет собственной персистентности
// кроме кеша рейтинга.
package leaderboard

import (
	"fmt"
	"sort"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry - одна rank-релевантная строка лидерборда.
// Получатель всегда трактует её как полную замену строки владельца,
// никогда как дельту для арифметического слияния.
type Entry struct {
	// OwnerID - владелец строки.
	OwnerID string `json:"ownerId"`

	// XP - текущий XP.
	XP int `json:"xp"`

	// Level - текущий уровень.
	Level int `json:"level"`

	// Avatar - опциональный URL аватара.
	Avatar string `json:"avatar,omitempty"`
}

// FromIdentity собирает строку лидерборда из записи личности.
func FromIdentity(rec *identity.Record) Entry {
	return Entry{
		OwnerID: rec.OwnerID.String(),
		XP:      int(rec.XP),
		Level:   int(rec.Level),
		Avatar:  rec.Avatar,
	}
}

// String возвращает строковое представление для логирования.
func (e Entry) String() string {
	return fmt.Sprintf("Entry{Owner: %s, XP: %d, Level: %d}", e.OwnerID, e.XP, e.Level)
}

// ══════════════════════════════════════════════════════════════════════════════
// DETERMINISTIC ORDERING
// ══════════════════════════════════════════════════════════════════════════════

// Less задаёт детерминированный порядок лидерборда: XP по убыванию,
// при равенстве - ownerId по возрастанию. Порядок специфицирован явно,
// потому что хранилище никакого порядка не подразумевает.
func Less(a, b Entry) bool {
	if a.XP != b.XP {
		return a.XP > b.XP
	}
	return a.OwnerID < b.OwnerID
}

// Sort сортирует записи в детерминированном порядке лидерборда.
func Sort(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// TopN возвращает не более n записей в детерминированном порядке.
// Вход не мутируется.
func TopN(entries []Entry, n int) []Entry {
	if n < 0 {
		n = 0
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	Sort(sorted)

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
