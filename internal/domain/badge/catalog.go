// Package badge содержит движок правил достижений BrainQuest.
// Бейдж - монотонный идемпотентный флаг без пути удаления: однажды
// выданный, он остаётся в наборе навсегда.
package badge

import "sort"

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// Бейджи, выдаваемые движком правил.
const (
	// FirstGame - завершена первая игра.
	FirstGame = "first_game"
	// Streak3 - серия из 3 дней.
	Streak3 = "streak_3"
	// Streak7 - серия из 7 дней.
	Streak7 = "streak_7"
	// Level5 - достигнут 5 уровень.
	Level5 = "level_5"
	// Level10 - достигнут 10 уровень.
	Level10 = "level_10"
)

// Бейджи, засеиваемые внешними коллабораторами вне пути Evaluate.
// Каталог знает их id, но никогда не выдаёт сам.
const (
	// FirstLogin - первый вход (seed-бейдж записи по умолчанию).
	FirstLogin = "first_login"
	// GuestMode - игра в гостевом (ephemeral) режиме.
	GuestMode = "guest_mode"
	// PerfectScore - идеальный результат в мини-игре.
	PerfectScore = "perfect_score"
)

// Facts - факты, по которым вычисляется набор бейджей.
// Собираются агрегатором и движком уровней после фолдинга активности.
type Facts struct {
	// LeveledUp - был ли переход уровня этим событием.
	LeveledUp bool

	// CurrentStreak - текущая серия активных дней.
	CurrentStreak int

	// GameCompleted - была ли завершена игра этим событием.
	GameCompleted bool

	// NewLevel - уровень после применения XP.
	NewLevel int
}

// rule - одна строка таблицы предикатов.
type rule struct {
	id        string
	predicate func(Facts) bool
}

// rules - фиксированная таблица предикатов разблокировки.
var rules = []rule{
	{FirstGame, func(f Facts) bool { return f.GameCompleted }},
	{Streak3, func(f Facts) bool { return f.CurrentStreak >= 3 }},
	{Streak7, func(f Facts) bool { return f.CurrentStreak >= 7 }},
	{Level5, func(f Facts) bool { return f.LeveledUp && f.NewLevel >= 5 }},
	{Level10, func(f Facts) bool { return f.LeveledUp && f.NewLevel >= 10 }},
}

// Evaluate возвращает новый набор бейджей: объединение текущего набора с
// бейджами, чьи предикаты выполнены на фактах.
//
// Гарантии:
//   - тотальная функция: не возвращает ошибок на любых фактах;
//   - union-семантика: повторный вызов с теми же фактами - no-op
//     (идемпотентность);
//   - существующий бейдж никогда не удаляется.
//
// Входной набор не мутируется.
func Evaluate(current map[string]bool, facts Facts) map[string]bool {
	result := make(map[string]bool, len(current)+len(rules))
	for id, v := range current {
		if v {
			result[id] = true
		}
	}

	for _, r := range rules {
		if r.predicate(facts) {
			result[r.id] = true
		}
	}

	return result
}

// NewlyUnlocked возвращает бейджи, присутствующие в after, но не в before,
// в отсортированном порядке. Используется для эмиссии событий BadgeUnlocked.
func NewlyUnlocked(before, after map[string]bool) []string {
	var unlocked []string
	for id := range after {
		if !before[id] {
			unlocked = append(unlocked, id)
		}
	}
	sort.Strings(unlocked)
	return unlocked
}
