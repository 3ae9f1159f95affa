package progress

import (
	"time"

	"github.com/brainquest-hub/brainquest-progress-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY FOLDING
// ══════════════════════════════════════════════════════════════════════════════

// Fold применяет эффект активности к дневному слоту "сегодня" и пересчитывает
// все производные поля. Событие должно быть провалидировано заранее.
//
// Шаги (порядок фиксирован):
//  1. get-or-create дневного слота по UTC-дате now;
//  2. аддитивное применение дельты (дедупликации нет);
//  3. пересуммирование тоталов по всем 7 слотам - не инкрементально,
//     для устойчивости к частично применённым записям;
//  4. пересчёт серии сканом по убыванию дат от сегодня.
func (w *Weekly) Fold(a Activity, now time.Time) {
	day := w.Day(timeutil.DateKey(now))

	day.XP += a.XPDelta
	if a.Played {
		day.GamesPlayed++
	}
	if a.Completed {
		day.GamesCompleted++
	}
	day.Active = true

	w.RecomputeTotals()
	w.RecomputeStreak(now)
}

// RecomputeTotals пересуммирует недельные тоталы по дневным слотам.
func (w *Weekly) RecomputeTotals() {
	var xp, played, completed int
	for _, day := range w.Days {
		xp += day.XP
		played += day.GamesPlayed
		completed += day.GamesCompleted
	}

	w.TotalXp = xp
	w.TotalGamesPlayed = played
	w.TotalGamesCompleted = completed
}

// RecomputeStreak пересчитывает текущую серию сканом от сегодняшней даты
// назад: считаются последовательные активные дни до первого разрыва или до
// начала недели. LongestStreak только растёт.
func (w *Weekly) RecomputeStreak(now time.Time) {
	streak := 0
	date := timeutil.StartOfDay(now)
	weekStart, err := timeutil.ParseDateKey(w.WeekStartDate)
	if err != nil {
		// Повреждённый ключ недели: серию считать не от чего.
		w.CurrentStreak = 0
		return
	}

	for !date.Before(weekStart) {
		day, ok := w.Days[timeutil.DateKey(date)]
		if !ok || !day.Active {
			break
		}
		streak++
		date = date.AddDate(0, 0, -1)
	}

	w.CurrentStreak = streak
	if streak > w.LongestStreak {
		w.LongestStreak = streak
	}
}
