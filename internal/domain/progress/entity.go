// Package progress содержит доменную модель недельного прогресса BrainQuest.
// Недельное окно - фиксированные 7 дней с выравниванием по понедельнику.
// Все датовые ключи - абсолютные календарные даты UTC (фиксированное
// политическое решение, см. pkg/timeutil).
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNegativeXPDelta - активность с отрицательной XP-дельтой отклоняется
	// до какого-либо фолдинга.
	ErrNegativeXPDelta = errors.New("progress: xp delta must be non-negative")

	// ErrInvalidOwnerID - активность без владельца.
	ErrInvalidOwnerID = errors.New("progress: owner id is required")

	// ErrProgressNotFound - недельная запись не найдена в хранилище.
	ErrProgressNotFound = errors.New("progress: weekly record not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY EVENT (transient input)
// ══════════════════════════════════════════════════════════════════════════════

// Activity - транзиентное событие одной мини-игры. Не персистится как
// сущность: в недельную запись попадает только его эффект.
//
// Ключа идемпотентности нет: повторные отправки (например, ретраи клиента)
// складываются аддитивно. Это задокументированное поведение, а не баг.
type Activity struct {
	// OwnerID - владелец активности.
	OwnerID identity.OwnerID

	// XPDelta - заработанный XP (неотрицательный).
	XPDelta int

	// Played - сыграна ли игра.
	Played bool

	// Completed - завершена ли игра.
	Completed bool
}

// Validate проверяет событие до фолдинга. При ошибке ничего не применяется.
func (a Activity) Validate() error {
	if !a.OwnerID.IsValid() {
		return ErrInvalidOwnerID
	}
	if a.XPDelta < 0 {
		return ErrNegativeXPDelta
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY RECORD
// ══════════════════════════════════════════════════════════════════════════════

// DailyRecord - агрегат одного календарного дня внутри недельного окна.
// Дата иммутабельна после создания.
type DailyRecord struct {
	// Date - датовый ключ (ISO, YYYY-MM-DD, UTC).
	Date string `json:"date"`

	// XP - заработанный за день XP.
	XP int `json:"xp"`

	// GamesPlayed - сыграно игр за день.
	GamesPlayed int `json:"gamesPlayed"`

	// GamesCompleted - завершено игр за день.
	GamesCompleted int `json:"gamesCompleted"`

	// Active - была ли хоть какая-то активность.
	Active bool `json:"active"`
}

// ══════════════════════════════════════════════════════════════════════════════
// WEEKLY PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// Weekly - недельная запись прогресса одного владельца.
//
// Инварианты:
//   - Days всегда содержит ровно 7 записей, покрывающих неделю от
//     WeekStartDate (слоты предзасеиваются нулевыми записями при создании,
//     так что "ровно 7" выполняется структурно);
//   - тоталы всегда равны сумме 7 дневных слотов (пересуммирование, не
//     инкремент);
//   - 0 <= CurrentStreak <= 7 и CurrentStreak <= LongestStreak.
type Weekly struct {
	// OwnerID - владелец записи.
	OwnerID identity.OwnerID `json:"ownerId"`

	// WeekStartDate - понедельник недели (ISO, YYYY-MM-DD).
	WeekStartDate string `json:"weekStartDate"`

	// Days - дневные слоты по датовым ключам.
	Days map[string]*DailyRecord `json:"days"`

	// TotalXp - суммарный XP за неделю.
	TotalXp int `json:"totalXp"`

	// TotalGamesPlayed - суммарно сыграно игр.
	TotalGamesPlayed int `json:"totalGamesPlayed"`

	// TotalGamesCompleted - суммарно завершено игр.
	TotalGamesCompleted int `json:"totalGamesCompleted"`

	// CurrentStreak - число последовательных активных дней, заканчивающихся
	// последним днём с активностью.
	CurrentStreak int `json:"currentStreak"`

	// LongestStreak - лучшая серия за время жизни записи.
	LongestStreak int `json:"longestStreak"`
}

// NewWeekly создаёт пустую недельную запись для недели, содержащей at.
// Все 7 дневных слотов предзасеиваются нулевыми записями (active=false).
func NewWeekly(ownerID identity.OwnerID, at time.Time) *Weekly {
	w := &Weekly{
		OwnerID:       ownerID,
		WeekStartDate: timeutil.DateKey(timeutil.StartOfWeek(at)),
		Days:          make(map[string]*DailyRecord, 7),
	}

	for _, date := range timeutil.WeekDates(at) {
		key := timeutil.DateKey(date)
		w.Days[key] = &DailyRecord{Date: key}
	}

	return w
}

// NeedsRollover возвращает true, если запись относится не к текущей неделе.
// Ролловер ленивый: вычисляется только при следующем обращении к владельцу,
// фонового планировщика нет.
func (w *Weekly) NeedsRollover(now time.Time) bool {
	return w.WeekStartDate != timeutil.DateKey(timeutil.StartOfWeek(now))
}

// Day возвращает дневной слот по датовому ключу, досоздавая его при
// отсутствии (защита от записей, десериализованных без части слотов).
func (w *Weekly) Day(key string) *DailyRecord {
	if w.Days == nil {
		w.Days = make(map[string]*DailyRecord, 7)
	}
	day, ok := w.Days[key]
	if !ok {
		day = &DailyRecord{Date: key}
		w.Days[key] = day
	}
	return day
}

// String возвращает строковое представление для логирования.
func (w *Weekly) String() string {
	return fmt.Sprintf("Weekly{Owner: %s, Week: %s, XP: %d, Streak: %d/%d}",
		w.OwnerID, w.WeekStartDate, w.TotalXp, w.CurrentStreak, w.LongestStreak)
}

// Clone создаёт глубокую копию записи.
func (w *Weekly) Clone() *Weekly {
	if w == nil {
		return nil
	}

	clone := *w
	clone.Days = make(map[string]*DailyRecord, len(w.Days))
	for key, day := range w.Days {
		d := *day
		clone.Days[key] = &d
	}
	return &clone
}
