package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainquest-hub/brainquest-progress-hub/pkg/timeutil"
)

// Thursday of a fixed week: Monday 2026-08-24 .. Sunday 2026-08-30.
var thursday = time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC)

func day(w *Weekly, t time.Time) *DailyRecord {
	return w.Days[timeutil.DateKey(t)]
}

func TestNewWeekly_PreseedsSevenSlots(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	assert.Equal(t, "2026-08-24", w.WeekStartDate)
	require.Len(t, w.Days, 7)

	for key, slot := range w.Days {
		assert.Equal(t, key, slot.Date)
		assert.False(t, slot.Active)
		assert.Zero(t, slot.XP)
	}
	assert.Zero(t, w.TotalXp)
	assert.Zero(t, w.CurrentStreak)
}

func TestFold_SingleActivity(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 25, Played: true, Completed: true}, thursday)

	slot := day(w, thursday)
	require.NotNil(t, slot)
	assert.Equal(t, 25, slot.XP)
	assert.Equal(t, 1, slot.GamesPlayed)
	assert.Equal(t, 1, slot.GamesCompleted)
	assert.True(t, slot.Active)

	assert.Equal(t, 25, w.TotalXp)
	assert.Equal(t, 1, w.TotalGamesPlayed)
	assert.Equal(t, 1, w.TotalGamesCompleted)
	assert.Equal(t, 1, w.CurrentStreak)
	assert.Equal(t, 1, w.LongestStreak)
}

func TestFold_DuplicateSubmissionIsAdditive(t *testing.T) {
	w := NewWeekly("owner-1", thursday)
	activity := Activity{OwnerID: "owner-1", XPDelta: 10, Played: true, Completed: true}

	w.Fold(activity, thursday)
	w.Fold(activity, thursday)

	slot := day(w, thursday)
	assert.Equal(t, 20, slot.XP)
	assert.Equal(t, 2, slot.GamesPlayed)
	assert.Equal(t, 2, slot.GamesCompleted)
	assert.Equal(t, 20, w.TotalXp)
	assert.Equal(t, 1, w.CurrentStreak, "same-day resubmission must not extend the streak")
}

func TestFold_ZeroXPStillMarksDayActive(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 0, Played: true}, thursday)

	assert.True(t, day(w, thursday).Active)
	assert.Equal(t, 1, w.CurrentStreak)
	assert.Zero(t, w.TotalXp)
}

func TestFold_TotalsAreResummedAcrossDays(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 10, Played: true}, thursday.AddDate(0, 0, -2))
	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 15, Played: true, Completed: true}, thursday.AddDate(0, 0, -1))
	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 5, Played: true}, thursday)

	assert.Equal(t, 30, w.TotalXp)
	assert.Equal(t, 3, w.TotalGamesPlayed)
	assert.Equal(t, 1, w.TotalGamesCompleted)
}

func TestRecomputeStreak_ConsecutiveTrailingDays(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	// Tuesday, Wednesday, Thursday active.
	for offset := -2; offset <= 0; offset++ {
		w.Fold(Activity{OwnerID: "owner-1", XPDelta: 1, Played: true}, thursday.AddDate(0, 0, offset))
	}

	assert.Equal(t, 3, w.CurrentStreak)
	assert.Equal(t, 3, w.LongestStreak)
}

func TestRecomputeStreak_GapResetsCurrentButNotLongest(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	// Monday..Wednesday active, Thursday idle, Friday active.
	for offset := -3; offset <= -1; offset++ {
		w.Fold(Activity{OwnerID: "owner-1", XPDelta: 1, Played: true}, thursday.AddDate(0, 0, offset))
	}
	friday := thursday.AddDate(0, 0, 1)
	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 1, Played: true}, friday)

	assert.Equal(t, 1, w.CurrentStreak)
	assert.Equal(t, 3, w.LongestStreak)
}

func TestRecomputeStreak_InactiveTodayMeansZero(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 10, Played: true}, thursday.AddDate(0, 0, -1))

	// Re-evaluate as of Thursday with no Thursday activity.
	w.RecomputeStreak(thursday)

	assert.Equal(t, 0, w.CurrentStreak)
	assert.Equal(t, 1, w.LongestStreak)
}

func TestRecomputeStreak_FullWeek(t *testing.T) {
	sunday := time.Date(2026, 8, 30, 20, 0, 0, 0, time.UTC)
	w := NewWeekly("owner-1", sunday)

	for offset := -6; offset <= 0; offset++ {
		w.Fold(Activity{OwnerID: "owner-1", XPDelta: 1, Played: true}, sunday.AddDate(0, 0, offset))
	}

	assert.Equal(t, 7, w.CurrentStreak)
	assert.Equal(t, 7, w.LongestStreak)
}

func TestNeedsRollover(t *testing.T) {
	w := NewWeekly("owner-1", thursday)

	assert.False(t, w.NeedsRollover(thursday))
	assert.False(t, w.NeedsRollover(time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)))
	assert.True(t, w.NeedsRollover(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.NeedsRollover(thursday.AddDate(0, 1, 0)))
}

func TestActivity_Validate(t *testing.T) {
	tests := []struct {
		name     string
		activity Activity
		wantErr  error
	}{
		{"valid", Activity{OwnerID: "owner-1", XPDelta: 10}, nil},
		{"zero xp is valid", Activity{OwnerID: "owner-1"}, nil},
		{"missing owner", Activity{XPDelta: 10}, ErrInvalidOwnerID},
		{"negative xp", Activity{OwnerID: "owner-1", XPDelta: -1}, ErrNegativeXPDelta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.activity.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWeekly_Clone(t *testing.T) {
	w := NewWeekly("owner-1", thursday)
	w.Fold(Activity{OwnerID: "owner-1", XPDelta: 10, Played: true}, thursday)

	clone := w.Clone()
	clone.Fold(Activity{OwnerID: "owner-1", XPDelta: 90, Played: true}, thursday)

	assert.Equal(t, 10, w.TotalXp)
	assert.Equal(t, 100, clone.TotalXp)
}
