package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_UnlockRules(t *testing.T) {
	tests := []struct {
		name  string
		facts Facts
		want  []string
	}{
		{
			name:  "no facts no badges",
			facts: Facts{},
			want:  nil,
		},
		{
			name:  "completed game unlocks first_game",
			facts: Facts{GameCompleted: true},
			want:  []string{FirstGame},
		},
		{
			name:  "three day streak",
			facts: Facts{CurrentStreak: 3},
			want:  []string{Streak3},
		},
		{
			name:  "seven day streak implies both streak badges",
			facts: Facts{CurrentStreak: 7},
			want:  []string{Streak3, Streak7},
		},
		{
			name:  "level 5 reached",
			facts: Facts{LeveledUp: true, NewLevel: 5},
			want:  []string{Level5},
		},
		{
			name:  "level 10 implies level 5 too",
			facts: Facts{LeveledUp: true, NewLevel: 10},
			want:  []string{Level5, Level10},
		},
		{
			name:  "level 2 unlocks nothing",
			facts: Facts{LeveledUp: true, NewLevel: 2},
			want:  nil,
		},
		{
			name:  "high level without a level-up this event",
			facts: Facts{LeveledUp: false, NewLevel: 6},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(map[string]bool{}, tt.facts)
			assert.ElementsMatch(t, tt.want, NewlyUnlocked(map[string]bool{}, got))
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	facts := Facts{GameCompleted: true, CurrentStreak: 3}

	once := Evaluate(map[string]bool{}, facts)
	twice := Evaluate(once, facts)

	assert.Equal(t, once, twice)
	assert.Empty(t, NewlyUnlocked(once, twice))
}

func TestEvaluate_NeverRemovesBadges(t *testing.T) {
	current := map[string]bool{
		FirstGame: true,
		Streak7:   true,
	}

	// Facts that would not re-trigger either badge.
	result := Evaluate(current, Facts{})

	assert.True(t, result[FirstGame])
	assert.True(t, result[Streak7])
}

func TestEvaluate_PreservesExternallySeededBadges(t *testing.T) {
	current := map[string]bool{
		FirstLogin:   true,
		GuestMode:    true,
		PerfectScore: true,
	}

	result := Evaluate(current, Facts{GameCompleted: true})

	assert.True(t, result[FirstLogin])
	assert.True(t, result[GuestMode])
	assert.True(t, result[PerfectScore])
	assert.True(t, result[FirstGame])
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	current := map[string]bool{FirstLogin: true}

	_ = Evaluate(current, Facts{GameCompleted: true, CurrentStreak: 7})

	assert.Equal(t, map[string]bool{FirstLogin: true}, current)
}

func TestNewlyUnlocked_Sorted(t *testing.T) {
	after := Evaluate(map[string]bool{}, Facts{GameCompleted: true, CurrentStreak: 7})

	unlocked := NewlyUnlocked(map[string]bool{}, after)

	assert.Equal(t, []string{FirstGame, Streak3, Streak7}, unlocked)
}
