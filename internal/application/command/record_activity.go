// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/badge"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/identity"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/leaderboard"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/progress"
	"github.com/brainquest-hub/brainquest-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACTIVITY COMMAND
// Folds one mini-game activity into the owner's weekly record, derives
// level/streak/badges, persists both documents, and emits the rank-relevant
// change. This is the single write path of the progress engine.
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityCommand contains one activity event.
type RecordActivityCommand struct {
	// OwnerID is the opaque id issued by the identity provider.
	OwnerID string

	// Tier is the identity's durability tier.
	Tier identity.Tier

	// XPEarned is the XP earned by this activity (non-negative).
	XPEarned int

	// GamePlayed indicates a game was played.
	GamePlayed bool

	// GameCompleted indicates a game was completed.
	GameCompleted bool

	// Timestamp is when the activity occurred (defaults to now if zero).
	// "Today" is derived from it as an absolute UTC calendar date.
	Timestamp time.Time
}

// Validate validates the command. A validation failure means nothing was
// partially applied.
func (c RecordActivityCommand) Validate() error {
	if c.OwnerID == "" {
		return shared.WrapError("progress", "RecordActivity", shared.ErrValidation,
			"owner_id is required", progress.ErrInvalidOwnerID)
	}
	if !c.Tier.IsValid() {
		return shared.WrapError("progress", "RecordActivity", shared.ErrValidation,
			fmt.Sprintf("unknown tier %q", c.Tier), identity.ErrInvalidTier)
	}
	if c.XPEarned < 0 {
		return shared.WrapError("progress", "RecordActivity", shared.ErrValidation,
			"xp must be non-negative", progress.ErrNegativeXPDelta)
	}
	return nil
}

// RecordActivityResult is the optimistic state shown to the initiating
// caller. It is assembled before durable confirmation: a failed durable
// write leaves this result and storage silently diverged.
type RecordActivityResult struct {
	// OwnerID is the owner the activity was folded for.
	OwnerID string `json:"ownerId"`

	// NewXP is the identity XP after the delta.
	NewXP int `json:"newXp"`

	// NewLevel is the level derived from NewXP.
	NewLevel int `json:"newLevel"`

	// LeveledUp indicates a level boundary was crossed.
	LeveledUp bool `json:"leveledUp"`

	// CurrentStreak is the recomputed trailing streak.
	CurrentStreak int `json:"currentStreak"`

	// LongestStreak is the best streak of the weekly record.
	LongestStreak int `json:"longestStreak"`

	// UnlockedBadges lists badges newly unlocked by this activity.
	UnlockedBadges []string `json:"unlockedBadges"`

	// RolledOver indicates a stale week was replaced by a fresh one.
	RolledOver bool `json:"rolledOver"`

	// Weekly is the weekly record after folding.
	Weekly *progress.Weekly `json:"weekly"`

	// Persisted is false when the durable write failed or was skipped;
	// the in-memory state above is still what the caller sees.
	Persisted bool `json:"persisted"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivityHandler handles RecordActivityCommand.
type RecordActivityHandler struct {
	identities identity.Router
	progresses progress.Router
	events     shared.EventPublisher
	logger     *slog.Logger

	// badgeGate, when set, decides per owner whether badge rules run.
	badgeGate func(ownerID string) bool
}

// NewRecordActivityHandler creates a new RecordActivityHandler.
func NewRecordActivityHandler(
	identities identity.Router,
	progresses progress.Router,
	events shared.EventPublisher,
	logger *slog.Logger,
) *RecordActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecordActivityHandler{
		identities: identities,
		progresses: progresses,
		events:     events,
		logger:     logger.With("command", "record_activity"),
	}
}

// SetBadgeGate installs a per-owner toggle for badge evaluation. Nil (the
// default) means evaluation always runs.
func (h *RecordActivityHandler) SetBadgeGate(gate func(ownerID string) bool) {
	h.badgeGate = gate
}

// Handle executes the record activity command.
//
// All fallible behavior lives at the I/O boundary: a transient store failure
// is logged and absorbed, the optimistic in-memory state is kept, and
// gameplay is never blocked. There is no retry and no rollback.
//
// There is no deduplication key: a retried submission folds again,
// additively. Documented behavior.
func (h *RecordActivityHandler) Handle(ctx context.Context, cmd RecordActivityCommand) (*RecordActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	ownerID := identity.OwnerID(cmd.OwnerID)
	identityStore := h.identities.Resolve(cmd.Tier)
	progressStore := h.progresses.Resolve(cmd.Tier)

	// Резолв личности. Промах разрешается синтезом внутри хранилища;
	// транзиентный сбой деградирует до свежей записи в памяти без
	// последующей записи (чтобы не затирать настоящий документ нулями).
	degraded := false
	record, err := identityStore.Load(ctx, ownerID)
	if err != nil {
		if !shared.IsTransient(err) {
			return nil, fmt.Errorf("record_activity: failed to load identity: %w", err)
		}
		h.logger.Warn("identity load degraded to in-memory default", "owner_id", ownerID, "error", err)
		record, _ = identity.NewRecord(ownerID, cmd.Tier)
		degraded = true
	}

	weekly, rolledOver, err := h.loadWeek(ctx, progressStore, ownerID, now)
	if err != nil {
		if !shared.IsTransient(err) {
			return nil, fmt.Errorf("record_activity: failed to load weekly record: %w", err)
		}
		h.logger.Warn("weekly load degraded to fresh record", "owner_id", ownerID, "error", err)
		weekly = progress.NewWeekly(ownerID, now)
		degraded = true
	}

	oldWeekStart := ""
	if rolledOver {
		oldWeekStart = weekly.WeekStartDate
		weekly = progress.NewWeekly(ownerID, now)
	}

	// Чистое ядро: фолдинг, уровни, бейджи. Здесь ошибок не бывает.
	activity := progress.Activity{
		OwnerID:   ownerID,
		XPDelta:   cmd.XPEarned,
		Played:    cmd.GamePlayed,
		Completed: cmd.GameCompleted,
	}
	weekly.Fold(activity, now)

	levelResult := identity.ApplyXP(record, identity.XP(cmd.XPEarned))

	newBadges := record.Badges
	var unlocked []string
	if h.badgeGate == nil || h.badgeGate(cmd.OwnerID) {
		facts := badge.Facts{
			LeveledUp:     levelResult.LeveledUp,
			CurrentStreak: weekly.CurrentStreak,
			GameCompleted: cmd.GameCompleted,
			NewLevel:      int(levelResult.NewLevel),
		}
		newBadges = badge.Evaluate(record.Badges, facts)
		unlocked = badge.NewlyUnlocked(record.Badges, newBadges)
	}

	oldLevel := record.Level
	record.XP = levelResult.NewXP
	record.Level = levelResult.NewLevel
	record.Badges = newBadges
	record.UpdatedAt = time.Now().UTC()

	result := &RecordActivityResult{
		OwnerID:        cmd.OwnerID,
		NewXP:          int(levelResult.NewXP),
		NewLevel:       int(levelResult.NewLevel),
		LeveledUp:      levelResult.LeveledUp,
		CurrentStreak:  weekly.CurrentStreak,
		LongestStreak:  weekly.LongestStreak,
		UnlockedBadges: unlocked,
		RolledOver:     rolledOver,
		Weekly:         weekly,
	}

	// Долговечная запись - после сборки оптимистичного результата.
	// Сбой логируется и поглощается: память и хранилище молча расходятся.
	if !degraded {
		result.Persisted = true
		if err := progressStore.Save(ctx, weekly); err != nil {
			h.logger.Error("weekly save failed, optimistic state kept", "owner_id", ownerID, "error", err)
			result.Persisted = false
		}
		if err := identityStore.Save(ctx, record); err != nil {
			h.logger.Error("identity save failed, optimistic state kept", "owner_id", ownerID, "error", err)
			result.Persisted = false
		}
	}

	h.publishEvents(cmd, record, weekly, levelResult, int(oldLevel), unlocked, rolledOver, oldWeekStart)

	return result, nil
}

// loadWeek loads the owner's weekly record and reports whether it is stale.
// A missing record is created fresh; a stale one is only flagged here, the
// caller replaces it (the superseded week is discarded, not archived).
func (h *RecordActivityHandler) loadWeek(
	ctx context.Context,
	store progress.Store,
	ownerID identity.OwnerID,
	now time.Time,
) (*progress.Weekly, bool, error) {
	weekly, err := store.Load(ctx, ownerID)
	if err != nil {
		if err == progress.ErrProgressNotFound {
			return progress.NewWeekly(ownerID, now), false, nil
		}
		return nil, false, err
	}

	if weekly.NeedsRollover(now) {
		return weekly, true, nil
	}
	return weekly, false, nil
}

// publishEvents emits the domain events of one folded activity.
// Publishing is fire-and-forget: handler errors never reach gameplay.
func (h *RecordActivityHandler) publishEvents(
	cmd RecordActivityCommand,
	record *identity.Record,
	weekly *progress.Weekly,
	levelResult identity.LevelResult,
	oldLevel int,
	unlocked []string,
	rolledOver bool,
	oldWeekStart string,
) {
	if h.events == nil {
		return
	}

	publish := func(event shared.Event) {
		if err := h.events.Publish(event); err != nil {
			h.logger.Warn("event publish failed", "event_type", event.EventType(), "error", err)
		}
	}

	if rolledOver {
		publish(shared.NewWeekRolledOverEvent(cmd.OwnerID, oldWeekStart, weekly.WeekStartDate))
	}

	publish(shared.NewXPGainedEvent(cmd.OwnerID, cmd.XPEarned, int(levelResult.NewXP)))
	publish(shared.NewStreakUpdatedEvent(cmd.OwnerID, weekly.CurrentStreak, weekly.LongestStreak))

	if levelResult.LeveledUp {
		publish(shared.NewLevelUpEvent(cmd.OwnerID, oldLevel, int(levelResult.NewLevel)))
	}
	for _, badgeID := range unlocked {
		publish(shared.NewBadgeUnlockedEvent(cmd.OwnerID, badgeID))
	}

	entry := leaderboard.FromIdentity(record)
	publish(shared.NewEntryChangedEvent(entry.OwnerID, entry.XP, entry.Level, entry.Avatar))
}
