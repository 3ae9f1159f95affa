// Package shared contains common domain types, errors, and events used across
// all domain packages.
package shared

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - each event represents something significant that
// happened in the progress engine.
const (
	// Progress events
	EventXPGained        EventType = "progress.xp_gained"
	EventLevelUp         EventType = "progress.level_up"
	EventStreakUpdated   EventType = "progress.streak_updated"
	EventWeekRolledOver  EventType = "progress.week_rolled_over"
	EventBadgeUnlocked   EventType = "progress.badge_unlocked"

	// Leaderboard events
	EventEntryChanged EventType = "leaderboard.entry_changed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// EventHandler processes a single domain event.
// Handler structs register their Handle method value.
type EventHandler func(event Event) error

// EventPublisher publishes domain events to interested handlers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event for the given aggregate.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// XPGainedEvent is emitted when an owner gains XP from an activity.
type XPGainedEvent struct {
	BaseEvent
	XPDelta int `json:"xp_delta"`
	NewXP   int `json:"new_xp"`
}

// NewXPGainedEvent creates a new XPGainedEvent.
func NewXPGainedEvent(ownerID string, xpDelta, newXP int) XPGainedEvent {
	return XPGainedEvent{
		BaseEvent: NewBaseEvent(EventXPGained, ownerID),
		XPDelta:   xpDelta,
		NewXP:     newXP,
	}
}

// LevelUpEvent is emitted when an owner crosses a level boundary.
type LevelUpEvent struct {
	BaseEvent
	OldLevel int `json:"old_level"`
	NewLevel int `json:"new_level"`
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(ownerID string, oldLevel, newLevel int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, ownerID),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// StreakUpdatedEvent is emitted when an owner's streak changes.
type StreakUpdatedEvent struct {
	BaseEvent
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(ownerID string, current, longest int) StreakUpdatedEvent {
	return StreakUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventStreakUpdated, ownerID),
		CurrentStreak: current,
		LongestStreak: longest,
	}
}

// WeekRolledOverEvent is emitted when a stale weekly record is replaced.
// The superseded week is discarded, not archived.
type WeekRolledOverEvent struct {
	BaseEvent
	OldWeekStart string `json:"old_week_start"`
	NewWeekStart string `json:"new_week_start"`
}

// NewWeekRolledOverEvent creates a new WeekRolledOverEvent.
func NewWeekRolledOverEvent(ownerID, oldWeekStart, newWeekStart string) WeekRolledOverEvent {
	return WeekRolledOverEvent{
		BaseEvent:    NewBaseEvent(EventWeekRolledOver, ownerID),
		OldWeekStart: oldWeekStart,
		NewWeekStart: newWeekStart,
	}
}

// BadgeUnlockedEvent is emitted for each newly unlocked badge.
type BadgeUnlockedEvent struct {
	BaseEvent
	BadgeID string `json:"badge_id"`
}

// NewBadgeUnlockedEvent creates a new BadgeUnlockedEvent.
func NewBadgeUnlockedEvent(ownerID, badgeID string) BadgeUnlockedEvent {
	return BadgeUnlockedEvent{
		BaseEvent: NewBaseEvent(EventBadgeUnlocked, ownerID),
		BadgeID:   badgeID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Leaderboard Events
// ═══════════════════════════════════════════════════════════════════════════

// EntryChangedEvent is emitted when an owner's rank-relevant tuple changes.
// Subscribers treat the carried entry as a full replacement for that owner's
// row, never as a delta to be merged arithmetically.
type EntryChangedEvent struct {
	BaseEvent
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Avatar string `json:"avatar,omitempty"`
}

// NewEntryChangedEvent creates a new EntryChangedEvent.
func NewEntryChangedEvent(ownerID string, xp, level int, avatar string) EntryChangedEvent {
	return EntryChangedEvent{
		BaseEvent: NewBaseEvent(EventEntryChanged, ownerID),
		XP:        xp,
		Level:     level,
		Avatar:    avatar,
	}
}
