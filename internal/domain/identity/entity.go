// Package identity содержит доменную модель игровой личности BrainQuest.
// Identity Provider (внешний коллаборатор) выдаёт только непрозрачный id и
// уровень долговечности; здесь хранится всё rank-релевантное состояние:
// XP, уровень и набор бейджей.
package identity

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// OwnerID представляет непрозрачный идентификатор владельца.
type OwnerID string

// IsValid проверяет, что идентификатор непустой.
func (o OwnerID) IsValid() bool {
	return len(o) > 0
}

// String возвращает строковое представление идентификатора.
func (o OwnerID) String() string {
	return string(o)
}

// XP представляет накопленные очки опыта.
type XP int

// IsValid проверяет, что XP неотрицательный.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add складывает XP.
func (x XP) Add(delta XP) XP {
	return x + delta
}

// Level представляет уровень, вычисляемый из XP.
type Level int

// ══════════════════════════════════════════════════════════════════════════════
// DURABILITY TIER
// ══════════════════════════════════════════════════════════════════════════════

// Tier определяет уровень долговечности личности.
type Tier string

const (
	// TierEphemeral - сессионная личность без долговечного хранилища.
	TierEphemeral Tier = "ephemeral"
	// TierDurable - личность с персистентным документом по id.
	TierDurable Tier = "durable"
)

// IsValid проверяет, что tier корректен.
func (t Tier) IsValid() bool {
	return t == TierEphemeral || t == TierDurable
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidOwnerID - невалидный идентификатор владельца.
	ErrInvalidOwnerID = errors.New("invalid owner id: must be non-empty")

	// ErrInvalidTier - неизвестный уровень долговечности.
	ErrInvalidTier = errors.New("invalid durability tier")

	// ErrIdentityNotFound - личность не найдена в хранилище. Сентинел
	// долговечного хранилища: промах load разрешается синтезом записи
	// по умолчанию и наружу не выходит.
	ErrIdentityNotFound = errors.New("identity not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record - rank-релевантное состояние одной личности.
type Record struct {
	// OwnerID - непрозрачный идентификатор владельца.
	OwnerID OwnerID `json:"owner_id"`

	// Tier - уровень долговечности (ephemeral | durable).
	Tier Tier `json:"tier"`

	// XP - накопленные очки опыта.
	XP XP `json:"xp"`

	// Level - текущий уровень, производный от XP.
	Level Level `json:"level"`

	// Badges - набор полученных бейджей. Монотонный: бейдж не снимается.
	Badges map[string]bool `json:"badges"`

	// Avatar - опциональный URL аватара для лидерборда.
	Avatar string `json:"avatar,omitempty"`

	// CreatedAt - время создания записи.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// SeedBadgeFirstLogin - бейдж, проставляемый при синтезе записи по умолчанию.
const SeedBadgeFirstLogin = "first_login"

// NewRecord создаёт запись по умолчанию: xp=0, level=1, seed-бейдж.
// Используется при промахе load в долговечном хранилище (at-most-once init).
func NewRecord(ownerID OwnerID, tier Tier) (*Record, error) {
	if !ownerID.IsValid() {
		return nil, ErrInvalidOwnerID
	}
	if !tier.IsValid() {
		return nil, ErrInvalidTier
	}

	now := time.Now().UTC()
	return &Record{
		OwnerID:   ownerID,
		Tier:      tier,
		XP:        0,
		Level:     1,
		Badges:    map[string]bool{SeedBadgeFirstLogin: true},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasBadge проверяет наличие бейджа.
func (r *Record) HasBadge(id string) bool {
	return r.Badges[id]
}

// GrantBadge добавляет бейдж. Повторный вызов - no-op.
func (r *Record) GrantBadge(id string) {
	if r.Badges == nil {
		r.Badges = make(map[string]bool)
	}
	r.Badges[id] = true
	r.UpdatedAt = time.Now().UTC()
}

// BadgeList возвращает бейджи отсортированным срезом (для сериализации).
func (r *Record) BadgeList() []string {
	list := make([]string, 0, len(r.Badges))
	for id := range r.Badges {
		list = append(list, id)
	}
	sort.Strings(list)
	return list
}

// String возвращает строковое представление для логирования.
func (r *Record) String() string {
	return fmt.Sprintf("Identity{Owner: %s, Tier: %s, XP: %d, Level: %d, Badges: %d}",
		r.OwnerID, r.Tier, r.XP, r.Level, len(r.Badges))
}

// Clone создаёт глубокую копию записи.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Badges = make(map[string]bool, len(r.Badges))
	for id, v := range r.Badges {
		clone.Badges[id] = v
	}
	return &clone
}
