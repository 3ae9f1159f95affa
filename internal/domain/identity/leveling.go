package identity

// ══════════════════════════════════════════════════════════════════════════════
// LEVELING ENGINE
// Чистые функции без побочных эффектов: вызывающий сам персистит результат.
// ══════════════════════════════════════════════════════════════════════════════

// XPPerLevel - количество XP на один уровень.
const XPPerLevel = 100

// CalculateLevel вычисляет уровень из накопленного XP.
// Формула: floor(xp / 100) + 1. Деление целочисленное (округление вниз) -
// это зафиксированное поведение, покрытое property-тестом монотонности.
func CalculateLevel(xp XP) Level {
	if xp < 0 {
		return 1
	}
	return Level(int(xp)/XPPerLevel + 1)
}

// LevelResult - результат применения XP-дельты.
type LevelResult struct {
	// NewXP - XP после применения дельты.
	NewXP XP

	// NewLevel - уровень, производный от NewXP.
	NewLevel Level

	// LeveledUp - true, если NewLevel строго больше уровня до применения.
	LeveledUp bool
}

// ApplyXP применяет дельту к записи и возвращает производный результат.
// Запись не мутируется.
func ApplyXP(record *Record, delta XP) LevelResult {
	newXP := record.XP.Add(delta)
	newLevel := CalculateLevel(newXP)

	return LevelResult{
		NewXP:     newXP,
		NewLevel:  newLevel,
		LeveledUp: newLevel > record.Level,
	}
}
