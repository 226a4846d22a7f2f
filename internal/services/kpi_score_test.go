package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionScore(t *testing.T) {
	assert.InDelta(t, 100, CompletionScore(90, 90), 0.001)
	assert.InDelta(t, 50, CompletionScore(45, 90), 0.001)
	// Перевыполнение цели не даёт больше 100.
	assert.InDelta(t, 100, CompletionScore(120, 90), 0.001)
	assert.InDelta(t, 0, CompletionScore(50, 0), 0.001)
}

func TestResponseScore(t *testing.T) {
	sla := 2.0
	assert.InDelta(t, 100, ResponseScore(1.5, sla), 0.001)
	assert.InDelta(t, 100, ResponseScore(2.0, sla), 0.001)
	assert.InDelta(t, 70, ResponseScore(2.5, sla), 0.001)
	assert.InDelta(t, 40, ResponseScore(3.5, sla), 0.001)
	assert.InDelta(t, 0, ResponseScore(5, sla), 0.001)
}

func TestEscalationScore(t *testing.T) {
	assert.InDelta(t, 100, EscalationScore(0), 0.001)
	assert.InDelta(t, 70, EscalationScore(2), 0.001)
	assert.InDelta(t, 40, EscalationScore(5), 0.001)
	assert.InDelta(t, 0, EscalationScore(6), 0.001)
}

func TestScoreWeights(t *testing.T) {
	// Все составляющие максимальны — итог 100.
	assert.InDelta(t, 100, Score(90, 1, 0, 90, 2), 0.001)
	// Только закрытие на цели: 0.5*100 + 0.3*0 + 0.2*0.
	assert.InDelta(t, 50+0.2*100, Score(90, 100, 0, 90, 2), 0.001)
}

func TestScoreMonotonicity(t *testing.T) {
	// Хуже закрытие — не выше балл, при прочих равных.
	base := Score(80, 2, 1, 90, 2)
	worse := Score(60, 2, 1, 90, 2)
	assert.LessOrEqual(t, worse, base)

	// Медленнее реакция — не выше балл.
	slow := Score(80, 5, 1, 90, 2)
	assert.LessOrEqual(t, slow, base)

	// Больше эскалаций — не выше балл.
	escalated := Score(80, 2, 8, 90, 2)
	assert.LessOrEqual(t, escalated, base)
}

func TestScoreZones(t *testing.T) {
	// Пограничные значения ступеней реакции и эскалаций.
	assert.InDelta(t, 0.5*100+0.3*70+0.2*70, Score(90, 2.5, 1, 90, 2), 0.001)
	assert.InDelta(t, 0.5*100+0.3*40+0.2*40, Score(90, 4, 3, 90, 2), 0.001)
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "A", Grade(95))
	assert.Equal(t, "A", Grade(90))
	assert.Equal(t, "B", Grade(85))
	assert.Equal(t, "C", Grade(72))
	assert.Equal(t, "D", Grade(60))
	assert.Equal(t, "F", Grade(59.9))
}

func TestTrendInterval(t *testing.T) {
	first := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, TrendIntervalDay, TrendInterval(first, first.AddDate(0, 0, 30)))
	// 60 календарных дней — ещё по дням, 61 — уже по неделям.
	assert.Equal(t, TrendIntervalDay, TrendInterval(first, first.AddDate(0, 0, 59)))
	assert.Equal(t, TrendIntervalWeek, TrendInterval(first, first.AddDate(0, 0, 60)))
}

func TestClasses(t *testing.T) {
	assert.Equal(t, ClassSuccess, CompletionClass(92, 90))
	assert.Equal(t, ClassWarning, CompletionClass(70, 90))
	assert.Equal(t, ClassDanger, CompletionClass(50, 90))

	assert.Equal(t, ClassSuccess, ResponseClass(1.5, 2))
	assert.Equal(t, ClassWarning, ResponseClass(3, 2))
	assert.Equal(t, ClassDanger, ResponseClass(3.5, 2))

	assert.Equal(t, ClassSuccess, EscalationClass(0))
	assert.Equal(t, ClassWarning, EscalationClass(2))
	assert.Equal(t, ClassDanger, EscalationClass(3))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+4.5%", FormatDeltaPct(4.5))
	assert.Equal(t, "-2.1%", FormatDeltaPct(-2.1))
	// Плюс появляется только у строго положительной дельты.
	assert.Equal(t, "0.0%", FormatDeltaPct(0))
	assert.Equal(t, "+1.25h", FormatDeltaHours(1.25))
	assert.Equal(t, "-0.50h", FormatDeltaHours(-0.5))
	assert.Equal(t, "0.00h", FormatDeltaHours(0))
}

func TestRates(t *testing.T) {
	assert.InDelta(t, 50, CompletionRate(5, 10), 0.001)
	assert.InDelta(t, 0, CompletionRate(0, 0), 0.001)
	assert.InDelta(t, 20, EscalationRate(2, 10), 0.001)
	assert.InDelta(t, 0, EscalationRate(3, 0), 0.001)
}
