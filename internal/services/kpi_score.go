package services

import (
	"fmt"
	"math"
	"time"
)

// Веса составляющих интегрального балла.
const (
	scoreWeightCompletion = 0.5
	scoreWeightResponse   = 0.3
	scoreWeightEscalation = 0.2
)

// Интервалы трендов.
const (
	TrendIntervalDay  = "day"
	TrendIntervalWeek = "week"
)

// Граница в днях, после которой тренд укрупняется до недель.
const trendDailySpanLimit = 60

// CSS-классы подсветки карточек.
const (
	ClassSuccess = "success"
	ClassWarning = "warning"
	ClassDanger  = "danger"
)

// CompletionScore нормирует фактический процент закрытия к целевому:
// достижение цели даёт 100, перевыполнение не добавляет баллов.
func CompletionScore(completionRate, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(100, completionRate/target*100)
}

// ResponseScore ступенчато оценивает среднее время реакции против SLA.
func ResponseScore(avgResponseHours, slaHours float64) float64 {
	if slaHours <= 0 {
		return 0
	}
	switch {
	case avgResponseHours <= slaHours:
		return 100
	case avgResponseHours <= 1.5*slaHours:
		return 70
	case avgResponseHours <= 2*slaHours:
		return 40
	default:
		return 0
	}
}

// EscalationScore ступенчато оценивает число эскалаций в группе.
func EscalationScore(escalationCount int) float64 {
	switch {
	case escalationCount <= 0:
		return 100
	case escalationCount <= 2:
		return 70
	case escalationCount <= 5:
		return 40
	default:
		return 0
	}
}

// Score — взвешенная сумма трёх составляющих, 0..100.
func Score(completionRate, avgResponseHours float64, escalationCount int, target, slaHours float64) float64 {
	return scoreWeightCompletion*CompletionScore(completionRate, target) +
		scoreWeightResponse*ResponseScore(avgResponseHours, slaHours) +
		scoreWeightEscalation*EscalationScore(escalationCount)
}

// Grade переводит балл в буквенную оценку.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// TrendInterval принимает включительные границы периода: до 60 календарных
// дней тренд строится по дням, дальше по неделям.
func TrendInterval(first, last time.Time) string {
	days := int(last.Sub(first)/(24*time.Hour)) + 1
	if days <= trendDailySpanLimit {
		return TrendIntervalDay
	}
	return TrendIntervalWeek
}

// CompletionClass подсвечивает процент закрытия относительно цели.
func CompletionClass(completionRate, target float64) string {
	switch {
	case completionRate >= target:
		return ClassSuccess
	case completionRate >= 70:
		return ClassWarning
	default:
		return ClassDanger
	}
}

// ResponseClass подсвечивает среднее время реакции относительно SLA.
func ResponseClass(avgResponseHours, slaHours float64) string {
	switch {
	case avgResponseHours <= slaHours:
		return ClassSuccess
	case avgResponseHours <= 1.5*slaHours:
		return ClassWarning
	default:
		return ClassDanger
	}
}

// EscalationClass подсвечивает число эскалаций.
func EscalationClass(escalationCount int) string {
	switch {
	case escalationCount <= 0:
		return ClassSuccess
	case escalationCount <= 2:
		return ClassWarning
	default:
		return ClassDanger
	}
}

// FormatDeltaPct — дельта в процентных пунктах, один знак после запятой;
// плюс только у строго положительных значений.
func FormatDeltaPct(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.1f%%", delta)
	}
	return fmt.Sprintf("%.1f%%", delta)
}

// FormatDeltaHours — дельта в часах, два знака после запятой;
// плюс только у строго положительных значений.
func FormatDeltaHours(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.2fh", delta)
	}
	return fmt.Sprintf("%.2fh", delta)
}

// EscalationRate — доля эскалаций в процентах от созданных; 0 при пустом периоде.
func EscalationRate(escalationCount, createdCount int) float64 {
	if createdCount <= 0 {
		return 0
	}
	return float64(escalationCount) / float64(createdCount) * 100
}

// CompletionRate — процент закрытых от созданных; 0 при пустом периоде.
func CompletionRate(doneCount, createdCount int) float64 {
	if createdCount <= 0 {
		return 0
	}
	return float64(doneCount) / float64(createdCount) * 100
}
