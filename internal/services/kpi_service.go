package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"

	"go.uber.org/zap"
)

// Горизонт полной перестройки дневных агрегатов.
const kpiRebuildHorizonDays = 90

type KPIServiceInterface interface {
	RebuildDaily(ctx context.Context, now time.Time) error
	RebuildSummary(ctx context.Context, now time.Time) error
	Dashboard(ctx context.Context, rc RequestCtx, query dto.KPIQueryDTO) (*dto.KPIDashboardDTO, error)
	Dailies(ctx context.Context, rc RequestCtx, query dto.KPIQueryDTO) ([]entities.KPIDaily, error)
	Summary(ctx context.Context) (*entities.KPISummary, error)
}

type KPIService struct {
	kpiRepository      repositories.KPIRepositoryInterface
	followUpRepository repositories.FollowUpRepositoryInterface
	teamRepository     repositories.TeamRepositoryInterface
	userRepository     repositories.UserRepositoryInterface
	settings           SettingsServiceInterface
	logger             *zap.Logger
}

func NewKPIService(
	kpiRepository repositories.KPIRepositoryInterface,
	followUpRepository repositories.FollowUpRepositoryInterface,
	teamRepository repositories.TeamRepositoryInterface,
	userRepository repositories.UserRepositoryInterface,
	settings SettingsServiceInterface,
	logger *zap.Logger,
) KPIServiceInterface {
	return &KPIService{
		kpiRepository:      kpiRepository,
		followUpRepository: followUpRepository,
		teamRepository:     teamRepository,
		userRepository:     userRepository,
		settings:           settings,
		logger:             logger,
	}
}

// RebuildDaily перестраивает агрегаты 90-дневного горизонта целиком:
// дешевле и надёжнее, чем инкрементальные поправки задним числом.
func (s *KPIService) RebuildDaily(ctx context.Context, now time.Time) error {
	to := startOfDay(now).Add(24 * time.Hour)
	from := to.Add(-kpiRebuildHorizonDays * 24 * time.Hour)

	dailies, err := s.followUpRepository.GetDailyAggregates(ctx, from, to)
	if err != nil {
		return fmt.Errorf("ошибка сбора дневных агрегатов: %w", err)
	}
	if err := s.kpiRepository.RebuildDaily(ctx, from, to, dailies); err != nil {
		return fmt.Errorf("ошибка перестройки kpi_daily: %w", err)
	}
	s.logger.Info("kpi_daily перестроен", zap.Int("rows", len(dailies)))
	return nil
}

// RebuildSummary пересчитывает единственную сводную строку скользящего окна.
func (s *KPIService) RebuildSummary(ctx context.Context, now time.Time) error {
	periodDays := s.settings.SummaryPeriodDays(ctx)
	to := startOfDay(now).Add(24 * time.Hour)
	from := to.Add(-time.Duration(periodDays) * 24 * time.Hour)

	window, err := s.followUpRepository.GetWindowAggregate(ctx, from, to)
	if err != nil {
		return fmt.Errorf("ошибка расчета окна сводки: %w", err)
	}
	window.PeriodDays = periodDays

	if err := s.kpiRepository.UpsertSummary(ctx, *window); err != nil {
		return fmt.Errorf("ошибка сохранения сводки: %w", err)
	}
	s.logger.Info("kpi_summary обновлён", zap.Int("period_days", periodDays))
	return nil
}

func (s *KPIService) Summary(ctx context.Context) (*entities.KPISummary, error) {
	summary, err := s.kpiRepository.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, apperrors.ErrNotFound
	}
	return summary, nil
}

func (s *KPIService) Dailies(ctx context.Context, rc RequestCtx, query dto.KPIQueryDTO) ([]entities.KPIDaily, error) {
	from, to := s.periodBounds(ctx, rc, query)
	return s.kpiRepository.GetDailies(ctx, repositories.KPIFilter{
		From: from, To: to,
		TeamID: query.TeamID, PolicyID: query.PolicyID, UserID: query.UserID,
	})
}

// Dashboard собирает производное представление: карточки с классами и
// дельтами к предыдущему периоду, тренд и рейтинги.
func (s *KPIService) Dashboard(ctx context.Context, rc RequestCtx, query dto.KPIQueryDTO) (*dto.KPIDashboardDTO, error) {
	from, to := s.periodBounds(ctx, rc, query)
	periodDays := int(to.Sub(from) / (24 * time.Hour))

	current, err := s.kpiRepository.GetDailies(ctx, repositories.KPIFilter{
		From: from, To: to,
		TeamID: query.TeamID, PolicyID: query.PolicyID, UserID: query.UserID,
	})
	if err != nil {
		return nil, err
	}
	previous, err := s.kpiRepository.GetDailies(ctx, repositories.KPIFilter{
		From: from.Add(-time.Duration(periodDays) * 24 * time.Hour), To: from,
		TeamID: query.TeamID, PolicyID: query.PolicyID, UserID: query.UserID,
	})
	if err != nil {
		return nil, err
	}

	target := s.settings.CompletionTarget(ctx)
	sla := s.settings.SLAHours(ctx)

	dashboard := &dto.KPIDashboardDTO{
		Summary:  s.summaryCard(current, previous, periodDays, target, sla),
		Trend:    s.trend(current, from, to),
		Rankings: s.rankings(ctx, current, target, sla),
	}
	return dashboard, nil
}

func (s *KPIService) periodBounds(ctx context.Context, rc RequestCtx, query dto.KPIQueryDTO) (time.Time, time.Time) {
	periodDays := query.PeriodDays
	if periodDays <= 0 {
		periodDays = s.settings.SummaryPeriodDays(ctx)
	}
	if periodDays > kpiRebuildHorizonDays {
		periodDays = kpiRebuildHorizonDays
	}
	to := startOfDay(rc.Now).Add(24 * time.Hour)
	return to.Add(-time.Duration(periodDays) * 24 * time.Hour), to
}

// totals сводит дневные строки в один агрегат; среднее время реакции
// взвешивается по числу закрытых событий.
type kpiTotals struct {
	created    int
	done       int
	escalation int
	avgHours   float64
}

func sumDailies(dailies []entities.KPIDaily) kpiTotals {
	var t kpiTotals
	var weighted float64
	for _, d := range dailies {
		t.created += d.CreatedCount
		t.done += d.DoneCount
		t.escalation += d.EscalationCount
		weighted += d.AvgResponseHours * float64(d.DoneCount)
	}
	if t.done > 0 {
		t.avgHours = weighted / float64(t.done)
	}
	return t
}

func (s *KPIService) summaryCard(current, previous []entities.KPIDaily, periodDays int, target, sla float64) dto.KPISummaryCardDTO {
	cur := sumDailies(current)
	prev := sumDailies(previous)

	completion := CompletionRate(cur.done, cur.created)
	escalation := EscalationRate(cur.escalation, cur.created)
	score := Score(completion, cur.avgHours, cur.escalation, target, sla)

	prevCompletion := CompletionRate(prev.done, prev.created)
	prevEscalation := EscalationRate(prev.escalation, prev.created)

	return dto.KPISummaryCardDTO{
		PeriodDays:       periodDays,
		CreatedCount:     cur.created,
		DoneCount:        cur.done,
		EscalationCount:  cur.escalation,
		CompletionRate:   completion,
		AvgResponseHours: cur.avgHours,
		EscalationRate:   escalation,
		Score:            score,
		Grade:            Grade(score),
		CompletionClass:  CompletionClass(completion, target),
		ResponseClass:    ResponseClass(cur.avgHours, sla),
		EscalationClass:  EscalationClass(cur.escalation),
		CompletionDelta:  FormatDeltaPct(completion - prevCompletion),
		ResponseDelta:    FormatDeltaHours(cur.avgHours - prev.avgHours),
		EscalationDelta:  FormatDeltaPct(escalation - prevEscalation),
	}
}

func (s *KPIService) trend(dailies []entities.KPIDaily, from, to time.Time) dto.KPITrendDTO {
	// Границы периода полуинтервальные, последняя дата — to минус сутки.
	interval := TrendInterval(from, to.Add(-24*time.Hour))

	buckets := make(map[time.Time][]entities.KPIDaily)
	for _, d := range dailies {
		key := startOfDay(d.Date)
		if interval == TrendIntervalWeek {
			key = startOfWeek(key)
		}
		buckets[key] = append(buckets[key], d)
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	totals := make([]kpiTotals, 0, len(keys))
	var maxHours float64
	var maxEscalation int
	for _, k := range keys {
		t := sumDailies(buckets[k])
		totals = append(totals, t)
		if t.avgHours > maxHours {
			maxHours = t.avgHours
		}
		if t.escalation > maxEscalation {
			maxEscalation = t.escalation
		}
	}

	// Проценты считаются от максимума серии, чтобы линии разной
	// размерности делили одну ось.
	points := make([]dto.KPITrendPointDTO, 0, len(keys))
	for i, k := range keys {
		t := totals[i]
		points = append(points, dto.KPITrendPointDTO{
			Date:             k.Format("2006-01-02"),
			CreatedCount:     t.created,
			DoneCount:        t.done,
			EscalationCount:  t.escalation,
			AvgResponseHours: t.avgHours,
			CompletionPct:    CompletionRate(t.done, t.created),
			ResponsePct:      pctOfMax(t.avgHours, maxHours),
			EscalationPct:    pctOfMax(float64(t.escalation), float64(maxEscalation)),
		})
	}
	return dto.KPITrendDTO{Interval: interval, Points: points}
}

func pctOfMax(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return value / max * 100
}

func (s *KPIService) rankings(ctx context.Context, dailies []entities.KPIDaily, target, sla float64) dto.KPIRankingsDTO {
	byTeam := groupRows(dailies, target, sla, func(d entities.KPIDaily) *uint64 { return d.TeamID })
	byUser := groupRows(dailies, target, sla, func(d entities.KPIDaily) *uint64 { return d.AssignedUserID })

	for i := range byTeam {
		byTeam[i].Name = s.teamName(ctx, byTeam[i].ID)
	}
	for i := range byUser {
		byUser[i].Name = s.userName(ctx, byUser[i].ID)
	}

	worst := make([]dto.KPIRankingRowDTO, len(byTeam))
	copy(worst, byTeam)
	sort.SliceStable(worst, func(i, j int) bool {
		return worst[i].EscalationCount > worst[j].EscalationCount
	})

	return dto.KPIRankingsDTO{
		TopTeams:        topByCompletion(byTeam),
		TopUsers:        topByCompletion(byUser),
		WorstEscalation: capRows(worst),
	}
}

func groupRows(dailies []entities.KPIDaily, target, sla float64, keyOf func(entities.KPIDaily) *uint64) []dto.KPIRankingRowDTO {
	grouped := make(map[uint64][]entities.KPIDaily)
	for _, d := range dailies {
		key := keyOf(d)
		if key == nil {
			continue
		}
		grouped[*key] = append(grouped[*key], d)
	}

	rows := make([]dto.KPIRankingRowDTO, 0, len(grouped))
	for id, group := range grouped {
		t := sumDailies(group)
		completion := CompletionRate(t.done, t.created)
		score := Score(completion, t.avgHours, t.escalation, target, sla)
		rows = append(rows, dto.KPIRankingRowDTO{
			ID:               id,
			CreatedCount:     t.created,
			DoneCount:        t.done,
			EscalationCount:  t.escalation,
			CompletionRate:   completion,
			AvgResponseHours: t.avgHours,
			Score:            score,
			Grade:            Grade(score),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows
}

// topByCompletion: сортировка по проценту закрытия по убыванию, при равенстве
// быстрее отвечающий выше; не больше десяти строк.
func topByCompletion(rows []dto.KPIRankingRowDTO) []dto.KPIRankingRowDTO {
	sorted := make([]dto.KPIRankingRowDTO, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CompletionRate != sorted[j].CompletionRate {
			return sorted[i].CompletionRate > sorted[j].CompletionRate
		}
		return sorted[i].AvgResponseHours < sorted[j].AvgResponseHours
	})
	return capRows(sorted)
}

func capRows(rows []dto.KPIRankingRowDTO) []dto.KPIRankingRowDTO {
	if len(rows) > 10 {
		return rows[:10]
	}
	return rows
}

func (s *KPIService) teamName(ctx context.Context, id uint64) string {
	team, err := s.teamRepository.FindTeam(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("не удалось получить команду для рейтинга", zap.Error(err))
		}
		return fmt.Sprintf("Команда #%d", id)
	}
	return team.Name
}

func (s *KPIService) userName(ctx context.Context, id uint64) string {
	user, err := s.userRepository.FindUser(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("не удалось получить пользователя для рейтинга", zap.Error(err))
		}
		return fmt.Sprintf("Пользователь #%d", id)
	}
	return user.Name
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek — понедельник недели, к которой относится день.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.Add(-time.Duration(weekday-1) * 24 * time.Hour)
}
