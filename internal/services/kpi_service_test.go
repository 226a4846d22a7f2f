package services

import (
	"context"
	"testing"
	"time"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeKPIRepo struct {
	dailies      []entities.KPIDaily
	summary      *entities.KPISummary
	rebuiltFrom  time.Time
	rebuiltTo    time.Time
	rebuiltRows  []entities.KPIDaily
	lastUpserted *entities.KPISummary
}

func (f *fakeKPIRepo) RebuildDaily(_ context.Context, from, to time.Time, dailies []entities.KPIDaily) error {
	f.rebuiltFrom, f.rebuiltTo, f.rebuiltRows = from, to, dailies
	return nil
}

func (f *fakeKPIRepo) GetDailies(_ context.Context, filter repositories.KPIFilter) ([]entities.KPIDaily, error) {
	var out []entities.KPIDaily
	for _, d := range f.dailies {
		if d.Date.Before(filter.From) || !d.Date.Before(filter.To) {
			continue
		}
		if filter.TeamID != nil && (d.TeamID == nil || *d.TeamID != *filter.TeamID) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeKPIRepo) GetSummary(_ context.Context) (*entities.KPISummary, error) {
	return f.summary, nil
}

func (f *fakeKPIRepo) UpsertSummary(_ context.Context, s entities.KPISummary) error {
	f.lastUpserted = &s
	return nil
}

type fakeTeamRepo struct {
	teams map[uint64]entities.Team
}

func (f *fakeTeamRepo) FindTeam(_ context.Context, id uint64) (*entities.Team, error) {
	if t, ok := f.teams[id]; ok {
		return &t, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTeamRepo) GetTeams(_ context.Context) ([]entities.Team, error) { return nil, nil }

type fakeUserRepo struct {
	users map[uint64]entities.User
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindUser(_ context.Context, id uint64) (*entities.User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, apperrors.ErrNotFound
}

func newTestKPIService(kpi *fakeKPIRepo, teams *fakeTeamRepo, settings *stubSettings) KPIServiceInterface {
	if teams == nil {
		teams = &fakeTeamRepo{}
	}
	return NewKPIService(kpi, newFakeFollowUpRepo(), teams,
		&fakeUserRepo{}, settings, zap.NewNop())
}

func day(offset int) time.Time {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(offset) * 24 * time.Hour)
}

func TestKPIService_Dashboard(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	rc := NewRequestCtx(now)
	team := uint64(1)

	t.Run("карточка сводки с дельтами к прошлому периоду", func(t *testing.T) {
		kpi := &fakeKPIRepo{dailies: []entities.KPIDaily{
			// текущий период: 10 создано, 9 закрыто, 0 эскалаций, среднее 1ч
			{Date: day(8), TeamID: &team, CreatedCount: 10, DoneCount: 9, AvgResponseHours: 1},
			// прошлый период: 10 создано, 8 закрыто
			{Date: day(1), TeamID: &team, CreatedCount: 10, DoneCount: 8, AvgResponseHours: 2},
		}}
		svc := newTestKPIService(kpi, nil, defaultStubSettings())

		dash, err := svc.Dashboard(context.Background(), rc, dto.KPIQueryDTO{PeriodDays: 5})
		require.NoError(t, err)

		card := dash.Summary
		assert.Equal(t, 5, card.PeriodDays)
		assert.Equal(t, 10, card.CreatedCount)
		assert.Equal(t, 9, card.DoneCount)
		assert.InDelta(t, 90.0, card.CompletionRate, 0.001)
		assert.Equal(t, "A", card.Grade)
		assert.Equal(t, ClassSuccess, card.CompletionClass)
		assert.Equal(t, ClassSuccess, card.ResponseClass)
		assert.Equal(t, ClassSuccess, card.EscalationClass)
		assert.Equal(t, "+10.0%", card.CompletionDelta)
		assert.Equal(t, "-1.00h", card.ResponseDelta)
		// Нулевая дельта отдаётся без знака.
		assert.Equal(t, "0.0%", card.EscalationDelta)
	})

	t.Run("короткий период строит дневной тренд", func(t *testing.T) {
		kpi := &fakeKPIRepo{dailies: []entities.KPIDaily{
			{Date: day(7), CreatedCount: 3, DoneCount: 2, AvgResponseHours: 1},
			{Date: day(8), CreatedCount: 2, DoneCount: 2, AvgResponseHours: 2},
		}}
		svc := newTestKPIService(kpi, nil, defaultStubSettings())

		dash, err := svc.Dashboard(context.Background(), rc, dto.KPIQueryDTO{PeriodDays: 7})
		require.NoError(t, err)

		assert.Equal(t, TrendIntervalDay, dash.Trend.Interval)
		require.Len(t, dash.Trend.Points, 2)
		assert.Equal(t, "2026-03-08", dash.Trend.Points[0].Date)
		assert.Equal(t, 3, dash.Trend.Points[0].CreatedCount)
		assert.InDelta(t, 66.666, dash.Trend.Points[0].CompletionPct, 0.01)
		// Проценты нормируются к максимуму серии: 1ч и 2ч дают 50 и 100.
		assert.InDelta(t, 50.0, dash.Trend.Points[0].ResponsePct, 0.001)
		assert.InDelta(t, 100.0, dash.Trend.Points[1].ResponsePct, 0.001)
		assert.InDelta(t, 0.0, dash.Trend.Points[0].EscalationPct, 0.001)
	})

	t.Run("длинный период агрегирует тренд по неделям", func(t *testing.T) {
		kpi := &fakeKPIRepo{dailies: []entities.KPIDaily{
			// 2 и 3 марта 2026 — понедельник и вторник одной недели
			{Date: day(1), CreatedCount: 1, DoneCount: 1},
			{Date: day(2), CreatedCount: 1, DoneCount: 0},
		}}
		settings := defaultStubSettings()
		svc := newTestKPIService(kpi, nil, settings)

		dash, err := svc.Dashboard(context.Background(), rc, dto.KPIQueryDTO{PeriodDays: 70})
		require.NoError(t, err)

		assert.Equal(t, TrendIntervalWeek, dash.Trend.Interval)
		require.Len(t, dash.Trend.Points, 1)
		assert.Equal(t, "2026-03-02", dash.Trend.Points[0].Date)
		assert.Equal(t, 2, dash.Trend.Points[0].CreatedCount)
	})

	t.Run("рейтинг команд сортируется по закрытию", func(t *testing.T) {
		slow, fast := uint64(1), uint64(2)
		kpi := &fakeKPIRepo{dailies: []entities.KPIDaily{
			{Date: day(8), TeamID: &slow, CreatedCount: 10, DoneCount: 5, EscalationCount: 3},
			{Date: day(8), TeamID: &fast, CreatedCount: 10, DoneCount: 9},
		}}
		teams := &fakeTeamRepo{teams: map[uint64]entities.Team{
			2: {ID: 2, Name: "Служба поддержки"},
		}}
		svc := newTestKPIService(kpi, teams, defaultStubSettings())

		dash, err := svc.Dashboard(context.Background(), rc, dto.KPIQueryDTO{PeriodDays: 7})
		require.NoError(t, err)

		require.Len(t, dash.Rankings.TopTeams, 2)
		assert.Equal(t, "Служба поддержки", dash.Rankings.TopTeams[0].Name)
		assert.InDelta(t, 90.0, dash.Rankings.TopTeams[0].CompletionRate, 0.001)
		// Каждая строка рейтинга несёт собственный балл и оценку.
		assert.InDelta(t, 100.0, dash.Rankings.TopTeams[0].Score, 0.001)
		assert.Equal(t, "A", dash.Rankings.TopTeams[0].Grade)
		assert.Equal(t, "D", dash.Rankings.TopTeams[1].Grade)
		// Неизвестная команда получает синтетическое имя.
		assert.Equal(t, "Команда #1", dash.Rankings.TopTeams[1].Name)
		// Худшая по эскалациям — первая в антирейтинге.
		assert.Equal(t, uint64(1), dash.Rankings.WorstEscalation[0].ID)
	})

	t.Run("фильтр по команде сужает выборку", func(t *testing.T) {
		other := uint64(2)
		kpi := &fakeKPIRepo{dailies: []entities.KPIDaily{
			{Date: day(8), TeamID: &team, CreatedCount: 4, DoneCount: 4},
			{Date: day(8), TeamID: &other, CreatedCount: 6, DoneCount: 1},
		}}
		svc := newTestKPIService(kpi, nil, defaultStubSettings())

		dash, err := svc.Dashboard(context.Background(), rc, dto.KPIQueryDTO{PeriodDays: 7, TeamID: &team})
		require.NoError(t, err)

		assert.Equal(t, 4, dash.Summary.CreatedCount)
		assert.Equal(t, 4, dash.Summary.DoneCount)
	})
}

func TestKPIService_Rebuild(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	t.Run("дневная перестройка покрывает 90-дневный горизонт", func(t *testing.T) {
		kpi := &fakeKPIRepo{}
		svc := newTestKPIService(kpi, nil, defaultStubSettings())

		require.NoError(t, svc.RebuildDaily(context.Background(), now))

		expectedTo := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, expectedTo, kpi.rebuiltTo)
		assert.Equal(t, expectedTo.Add(-90*24*time.Hour), kpi.rebuiltFrom)
	})

	t.Run("сводка пишется с окном из настроек", func(t *testing.T) {
		kpi := &fakeKPIRepo{}
		settings := defaultStubSettings()
		settings.periodDays = 14
		svc := newTestKPIService(kpi, nil, settings)

		require.NoError(t, svc.RebuildSummary(context.Background(), now))

		require.NotNil(t, kpi.lastUpserted)
		assert.Equal(t, 14, kpi.lastUpserted.PeriodDays)
		assert.Equal(t, 14*24*time.Hour, kpi.lastUpserted.PeriodEnd.Sub(kpi.lastUpserted.PeriodStart))
	})

	t.Run("пустая сводка отдаёт ErrNotFound", func(t *testing.T) {
		svc := newTestKPIService(&fakeKPIRepo{}, nil, defaultStubSettings())

		_, err := svc.Summary(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
