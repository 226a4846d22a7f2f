package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"line-helpdesk/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KPIFilter — необязательные срезы для выборки дневных агрегатов.
type KPIFilter struct {
	From     time.Time
	To       time.Time
	TeamID   *uint64
	PolicyID *uint64
	UserID   *uint64
}

type KPIRepositoryInterface interface {
	RebuildDaily(ctx context.Context, from, to time.Time, dailies []entities.KPIDaily) error
	GetDailies(ctx context.Context, f KPIFilter) ([]entities.KPIDaily, error)
	GetSummary(ctx context.Context) (*entities.KPISummary, error)
	UpsertSummary(ctx context.Context, s entities.KPISummary) error
}

type KPIRepository struct {
	storage *pgxpool.Pool
}

func NewKPIRepository(storage *pgxpool.Pool) KPIRepositoryInterface {
	return &KPIRepository{storage: storage}
}

// RebuildDaily полностью перестраивает агрегаты горизонта [from, to):
// удаление и вставка идут в одной транзакции, читатели не видят пустого окна.
func (r *KPIRepository) RebuildDaily(ctx context.Context, from, to time.Time, dailies []entities.KPIDaily) error {
	return WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM kpi_daily WHERE date >= $1 AND date < $2`, from, to); err != nil {
			return fmt.Errorf("ошибка очистки kpi_daily: %w", err)
		}
		for _, d := range dailies {
			if _, err := tx.Exec(ctx, `
				INSERT INTO kpi_daily (date, team_id, policy_id, assigned_user_id,
					created_count, done_count, escalation_count, avg_response_hours)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				d.Date, d.TeamID, d.PolicyID, d.AssignedUserID,
				d.CreatedCount, d.DoneCount, d.EscalationCount, d.AvgResponseHours); err != nil {
				return fmt.Errorf("ошибка вставки kpi_daily: %w", err)
			}
		}
		return nil
	})
}

func (r *KPIRepository) GetDailies(ctx context.Context, f KPIFilter) ([]entities.KPIDaily, error) {
	builder := sq.Select("id", "date", "team_id", "policy_id", "assigned_user_id",
		"created_count", "done_count", "escalation_count", "avg_response_hours").
		From("kpi_daily").
		Where(sq.GtOrEq{"date": f.From}).
		Where(sq.Lt{"date": f.To}).
		OrderBy("date").
		PlaceholderFormat(sq.Dollar)

	if f.TeamID != nil {
		builder = builder.Where(sq.Eq{"team_id": *f.TeamID})
	}
	if f.PolicyID != nil {
		builder = builder.Where(sq.Eq{"policy_id": *f.PolicyID})
	}
	if f.UserID != nil {
		builder = builder.Where(sq.Eq{"assigned_user_id": *f.UserID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса kpi_daily: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки kpi_daily: %w", err)
	}
	defer rows.Close()

	dailies := make([]entities.KPIDaily, 0)
	for rows.Next() {
		var d entities.KPIDaily
		if err := rows.Scan(&d.ID, &d.Date, &d.TeamID, &d.PolicyID, &d.AssignedUserID,
			&d.CreatedCount, &d.DoneCount, &d.EscalationCount, &d.AvgResponseHours); err != nil {
			return nil, fmt.Errorf("ошибка сканирования kpi_daily: %w", err)
		}
		dailies = append(dailies, d)
	}
	return dailies, nil
}

// GetSummary возвращает единственную сводную строку или nil, если сводка
// ещё ни разу не строилась.
func (r *KPIRepository) GetSummary(ctx context.Context) (*entities.KPISummary, error) {
	var s entities.KPISummary
	err := r.storage.QueryRow(ctx, `
		SELECT key, period_days, period_start, period_end,
		       created_count, done_count, escalation_count, avg_response_hours, updated_at
		FROM kpi_summary WHERE key = $1`, entities.KPISummaryKey,
	).Scan(&s.Key, &s.PeriodDays, &s.PeriodStart, &s.PeriodEnd,
		&s.CreatedCount, &s.DoneCount, &s.EscalationCount, &s.AvgResponseHours, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения kpi_summary: %w", err)
	}
	return &s, nil
}

func (r *KPIRepository) UpsertSummary(ctx context.Context, s entities.KPISummary) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO kpi_summary (key, period_days, period_start, period_end,
			created_count, done_count, escalation_count, avg_response_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (key) DO UPDATE SET
			period_days = EXCLUDED.period_days,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			created_count = EXCLUDED.created_count,
			done_count = EXCLUDED.done_count,
			escalation_count = EXCLUDED.escalation_count,
			avg_response_hours = EXCLUDED.avg_response_hours,
			updated_at = NOW()`,
		entities.KPISummaryKey, s.PeriodDays, s.PeriodStart, s.PeriodEnd,
		s.CreatedCount, s.DoneCount, s.EscalationCount, s.AvgResponseHours)
	if err != nil {
		return fmt.Errorf("ошибка обновления kpi_summary: %w", err)
	}
	return nil
}
