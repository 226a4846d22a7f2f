package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"line-helpdesk/internal/entities"
	apperrors "line-helpdesk/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FollowUpRepositoryInterface interface {
	CreatePending(ctx context.Context, e entities.FollowUpEvent) (uint64, bool, error)
	FindPendingByTicket(ctx context.Context, ticketID uint64) ([]entities.FollowUpEvent, error)
	MarkDone(ctx context.Context, id uint64, doneAt time.Time, responseHours float64) error
	MarkEscalated(ctx context.Context, id uint64, at time.Time, assigneeID *uint64, activityType string) error
	FindOverdue(ctx context.Context, asOf time.Time) ([]entities.FollowUpEvent, error)
	GetDailyAggregates(ctx context.Context, from, to time.Time) ([]entities.KPIDaily, error)
	GetWindowAggregate(ctx context.Context, from, to time.Time) (*entities.KPISummary, error)
}

type FollowUpRepository struct {
	storage *pgxpool.Pool
}

func NewFollowUpRepository(storage *pgxpool.Pool) FollowUpRepositoryInterface {
	return &FollowUpRepository{storage: storage}
}

const followUpColumns = `id, ticket_id, policy_id, team_id, assigned_user_id, state, activity_type,
	due_date, created_date, done_at, escalation_created_at, response_time_hours`

func scanFollowUp(row pgx.Row) (*entities.FollowUpEvent, error) {
	var e entities.FollowUpEvent
	err := row.Scan(
		&e.ID, &e.TicketID, &e.PolicyID, &e.TeamID, &e.AssignedUserID, &e.State, &e.ActivityType,
		&e.DueDate, &e.CreatedDate, &e.DoneAt, &e.EscalationCreatedAt, &e.ResponseTimeHours,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreatePending вставляет pending-событие. Повторная вставка для той же пары
// (ticket, policy) с уже существующим pending поглощается: created=false.
func (r *FollowUpRepository) CreatePending(ctx context.Context, e entities.FollowUpEvent) (uint64, bool, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO followup_events (ticket_id, policy_id, team_id, assigned_user_id, state, activity_type, due_date, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticket_id, policy_id) WHERE state = 'pending' DO NOTHING
		RETURNING id`,
		e.TicketID, e.PolicyID, e.TeamID, e.AssignedUserID, entities.FollowUpStatePending, e.ActivityType, e.DueDate, e.CreatedDate,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("ошибка создания follow-up события: %w", err)
	}
	return id, true, nil
}

func (r *FollowUpRepository) FindPendingByTicket(ctx context.Context, ticketID uint64) ([]entities.FollowUpEvent, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+followUpColumns+` FROM followup_events WHERE ticket_id = $1 AND state = $2 ORDER BY id`,
		ticketID, entities.FollowUpStatePending)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения pending событий тикета: %w", err)
	}
	defer rows.Close()

	events := make([]entities.FollowUpEvent, 0)
	for rows.Next() {
		e, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования follow-up события: %w", err)
		}
		events = append(events, *e)
	}
	return events, nil
}

// MarkDone переводит событие в терминальное состояние done.
// Переход разрешён только из pending.
func (r *FollowUpRepository) MarkDone(ctx context.Context, id uint64, doneAt time.Time, responseHours float64) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE followup_events
		SET state = $1, done_at = $2, response_time_hours = $3
		WHERE id = $4 AND state = $5`,
		entities.FollowUpStateDone, doneAt, responseHours, id, entities.FollowUpStatePending)
	if err != nil {
		return fmt.Errorf("ошибка закрытия follow-up события: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkEscalated переводит событие в escalated и перевешивает его на
// эскалационного исполнителя политики; пустые значения оставляют
// исполнителя и тип активности событию прежними.
func (r *FollowUpRepository) MarkEscalated(ctx context.Context, id uint64, at time.Time, assigneeID *uint64, activityType string) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE followup_events
		SET state = $1, escalation_created_at = $2,
			assigned_user_id = COALESCE($3, assigned_user_id),
			activity_type = CASE WHEN $4 <> '' THEN $4 ELSE activity_type END
		WHERE id = $5 AND state = $6`,
		entities.FollowUpStateEscalated, at, assigneeID, activityType, id, entities.FollowUpStatePending)
	if err != nil {
		return fmt.Errorf("ошибка эскалации follow-up события: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *FollowUpRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]entities.FollowUpEvent, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+followUpColumns+` FROM followup_events WHERE state = $1 AND due_date < $2 ORDER BY due_date`,
		entities.FollowUpStatePending, asOf)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки просроченных событий: %w", err)
	}
	defer rows.Close()

	events := make([]entities.FollowUpEvent, 0)
	for rows.Next() {
		e, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования follow-up события: %w", err)
		}
		events = append(events, *e)
	}
	return events, nil
}

// GetDailyAggregates группирует события по (день создания, команда, политика,
// назначенный пользователь) — материал для перестройки kpi_daily.
func (r *FollowUpRepository) GetDailyAggregates(ctx context.Context, from, to time.Time) ([]entities.KPIDaily, error) {
	query, args, err := sq.Select(
		"DATE(created_date) AS day",
		"team_id",
		"policy_id",
		"assigned_user_id",
		"COUNT(*) AS created_count",
		"COUNT(*) FILTER (WHERE state = 'done') AS done_count",
		"COUNT(*) FILTER (WHERE escalation_created_at IS NOT NULL) AS escalation_count",
		"COALESCE(AVG(response_time_hours), 0) AS avg_response_hours",
	).
		From("followup_events").
		Where(sq.GtOrEq{"created_date": from}).
		Where(sq.Lt{"created_date": to}).
		GroupBy("DATE(created_date)", "team_id", "policy_id", "assigned_user_id").
		OrderBy("day").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса агрегатов: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения дневных агрегатов: %w", err)
	}
	defer rows.Close()

	dailies := make([]entities.KPIDaily, 0)
	for rows.Next() {
		var d entities.KPIDaily
		if err := rows.Scan(&d.Date, &d.TeamID, &d.PolicyID, &d.AssignedUserID,
			&d.CreatedCount, &d.DoneCount, &d.EscalationCount, &d.AvgResponseHours); err != nil {
			return nil, fmt.Errorf("ошибка сканирования дневного агрегата: %w", err)
		}
		dailies = append(dailies, d)
	}
	return dailies, nil
}

// GetWindowAggregate считает одну сводную строку по скользящему окну.
func (r *FollowUpRepository) GetWindowAggregate(ctx context.Context, from, to time.Time) (*entities.KPISummary, error) {
	var s entities.KPISummary
	err := r.storage.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE state = 'done'),
		       COUNT(*) FILTER (WHERE escalation_created_at IS NOT NULL),
		       COALESCE(AVG(response_time_hours), 0)
		FROM followup_events
		WHERE created_date >= $1 AND created_date < $2`, from, to,
	).Scan(&s.CreatedCount, &s.DoneCount, &s.EscalationCount, &s.AvgResponseHours)
	if err != nil {
		return nil, fmt.Errorf("ошибка расчета сводного окна: %w", err)
	}
	s.PeriodStart = from
	s.PeriodEnd = to
	return &s, nil
}
