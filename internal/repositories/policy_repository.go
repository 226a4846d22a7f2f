package repositories

import (
	"context"
	"errors"
	"fmt"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	apperrors "line-helpdesk/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PolicyRepositoryInterface interface {
	GetPolicies(ctx context.Context, limit, offset uint64) ([]entities.Policy, uint64, error)
	GetActiveByTriggerStage(ctx context.Context, stageID uint64) ([]entities.Policy, error)
	FindPolicy(ctx context.Context, id uint64) (*entities.Policy, error)
	CreatePolicy(ctx context.Context, d dto.CreatePolicyDTO) (uint64, error)
	UpdatePolicy(ctx context.Context, id uint64, d dto.UpdatePolicyDTO) error
	DeletePolicy(ctx context.Context, id uint64) error
}

type PolicyRepository struct {
	storage *pgxpool.Pool
}

func NewPolicyRepository(storage *pgxpool.Pool) PolicyRepositoryInterface {
	return &PolicyRepository{storage: storage}
}

const policyColumns = `id, name, active, team_id, tag_ids, extra_filter, trigger_stage_id, wait_days,
	target_stage_id, activity_type, assignee_id, due_days, escalation_enabled,
	escalation_after_overdue_days, escalation_assignee_id, escalation_activity_type,
	note_template, escalation_note_template, created_at, updated_at`

func scanPolicy(row pgx.Row) (*entities.Policy, error) {
	var p entities.Policy
	err := row.Scan(
		&p.ID, &p.Name, &p.Active, &p.TeamID, &p.TagIDs, &p.ExtraFilter, &p.TriggerStageID, &p.WaitDays,
		&p.TargetStageID, &p.ActivityType, &p.AssigneeID, &p.DueDays, &p.EscalationEnabled,
		&p.EscalationAfterOverdueDays, &p.EscalationAssigneeID, &p.EscalationActivityType,
		&p.NoteTemplate, &p.EscalationNoteTemplate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PolicyRepository) GetPolicies(ctx context.Context, limit, offset uint64) ([]entities.Policy, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM policies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета политик: %w", err)
	}

	rows, err := r.storage.Query(ctx,
		`SELECT `+policyColumns+` FROM policies ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка политик: %w", err)
	}
	defer rows.Close()

	policies := make([]entities.Policy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования политики: %w", err)
		}
		policies = append(policies, *p)
	}
	return policies, total, nil
}

func (r *PolicyRepository) GetActiveByTriggerStage(ctx context.Context, stageID uint64) ([]entities.Policy, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE active = TRUE AND trigger_stage_id = $1 ORDER BY id`, stageID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения активных политик: %w", err)
	}
	defer rows.Close()

	policies := make([]entities.Policy, 0)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования политики: %w", err)
		}
		policies = append(policies, *p)
	}
	return policies, nil
}

func (r *PolicyRepository) FindPolicy(ctx context.Context, id uint64) (*entities.Policy, error) {
	p, err := scanPolicy(r.storage.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска политики: %w", err)
	}
	return p, nil
}

func (r *PolicyRepository) CreatePolicy(ctx context.Context, d dto.CreatePolicyDTO) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO policies (name, active, team_id, tag_ids, extra_filter, trigger_stage_id, wait_days,
			target_stage_id, activity_type, assignee_id, due_days, escalation_enabled,
			escalation_after_overdue_days, escalation_assignee_id, escalation_activity_type,
			note_template, escalation_note_template, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id`,
		d.Name, d.Active, d.TeamID, d.TagIDs, d.ExtraFilter, d.TriggerStageID, d.WaitDays,
		d.TargetStageID, d.ActivityType, d.AssigneeID, d.DueDays, d.EscalationEnabled,
		d.EscalationAfterOverdueDays, d.EscalationAssigneeID, d.EscalationActivityType,
		d.NoteTemplate, d.EscalationNoteTemplate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания политики: %w", err)
	}
	return id, nil
}

func (r *PolicyRepository) UpdatePolicy(ctx context.Context, id uint64, d dto.UpdatePolicyDTO) error {
	updateQuery := "UPDATE policies SET updated_at = NOW()"
	args := []interface{}{}
	argCounter := 1

	appendSet := func(column string, value interface{}) {
		updateQuery += fmt.Sprintf(", %s = $%d", column, argCounter)
		args = append(args, value)
		argCounter++
	}

	if d.Name != nil {
		appendSet("name", *d.Name)
	}
	if d.Active != nil {
		appendSet("active", *d.Active)
	}
	if d.TeamID != nil {
		appendSet("team_id", *d.TeamID)
	}
	if d.TagIDs != nil {
		appendSet("tag_ids", d.TagIDs)
	}
	if d.ExtraFilter != nil {
		appendSet("extra_filter", *d.ExtraFilter)
	}
	if d.TriggerStageID != nil {
		appendSet("trigger_stage_id", *d.TriggerStageID)
	}
	if d.WaitDays != nil {
		appendSet("wait_days", *d.WaitDays)
	}
	if d.TargetStageID != nil {
		appendSet("target_stage_id", *d.TargetStageID)
	}
	if d.ActivityType != nil {
		appendSet("activity_type", *d.ActivityType)
	}
	if d.AssigneeID != nil {
		appendSet("assignee_id", *d.AssigneeID)
	}
	if d.DueDays != nil {
		appendSet("due_days", *d.DueDays)
	}
	if d.EscalationEnabled != nil {
		appendSet("escalation_enabled", *d.EscalationEnabled)
	}
	if d.EscalationAfterOverdueDays != nil {
		appendSet("escalation_after_overdue_days", *d.EscalationAfterOverdueDays)
	}
	if d.EscalationAssigneeID != nil {
		appendSet("escalation_assignee_id", *d.EscalationAssigneeID)
	}
	if d.EscalationActivityType != nil {
		appendSet("escalation_activity_type", *d.EscalationActivityType)
	}
	if d.NoteTemplate != nil {
		appendSet("note_template", *d.NoteTemplate)
	}
	if d.EscalationNoteTemplate != nil {
		appendSet("escalation_note_template", *d.EscalationNoteTemplate)
	}

	updateQuery += fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	tag, err := r.storage.Exec(ctx, updateQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления политики: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PolicyRepository) DeletePolicy(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM policies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления политики: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
