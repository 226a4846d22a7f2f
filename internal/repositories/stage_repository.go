package repositories

import (
	"context"
	"errors"
	"fmt"

	"line-helpdesk/internal/entities"
	apperrors "line-helpdesk/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StageRepositoryInterface interface {
	FindStage(ctx context.Context, id uint64) (*entities.Stage, error)
	FirstStageForTeam(ctx context.Context, teamID uint64) (*entities.Stage, error)
	GetStages(ctx context.Context) ([]entities.Stage, error)
}

type StageRepository struct {
	storage *pgxpool.Pool
}

func NewStageRepository(storage *pgxpool.Pool) StageRepositoryInterface {
	return &StageRepository{storage: storage}
}

const stageColumns = `id, name, sequence, team_id, closed, unattended, sla_hours, notify_customer, mail_template_id`

func scanStage(row pgx.Row) (*entities.Stage, error) {
	var s entities.Stage
	err := row.Scan(&s.ID, &s.Name, &s.Sequence, &s.TeamID, &s.Closed, &s.Unattended,
		&s.SLAHours, &s.NotifyCustomer, &s.MailTemplateID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StageRepository) FindStage(ctx context.Context, id uint64) (*entities.Stage, error) {
	s, err := scanStage(r.storage.QueryRow(ctx,
		`SELECT `+stageColumns+` FROM stages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска стадии: %w", err)
	}
	return s, nil
}

// FirstStageForTeam — стадия с минимальным sequence среди стадий команды
// (включая общие стадии без team_id).
func (r *StageRepository) FirstStageForTeam(ctx context.Context, teamID uint64) (*entities.Stage, error) {
	s, err := scanStage(r.storage.QueryRow(ctx,
		`SELECT `+stageColumns+` FROM stages
		 WHERE team_id = $1 OR team_id IS NULL
		 ORDER BY sequence, id LIMIT 1`, teamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска первой стадии команды: %w", err)
	}
	return s, nil
}

func (r *StageRepository) GetStages(ctx context.Context) ([]entities.Stage, error) {
	rows, err := r.storage.Query(ctx, `SELECT `+stageColumns+` FROM stages ORDER BY sequence, id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения стадий: %w", err)
	}
	defer rows.Close()

	stages := make([]entities.Stage, 0)
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования стадии: %w", err)
		}
		stages = append(stages, *s)
	}
	return stages, nil
}
