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

type TeamRepositoryInterface interface {
	FindTeam(ctx context.Context, id uint64) (*entities.Team, error)
	GetTeams(ctx context.Context) ([]entities.Team, error)
}

type TeamRepository struct {
	storage *pgxpool.Pool
}

func NewTeamRepository(storage *pgxpool.Pool) TeamRepositoryInterface {
	return &TeamRepository{storage: storage}
}

func (r *TeamRepository) FindTeam(ctx context.Context, id uint64) (*entities.Team, error) {
	var t entities.Team
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, alias_reply_to FROM teams WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.AliasReplyTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска команды: %w", err)
	}
	return &t, nil
}

func (r *TeamRepository) GetTeams(ctx context.Context) ([]entities.Team, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name, alias_reply_to FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения команд: %w", err)
	}
	defer rows.Close()

	teams := make([]entities.Team, 0)
	for rows.Next() {
		var t entities.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.AliasReplyTo); err != nil {
			return nil, fmt.Errorf("ошибка сканирования команды: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, nil
}
