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

type ChannelRepositoryInterface interface {
	GetChannels(ctx context.Context, limit, offset uint64) ([]entities.Channel, uint64, error)
	GetActiveChannels(ctx context.Context) ([]entities.Channel, error)
	FindChannel(ctx context.Context, id uint64) (*entities.Channel, error)
	CreateChannel(ctx context.Context, d dto.CreateChannelDTO) (uint64, error)
	UpdateChannel(ctx context.Context, id uint64, d dto.UpdateChannelDTO) error
}

type ChannelRepository struct {
	storage *pgxpool.Pool
}

func NewChannelRepository(storage *pgxpool.Pool) ChannelRepositoryInterface {
	return &ChannelRepository{storage: storage}
}

const channelColumns = `id, name, active, secret, access_token, default_team_id, default_stage_id, create_ticket, match_mode, created_at, updated_at`

func scanChannel(row pgx.Row) (*entities.Channel, error) {
	var ch entities.Channel
	err := row.Scan(
		&ch.ID, &ch.Name, &ch.Active, &ch.Secret, &ch.AccessToken,
		&ch.DefaultTeamID, &ch.DefaultStageID, &ch.CreateTicket, &ch.MatchMode,
		&ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *ChannelRepository) GetChannels(ctx context.Context, limit, offset uint64) ([]entities.Channel, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM channels`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета каналов: %w", err)
	}

	rows, err := r.storage.Query(ctx,
		`SELECT `+channelColumns+` FROM channels ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка каналов: %w", err)
	}
	defer rows.Close()

	channels := make([]entities.Channel, 0)
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования канала: %w", err)
		}
		channels = append(channels, *ch)
	}
	return channels, total, nil
}

// GetActiveChannels возвращает каналы-кандидаты для проверки подписи вебхука.
func (r *ChannelRepository) GetActiveChannels(ctx context.Context) ([]entities.Channel, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения активных каналов: %w", err)
	}
	defer rows.Close()

	channels := make([]entities.Channel, 0)
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования канала: %w", err)
		}
		channels = append(channels, *ch)
	}
	return channels, nil
}

func (r *ChannelRepository) FindChannel(ctx context.Context, id uint64) (*entities.Channel, error) {
	ch, err := scanChannel(r.storage.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска канала: %w", err)
	}
	return ch, nil
}

func (r *ChannelRepository) CreateChannel(ctx context.Context, d dto.CreateChannelDTO) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO channels (name, active, secret, access_token, default_team_id, default_stage_id, create_ticket, match_mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`,
		d.Name, d.Active, d.Secret, d.AccessToken, d.DefaultTeamID, d.DefaultStageID, d.CreateTicket, d.MatchMode,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания канала: %w", err)
	}
	return id, nil
}

func (r *ChannelRepository) UpdateChannel(ctx context.Context, id uint64, d dto.UpdateChannelDTO) error {
	updateQuery := "UPDATE channels SET updated_at = NOW()"
	args := []interface{}{}
	argCounter := 1

	if d.Name != nil {
		updateQuery += fmt.Sprintf(", name = $%d", argCounter)
		args = append(args, *d.Name)
		argCounter++
	}
	if d.Active != nil {
		updateQuery += fmt.Sprintf(", active = $%d", argCounter)
		args = append(args, *d.Active)
		argCounter++
	}
	if d.Secret != nil {
		updateQuery += fmt.Sprintf(", secret = $%d", argCounter)
		args = append(args, *d.Secret)
		argCounter++
	}
	if d.AccessToken != nil {
		updateQuery += fmt.Sprintf(", access_token = $%d", argCounter)
		args = append(args, *d.AccessToken)
		argCounter++
	}
	if d.DefaultTeamID != nil {
		updateQuery += fmt.Sprintf(", default_team_id = $%d", argCounter)
		args = append(args, *d.DefaultTeamID)
		argCounter++
	}
	if d.DefaultStageID != nil {
		updateQuery += fmt.Sprintf(", default_stage_id = $%d", argCounter)
		args = append(args, *d.DefaultStageID)
		argCounter++
	}
	if d.CreateTicket != nil {
		updateQuery += fmt.Sprintf(", create_ticket = $%d", argCounter)
		args = append(args, *d.CreateTicket)
		argCounter++
	}
	if d.MatchMode != nil {
		updateQuery += fmt.Sprintf(", match_mode = $%d", argCounter)
		args = append(args, *d.MatchMode)
		argCounter++
	}

	updateQuery += fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	tag, err := r.storage.Exec(ctx, updateQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления канала: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
