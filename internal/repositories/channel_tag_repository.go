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

type ChannelTagRepositoryInterface interface {
	FindByCode(ctx context.Context, code string) (*entities.ChannelTag, error)
	FindAny(ctx context.Context) (*entities.ChannelTag, error)
}

type ChannelTagRepository struct {
	storage *pgxpool.Pool
}

func NewChannelTagRepository(storage *pgxpool.Pool) ChannelTagRepositoryInterface {
	return &ChannelTagRepository{storage: storage}
}

func (r *ChannelTagRepository) FindByCode(ctx context.Context, code string) (*entities.ChannelTag, error) {
	var t entities.ChannelTag
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, code FROM channel_tags WHERE code = $1`, code,
	).Scan(&t.ID, &t.Name, &t.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска тега канала: %w", err)
	}
	return &t, nil
}

// FindAny — запасной вариант, когда справочник не содержит нужного кода.
func (r *ChannelTagRepository) FindAny(ctx context.Context) (*entities.ChannelTag, error) {
	var t entities.ChannelTag
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, code FROM channel_tags ORDER BY id LIMIT 1`,
	).Scan(&t.ID, &t.Name, &t.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка выбора тега канала: %w", err)
	}
	return &t, nil
}
