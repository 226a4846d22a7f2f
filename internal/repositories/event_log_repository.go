package repositories

import (
	"context"
	"fmt"

	"line-helpdesk/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EventLogRepositoryInterface interface {
	Append(ctx context.Context, e entities.EventLog) (uint64, error)
	GetEventLogs(ctx context.Context, limit, offset uint64) ([]entities.EventLog, uint64, error)
}

// EventLogRepository — журнал только на добавление: методов изменения нет.
type EventLogRepository struct {
	storage *pgxpool.Pool
}

func NewEventLogRepository(storage *pgxpool.Pool) EventLogRepositoryInterface {
	return &EventLogRepository{storage: storage}
}

func (r *EventLogRepository) Append(ctx context.Context, e entities.EventLog) (uint64, error) {
	snippet := e.PayloadSnippet
	if len(snippet) > entities.PayloadSnippetLimit {
		snippet = snippet[:entities.PayloadSnippetLimit]
	}

	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO event_logs (received_at, channel_id, external_user_id, message_text,
			matched_contact_id, created_contact_id, created_ticket_id, processed, payload_snippet)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		e.ReceivedAt, e.ChannelID, e.ExternalUserID, e.MessageText,
		e.MatchedContactID, e.CreatedContactID, e.CreatedTicketID, e.Processed, snippet,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи в журнал событий: %w", err)
	}
	return id, nil
}

func (r *EventLogRepository) GetEventLogs(ctx context.Context, limit, offset uint64) ([]entities.EventLog, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM event_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета журнала событий: %w", err)
	}

	rows, err := r.storage.Query(ctx, `
		SELECT id, received_at, channel_id, external_user_id, message_text,
			matched_contact_id, created_contact_id, created_ticket_id, processed, payload_snippet
		FROM event_logs
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка чтения журнала событий: %w", err)
	}
	defer rows.Close()

	logs := make([]entities.EventLog, 0)
	for rows.Next() {
		var e entities.EventLog
		if err := rows.Scan(
			&e.ID, &e.ReceivedAt, &e.ChannelID, &e.ExternalUserID, &e.MessageText,
			&e.MatchedContactID, &e.CreatedContactID, &e.CreatedTicketID, &e.Processed, &e.PayloadSnippet,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		logs = append(logs, e)
	}
	return logs, total, nil
}
