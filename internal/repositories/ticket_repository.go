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

type TicketRepositoryInterface interface {
	FindTicket(ctx context.Context, id uint64) (*entities.Ticket, error)
	FindOpenForDedup(ctx context.Context, contactID uint64, teamID *uint64, since time.Time) ([]entities.Ticket, error)
	CreateTicket(ctx context.Context, t entities.Ticket) (uint64, error)
	AppendInternalNote(ctx context.Context, ticketID uint64, body string, now time.Time) error
	UpdateStage(ctx context.Context, ticketID uint64, stageID uint64, closed bool, now time.Time) (*entities.Ticket, error)
}

type TicketRepository struct {
	storage *pgxpool.Pool
}

func NewTicketRepository(storage *pgxpool.Pool) TicketRepositoryInterface {
	return &TicketRepository{storage: storage}
}

const ticketColumns = `id, number, title, description, contact_id, team_id, stage_id, channel_tag_id,
	external_user_id, po_number, priority, stage_entered_at, last_update_at, closed_date, created_at`

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var t entities.Ticket
	err := row.Scan(
		&t.ID, &t.Number, &t.Title, &t.Description, &t.ContactID, &t.TeamID, &t.StageID,
		&t.ChannelTagID, &t.ExternalUserID, &t.PONumber, &t.Priority,
		&t.StageEnteredAt, &t.LastUpdateAt, &t.ClosedDate, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) FindTicket(ctx context.Context, id uint64) (*entities.Ticket, error) {
	t, err := scanTicket(r.storage.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска тикета: %w", err)
	}
	return t, nil
}

// В запросе дедупликации tickets соединяется со stages, и обе таблицы
// несут колонки id и team_id, поэтому список и условия полностью
// квалифицированы.
const ticketColumnsQualified = `tickets.id, tickets.number, tickets.title, tickets.description,
	tickets.contact_id, tickets.team_id, tickets.stage_id, tickets.channel_tag_id,
	tickets.external_user_id, tickets.po_number, tickets.priority, tickets.stage_entered_at,
	tickets.last_update_at, tickets.closed_date, tickets.created_at`

func dedupQuery(contactID uint64, teamID *uint64, since time.Time) (string, []interface{}, error) {
	b := sq.Select(ticketColumnsQualified).
		From("tickets").
		Join("stages s ON tickets.stage_id = s.id").
		Where(sq.Eq{"tickets.contact_id": contactID}).
		Where(sq.GtOrEq{"tickets.created_at": since}).
		Where(sq.Eq{"s.closed": false}).
		OrderBy("tickets.created_at DESC")
	if teamID != nil {
		b = b.Where(sq.Eq{"tickets.team_id": *teamID})
	}
	return b.PlaceholderFormat(sq.Dollar).ToSql()
}

// FindOpenForDedup ищет незакрытые тикеты контакта в окне дедупликации.
// Команда учитывается только если задана у канала.
func (r *TicketRepository) FindOpenForDedup(ctx context.Context, contactID uint64, teamID *uint64, since time.Time) ([]entities.Ticket, error) {
	query, args, err := dedupQuery(contactID, teamID, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса дедупликации: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска тикетов для дедупликации: %w", err)
	}
	defer rows.Close()

	tickets := make([]entities.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования тикета: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, nil
}

func (r *TicketRepository) CreateTicket(ctx context.Context, t entities.Ticket) (newTicketID uint64, err error) {
	err = WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		// Номер тикета выдаёт последовательность БД.
		insertErr := tx.QueryRow(ctx, `
			INSERT INTO tickets (number, title, description, contact_id, team_id, stage_id, channel_tag_id,
				external_user_id, po_number, priority, stage_entered_at, last_update_at, created_at)
			VALUES ('HT' || LPAD(nextval('ticket_number_seq')::text, 6, '0'),
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			RETURNING id`,
			t.Title, t.Description, t.ContactID, t.TeamID, t.StageID, t.ChannelTagID,
			t.ExternalUserID, t.PONumber, t.Priority, t.StageEnteredAt, t.LastUpdateAt,
		).Scan(&newTicketID)
		if insertErr != nil {
			return fmt.Errorf("ошибка создания тикета: %w", insertErr)
		}
		return nil
	})
	return newTicketID, err
}

func (r *TicketRepository) AppendInternalNote(ctx context.Context, ticketID uint64, body string, now time.Time) error {
	return WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO ticket_messages (ticket_id, subtype, body, created_at)
			VALUES ($1, $2, $3, $4)`,
			ticketID, entities.MailSubtypeInternalNote, body, now,
		); err != nil {
			return fmt.Errorf("ошибка добавления заметки к тикету: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE tickets SET last_update_at = $2 WHERE id = $1`, ticketID, now); err != nil {
			return fmt.Errorf("ошибка обновления last_update_at тикета: %w", err)
		}
		return nil
	})
}

// UpdateStage переводит тикет на другую стадию. stage_entered_at всегда
// равен времени последней смены стадии; закрывающая стадия пишет closed_date.
func (r *TicketRepository) UpdateStage(ctx context.Context, ticketID uint64, stageID uint64, closed bool, now time.Time) (*entities.Ticket, error) {
	var closedDate *time.Time
	if closed {
		closedDate = &now
	}

	t, err := scanTicket(r.storage.QueryRow(ctx, `
		UPDATE tickets
		SET stage_id = $2, stage_entered_at = $3, last_update_at = $3, closed_date = $4
		WHERE id = $1
		RETURNING `+ticketColumns,
		ticketID, stageID, now, closedDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка смены стадии тикета: %w", err)
	}
	return t, nil
}
