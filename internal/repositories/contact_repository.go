package repositories

import (
	"context"
	"errors"
	"fmt"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	apperrors "line-helpdesk/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepositoryInterface interface {
	GetContacts(ctx context.Context, limit, offset uint64) ([]entities.Contact, uint64, error)
	FindContact(ctx context.Context, id uint64) (*entities.Contact, error)
	UpdateContact(ctx context.Context, id uint64, d dto.UpdateContactDTO) error
	FindByIdentity(ctx context.Context, system, externalID string) (*entities.Contact, error)
	SearchByEmailOrPhones(ctx context.Context, email string, phoneVariants []string) (*entities.Contact, error)
	CreateContact(ctx context.Context, contact entities.Contact, identity *entities.ContactIdentity) (uint64, error)
	TouchMatch(ctx context.Context, contactID uint64, displayName string) error
	GetIdentity(ctx context.Context, contactID uint64, system string) (*entities.ContactIdentity, error)
	AttachIdentity(ctx context.Context, identity entities.ContactIdentity) error
	BumpIdentityLastSeen(ctx context.Context, identityID uint64) error
	AddNote(ctx context.Context, contactID uint64, body string) error
}

type ContactRepository struct {
	storage *pgxpool.Pool
}

func NewContactRepository(storage *pgxpool.Pool) ContactRepositoryInterface {
	return &ContactRepository{storage: storage}
}

const contactColumns = `id, name, email, phone, mobile, display_name, last_seen_at, created_at, updated_at`

func scanContact(row pgx.Row) (*entities.Contact, error) {
	var c entities.Contact
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Mobile,
		&c.DisplayName, &c.LastSeenAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepository) GetContacts(ctx context.Context, limit, offset uint64) ([]entities.Contact, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета контактов: %w", err)
	}

	rows, err := r.storage.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка контактов: %w", err)
	}
	defer rows.Close()

	contacts := make([]entities.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования контакта: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, total, nil
}

func (r *ContactRepository) FindContact(ctx context.Context, id uint64) (*entities.Contact, error) {
	c, err := scanContact(r.storage.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска контакта: %w", err)
	}
	return c, nil
}

func (r *ContactRepository) UpdateContact(ctx context.Context, id uint64, d dto.UpdateContactDTO) error {
	updateQuery := "UPDATE contacts SET updated_at = NOW()"
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
	if d.Email != nil {
		appendSet("email", *d.Email)
	}
	if d.Phone != nil {
		appendSet("phone", *d.Phone)
	}
	if d.Mobile != nil {
		appendSet("mobile", *d.Mobile)
	}

	updateQuery += fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	tag, err := r.storage.Exec(ctx, updateQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления контакта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) FindByIdentity(ctx context.Context, system, externalID string) (*entities.Contact, error) {
	c, err := scanContact(r.storage.QueryRow(ctx, `
		SELECT c.id, c.name, c.email, c.phone, c.mobile, c.display_name, c.last_seen_at, c.created_at, c.updated_at
		FROM contacts c
		JOIN contact_identities ci ON ci.contact_id = c.id
		WHERE ci.system = $1 AND ci.external_id = $2`,
		system, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска контакта по идентичности: %w", err)
	}
	return c, nil
}

// SearchByEmailOrPhones строит дизъюнктивный поиск: email без учёта регистра
// ИЛИ любой из вариантов телефона как подстрока phone/mobile. Первый по id.
func (r *ContactRepository) SearchByEmailOrPhones(ctx context.Context, email string, phoneVariants []string) (*entities.Contact, error) {
	conditions := sq.Or{}
	if email != "" {
		conditions = append(conditions, sq.Expr("LOWER(email) = LOWER(?)", email))
	}
	for _, variant := range phoneVariants {
		like := "%" + variant + "%"
		conditions = append(conditions, sq.Like{"phone": like}, sq.Like{"mobile": like})
	}
	if len(conditions) == 0 {
		return nil, apperrors.ErrNotFound
	}

	query, args, err := sq.Select(contactColumns).
		From("contacts").
		Where(conditions).
		OrderBy("id").
		Limit(1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса поиска контакта: %w", err)
	}

	c, err := scanContact(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска контакта по email/телефону: %w", err)
	}
	return c, nil
}

func (r *ContactRepository) CreateContact(ctx context.Context, contact entities.Contact, identity *entities.ContactIdentity) (newContactID uint64, err error) {
	err = WithTx(ctx, r.storage, func(tx pgx.Tx) error {
		insertErr := tx.QueryRow(ctx, `
			INSERT INTO contacts (name, email, phone, mobile, display_name, last_seen_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW(), NOW())
			RETURNING id`,
			contact.Name, contact.Email, contact.Phone, contact.Mobile, contact.DisplayName,
		).Scan(&newContactID)
		if insertErr != nil {
			return fmt.Errorf("ошибка создания контакта: %w", insertErr)
		}

		if identity != nil {
			if insertErr = insertIdentity(ctx, tx, newContactID, identity.System, identity.ExternalID); insertErr != nil {
				return insertErr
			}
		}
		return nil
	})
	return newContactID, err
}

// insertIdentity выполняется и внутри транзакции создания контакта,
// и поверх пула при привязке к существующему.
func insertIdentity(ctx context.Context, q querier, contactID uint64, system, externalID string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO contact_identities (contact_id, system, external_id, first_seen, last_seen)
		VALUES ($1, $2, $3, NOW(), NOW())`,
		contactID, system, externalID)
	if err != nil {
		return fmt.Errorf("ошибка создания идентичности контакта: %w", err)
	}
	return nil
}

// TouchMatch обновляет last_seen_at и проставляет display_name, если он пуст.
func (r *ContactRepository) TouchMatch(ctx context.Context, contactID uint64, displayName string) error {
	_, err := r.storage.Exec(ctx, `
		UPDATE contacts
		SET last_seen_at = NOW(),
		    updated_at = NOW(),
		    display_name = COALESCE(display_name, NULLIF($2, ''))
		WHERE id = $1`,
		contactID, displayName)
	if err != nil {
		return fmt.Errorf("ошибка обновления контакта после матча: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetIdentity(ctx context.Context, contactID uint64, system string) (*entities.ContactIdentity, error) {
	var ident entities.ContactIdentity
	err := r.storage.QueryRow(ctx, `
		SELECT id, contact_id, system, external_id, first_seen, last_seen
		FROM contact_identities
		WHERE contact_id = $1 AND system = $2`,
		contactID, system,
	).Scan(&ident.ID, &ident.ContactID, &ident.System, &ident.ExternalID, &ident.FirstSeen, &ident.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска идентичности: %w", err)
	}
	return &ident, nil
}

func (r *ContactRepository) AttachIdentity(ctx context.Context, identity entities.ContactIdentity) error {
	return insertIdentity(ctx, r.storage, identity.ContactID, identity.System, identity.ExternalID)
}

func (r *ContactRepository) BumpIdentityLastSeen(ctx context.Context, identityID uint64) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE contact_identities SET last_seen = NOW() WHERE id = $1`, identityID)
	if err != nil {
		return fmt.Errorf("ошибка обновления last_seen идентичности: %w", err)
	}
	return nil
}

func (r *ContactRepository) AddNote(ctx context.Context, contactID uint64, body string) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO contact_notes (contact_id, body, created_at)
		VALUES ($1, $2, NOW())`,
		contactID, body)
	if err != nil {
		return fmt.Errorf("ошибка создания заметки на контакте: %w", err)
	}
	return nil
}
