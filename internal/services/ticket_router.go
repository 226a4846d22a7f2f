package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/events"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/eventbus"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

// DedupWindow — окно, внутри которого повторное сообщение того же контакта
// пришивается заметкой к открытому тикету вместо создания нового.
const DedupWindow = 24 * time.Hour

// Длина текста сообщения, попадающая в заголовок тикета.
const titleSnippetRunes = 60

// RouteResult — итог маршрутизации одного сообщения.
type RouteResult struct {
	Ticket        *entities.Ticket
	CreatedTicket bool // создан новый тикет; false — заметка к существующему
}

type TicketRouterInterface interface {
	Route(ctx context.Context, rc RequestCtx, channel *entities.Channel, contact *entities.Contact, externalUserID, messageText string) (*RouteResult, error)
}

type TicketRouter struct {
	ticketRepository     repositories.TicketRepositoryInterface
	channelTagRepository repositories.ChannelTagRepositoryInterface
	stageRepository      repositories.StageRepositoryInterface
	settings             SettingsServiceInterface
	bus                  *eventbus.Bus
	logger               *zap.Logger
}

func NewTicketRouter(
	ticketRepository repositories.TicketRepositoryInterface,
	channelTagRepository repositories.ChannelTagRepositoryInterface,
	stageRepository repositories.StageRepositoryInterface,
	settings SettingsServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) TicketRouterInterface {
	return &TicketRouter{
		ticketRepository:     ticketRepository,
		channelTagRepository: channelTagRepository,
		stageRepository:      stageRepository,
		settings:             settings,
		bus:                  bus,
		logger:               logger,
	}
}

// Route: ровно один открытый тикет контакта в окне дедупликации получает
// заметку; ноль или несколько — создаётся новый тикет.
func (s *TicketRouter) Route(
	ctx context.Context,
	rc RequestCtx,
	channel *entities.Channel,
	contact *entities.Contact,
	externalUserID string,
	messageText string,
) (*RouteResult, error) {
	teamID := channel.DefaultTeamID
	if teamID == nil {
		teamID = s.settings.DefaultTeamID(ctx)
	}

	since := rc.Now.Add(-DedupWindow)
	open, err := s.ticketRepository.FindOpenForDedup(ctx, contact.ID, teamID, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска открытых тикетов: %w", err)
	}

	if len(open) == 1 {
		ticket := open[0]
		note := formatIncomingNote(externalUserID, messageText, rc.Now)
		if err := s.ticketRepository.AppendInternalNote(ctx, ticket.ID, note, rc.Now); err != nil {
			return nil, fmt.Errorf("ошибка добавления заметки к тикету: %w", err)
		}
		return &RouteResult{Ticket: &ticket}, nil
	}

	return s.createTicket(ctx, rc, channel, contact, teamID, externalUserID, messageText)
}

func (s *TicketRouter) createTicket(
	ctx context.Context,
	rc RequestCtx,
	channel *entities.Channel,
	contact *entities.Contact,
	teamID *uint64,
	externalUserID string,
	messageText string,
) (*RouteResult, error) {
	stageID := channel.DefaultStageID
	if stageID == nil {
		stageID = s.settings.DefaultStageID(ctx)
	}
	// Когда стадия не задана ни каналом, ни настройками, берётся первая
	// стадия команды.
	if stageID == nil && teamID != nil {
		stage, err := s.stageRepository.FirstStageForTeam(ctx, *teamID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("ошибка поиска первой стадии команды: %w", err)
		}
		if err == nil {
			stageID = &stage.ID
		}
	}
	if stageID == nil {
		return nil, apperrors.NewHttpError(500, "не настроена стадия по умолчанию для входящих тикетов", nil, nil)
	}

	tagID := s.resolveChannelTag(ctx)

	ticket := entities.Ticket{
		Title:          buildTitle(messageText),
		Description:    formatIncomingNote(externalUserID, messageText, rc.Now),
		ContactID:      &contact.ID,
		TeamID:         teamID,
		StageID:        *stageID,
		ChannelTagID:   tagID,
		ExternalUserID: null.StringFrom(externalUserID),
		PONumber:       entities.TicketPONumberPlaceholder,
		StageEnteredAt: rc.Now,
		LastUpdateAt:   rc.Now,
		CreatedAt:      rc.Now,
	}

	id, err := s.ticketRepository.CreateTicket(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания тикета: %w", err)
	}
	ticket.ID = id

	// Создание тикета — тоже вход в стадию, политики должны это увидеть.
	s.bus.Publish(ctx, events.NewTicketStageChangedEvent(ticket, rc.Now))

	return &RouteResult{Ticket: &ticket, CreatedTicket: true}, nil
}

// Входящие из LINE помечаются справочным тегом "other"; если справочник
// пуст по этому коду, берём любой доступный тег.
func (s *TicketRouter) resolveChannelTag(ctx context.Context) *uint64 {
	tag, err := s.channelTagRepository.FindByCode(ctx, entities.ChannelTagOther)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("ошибка поиска тега канала", zap.Error(err))
		}
		tag, err = s.channelTagRepository.FindAny(ctx)
		if err != nil {
			return nil
		}
	}
	return &tag.ID
}

func buildTitle(messageText string) string {
	snippet := messageText
	if utf8.RuneCountInString(snippet) > titleSnippetRunes {
		runes := []rune(snippet)
		snippet = string(runes[:titleSnippetRunes])
	}
	return "LINE: " + snippet
}

func formatIncomingNote(externalUserID, messageText string, at time.Time) string {
	return fmt.Sprintf("Сообщение LINE от %s в %s:\n%s",
		externalUserID, at.UTC().Format(time.RFC3339), messageText)
}
