package services

import (
	"context"
	"encoding/json"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

type LineWebhookServiceInterface interface {
	ProcessPayload(ctx context.Context, rc RequestCtx, channel *entities.Channel, payload dto.LineWebhookDTO, rawBody []byte)
}

// LineWebhookService прогоняет события вебхука по конвейеру
// контакт → тикет и журналирует каждый исход, включая необработанные.
type LineWebhookService struct {
	contactResolver    ContactResolverInterface
	ticketRouter       TicketRouterInterface
	eventLogRepository repositories.EventLogRepositoryInterface
	settings           SettingsServiceInterface
	logger             *zap.Logger
}

func NewLineWebhookService(
	contactResolver ContactResolverInterface,
	ticketRouter TicketRouterInterface,
	eventLogRepository repositories.EventLogRepositoryInterface,
	settings SettingsServiceInterface,
	logger *zap.Logger,
) LineWebhookServiceInterface {
	return &LineWebhookService{
		contactResolver:    contactResolver,
		ticketRouter:       ticketRouter,
		eventLogRepository: eventLogRepository,
		settings:           settings,
		logger:             logger,
	}
}

// ProcessPayload обрабатывает события независимо друг от друга: ошибка
// одного события не мешает остальным и никогда не меняет HTTP-ответ вебхука.
func (s *LineWebhookService) ProcessPayload(
	ctx context.Context,
	rc RequestCtx,
	channel *entities.Channel,
	payload dto.LineWebhookDTO,
	rawBody []byte,
) {
	for _, event := range payload.Events {
		s.processEvent(ctx, rc, channel, event, rawBody)
	}
}

func (s *LineWebhookService) processEvent(
	ctx context.Context,
	rc RequestCtx,
	channel *entities.Channel,
	event dto.LineEventDTO,
	rawBody []byte,
) {
	logEntry := entities.EventLog{
		ReceivedAt:     rc.Now,
		PayloadSnippet: snippetOf(event, rawBody),
	}
	if channel != nil && channel.ID != 0 {
		logEntry.ChannelID = &channel.ID
	}
	if event.Source.UserID != "" {
		logEntry.ExternalUserID = null.StringFrom(event.Source.UserID)
	}

	defer func() {
		if _, err := s.eventLogRepository.Append(ctx, logEntry); err != nil {
			s.logger.Error("не удалось записать событие в журнал", zap.Error(err))
		}
	}()

	// Обрабатываем только текстовые сообщения от пользователей.
	if event.Type != "message" || event.Message == nil || event.Message.Type != "text" || event.Source.UserID == "" {
		return
	}
	logEntry.MessageText = null.StringFrom(event.Message.Text)

	result, err := s.contactResolver.Resolve(ctx, rc, channel, event.Source.UserID, event.Message.Text)
	if err != nil {
		s.logger.Error("ошибка идентификации контакта",
			zap.String("user_id", event.Source.UserID), zap.Error(err))
		return
	}
	if result.Matched {
		logEntry.MatchedContactID = &result.Contact.ID
	}
	if result.Created {
		logEntry.CreatedContactID = &result.Contact.ID
	}

	createTicket := channel.CreateTicket
	if !createTicket {
		logEntry.Processed = true
		return
	}

	routed, err := s.ticketRouter.Route(ctx, rc, channel, result.Contact, event.Source.UserID, event.Message.Text)
	if err != nil {
		s.logger.Error("ошибка маршрутизации тикета",
			zap.Uint64("contact_id", result.Contact.ID), zap.Error(err))
		return
	}
	if routed.CreatedTicket {
		logEntry.CreatedTicketID = &routed.Ticket.ID
	}
	logEntry.Processed = true
}

// snippetOf сериализует одно событие для журнала; при сбое сериализации
// падаем обратно на сырое тело запроса.
func snippetOf(event dto.LineEventDTO, rawBody []byte) string {
	raw, err := json.Marshal(event)
	if err != nil {
		raw = rawBody
	}
	if len(raw) > entities.PayloadSnippetLimit {
		raw = raw[:entities.PayloadSnippetLimit]
	}
	return string(raw)
}
