package services

import (
	"context"
	"fmt"

	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/events"
	"line-helpdesk/internal/repositories"
	"line-helpdesk/pkg/eventbus"

	"go.uber.org/zap"
)

type TicketServiceInterface interface {
	FindTicket(ctx context.Context, id uint64) (*entities.Ticket, error)
	UpdateStage(ctx context.Context, rc RequestCtx, ticketID, stageID uint64) (*entities.Ticket, error)
}

// TicketService — операторские операции над тикетами. Смена стадии
// публикует событие, на которое реагирует движок политик.
type TicketService struct {
	ticketRepository repositories.TicketRepositoryInterface
	stageRepository  repositories.StageRepositoryInterface
	bus              *eventbus.Bus
	logger           *zap.Logger
}

func NewTicketService(
	ticketRepository repositories.TicketRepositoryInterface,
	stageRepository repositories.StageRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) TicketServiceInterface {
	return &TicketService{
		ticketRepository: ticketRepository,
		stageRepository:  stageRepository,
		bus:              bus,
		logger:           logger,
	}
}

func (s *TicketService) FindTicket(ctx context.Context, id uint64) (*entities.Ticket, error) {
	return s.ticketRepository.FindTicket(ctx, id)
}

func (s *TicketService) UpdateStage(ctx context.Context, rc RequestCtx, ticketID, stageID uint64) (*entities.Ticket, error) {
	stage, err := s.stageRepository.FindStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.ticketRepository.UpdateStage(ctx, ticketID, stageID, stage.Closed, rc.Now)
	if err != nil {
		return nil, fmt.Errorf("ошибка смены стадии тикета: %w", err)
	}

	s.logger.Info("стадия тикета изменена",
		zap.Uint64("ticket_id", ticketID),
		zap.Uint64("stage_id", stageID))
	s.bus.Publish(ctx, events.NewTicketStageChangedEvent(*ticket, rc.Now))

	return ticket, nil
}
