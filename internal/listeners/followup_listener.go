package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"line-helpdesk/internal/events"
	"line-helpdesk/internal/services"
	"line-helpdesk/pkg/eventbus"
)

// FollowUpListener связывает шину событий с движком политик: каждая смена
// стадии прогоняется через OnStageChanged.
type FollowUpListener struct {
	followUpService services.FollowUpServiceInterface
	logger          *zap.Logger
}

func NewFollowUpListener(
	followUpService services.FollowUpServiceInterface,
	logger *zap.Logger,
) *FollowUpListener {
	return &FollowUpListener{
		followUpService: followUpService,
		logger:          logger,
	}
}

func (l *FollowUpListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.TicketStageChangedEventName, l.handleStageChanged)
}

func (l *FollowUpListener) handleStageChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.TicketStageChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	rc := services.NewRequestCtx(e.OccurredAt)
	if err := l.followUpService.OnStageChanged(ctx, rc, &e.Ticket); err != nil {
		l.logger.Error("ошибка обработки смены стадии",
			zap.String("correlation_id", e.CorrelationID),
			zap.Uint64("ticket_id", e.Ticket.ID),
			zap.Error(err))
		return err
	}
	return nil
}
