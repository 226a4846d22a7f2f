package events

import (
	"time"

	"line-helpdesk/internal/entities"

	"github.com/google/uuid"
)

const TicketStageChangedEventName = "ticket.stage_changed"

// TicketStageChangedEvent публикуется при каждом входе тикета в стадию,
// включая стадию создания.
type TicketStageChangedEvent struct {
	CorrelationID string
	Ticket        entities.Ticket
	OccurredAt    time.Time
}

func NewTicketStageChangedEvent(ticket entities.Ticket, at time.Time) TicketStageChangedEvent {
	return TicketStageChangedEvent{
		CorrelationID: uuid.NewString(),
		Ticket:        ticket,
		OccurredAt:    at,
	}
}

func (e TicketStageChangedEvent) Name() string {
	return TicketStageChangedEventName
}
