package services

import (
	"context"
	"time"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/repositories"
)

type EventLogServiceInterface interface {
	GetEventLogs(ctx context.Context, limit, offset uint64) ([]dto.EventLogDTO, uint64, error)
}

type EventLogService struct {
	eventLogRepository repositories.EventLogRepositoryInterface
}

func NewEventLogService(eventLogRepository repositories.EventLogRepositoryInterface) EventLogServiceInterface {
	return &EventLogService{eventLogRepository: eventLogRepository}
}

func (s *EventLogService) GetEventLogs(ctx context.Context, limit, offset uint64) ([]dto.EventLogDTO, uint64, error) {
	logs, total, err := s.eventLogRepository.GetEventLogs(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.EventLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.EventLogDTO{
			ID:               l.ID,
			ReceivedAt:       l.ReceivedAt.Format(time.RFC3339),
			ChannelID:        l.ChannelID,
			ExternalUserID:   l.ExternalUserID.String,
			MessageText:      l.MessageText.String,
			MatchedContactID: l.MatchedContactID,
			CreatedContactID: l.CreatedContactID,
			CreatedTicketID:  l.CreatedTicketID,
			Processed:        l.Processed,
			PayloadSnippet:   l.PayloadSnippet,
		})
	}
	return out, total, nil
}
