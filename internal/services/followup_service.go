package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/filter"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"

	"go.uber.org/zap"
)

type FollowUpServiceInterface interface {
	OnStageChanged(ctx context.Context, rc RequestCtx, ticket *entities.Ticket) error
	SweepEscalations(ctx context.Context, now time.Time) error
}

// FollowUpService исполняет политики: переход тикета в trigger-stage порождает
// pending-событие, переход в target-stage закрывает его, просрочка эскалирует.
type FollowUpService struct {
	policyRepository   repositories.PolicyRepositoryInterface
	followUpRepository repositories.FollowUpRepositoryInterface
	ticketRepository   repositories.TicketRepositoryInterface
	logger             *zap.Logger
}

func NewFollowUpService(
	policyRepository repositories.PolicyRepositoryInterface,
	followUpRepository repositories.FollowUpRepositoryInterface,
	ticketRepository repositories.TicketRepositoryInterface,
	logger *zap.Logger,
) FollowUpServiceInterface {
	return &FollowUpService{
		policyRepository:   policyRepository,
		followUpRepository: followUpRepository,
		ticketRepository:   ticketRepository,
		logger:             logger,
	}
}

// OnStageChanged вызывается после смены стадии тикета. Сначала закрываются
// pending-события, для которых новая стадия является целевой, затем
// создаются события политик, для которых она триггерная.
func (s *FollowUpService) OnStageChanged(ctx context.Context, rc RequestCtx, ticket *entities.Ticket) error {
	if err := s.completePending(ctx, rc, ticket); err != nil {
		return err
	}
	return s.triggerPolicies(ctx, rc, ticket)
}

func (s *FollowUpService) completePending(ctx context.Context, rc RequestCtx, ticket *entities.Ticket) error {
	pending, err := s.followUpRepository.FindPendingByTicket(ctx, ticket.ID)
	if err != nil {
		return fmt.Errorf("ошибка выборки pending событий: %w", err)
	}

	for _, event := range pending {
		policy, err := s.policyRepository.FindPolicy(ctx, event.PolicyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("ошибка загрузки политики %d: %w", event.PolicyID, err)
		}
		if policy.TargetStageID == nil || *policy.TargetStageID != ticket.StageID {
			continue
		}

		responseHours := rc.Now.Sub(event.CreatedDate).Hours()
		if responseHours < 0 {
			responseHours = 0
		}
		if err := s.followUpRepository.MarkDone(ctx, event.ID, rc.Now, responseHours); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue // кто-то успел перевести событие раньше нас
			}
			return fmt.Errorf("ошибка закрытия события %d: %w", event.ID, err)
		}
		s.logger.Info("follow-up закрыт",
			zap.Uint64("event_id", event.ID),
			zap.Uint64("ticket_id", ticket.ID),
			zap.Float64("response_hours", responseHours))
	}
	return nil
}

func (s *FollowUpService) triggerPolicies(ctx context.Context, rc RequestCtx, ticket *entities.Ticket) error {
	policies, err := s.policyRepository.GetActiveByTriggerStage(ctx, ticket.StageID)
	if err != nil {
		return fmt.Errorf("ошибка загрузки политик стадии: %w", err)
	}

	for _, policy := range policies {
		if !s.policyMatches(policy, ticket) {
			continue
		}

		teamID := ticket.TeamID
		if teamID == nil {
			teamID = policy.TeamID
		}

		due := rc.Now.Add(time.Duration(policy.WaitDays+policy.DueDays) * 24 * time.Hour)
		id, created, err := s.followUpRepository.CreatePending(ctx, entities.FollowUpEvent{
			TicketID:       ticket.ID,
			PolicyID:       policy.ID,
			TeamID:         teamID,
			AssignedUserID: policy.AssigneeID,
			ActivityType:   policy.ActivityType,
			DueDate:        due,
			CreatedDate:    rc.Now,
		})
		if err != nil {
			return fmt.Errorf("ошибка создания события политики %d: %w", policy.ID, err)
		}
		if !created {
			continue // pending для этой пары уже существует
		}

		if policy.NoteTemplate != "" {
			if err := s.ticketRepository.AppendInternalNote(ctx, ticket.ID, policy.NoteTemplate, rc.Now); err != nil {
				s.logger.Warn("не удалось добавить заметку политики", zap.Error(err))
			}
		}
		s.logger.Info("follow-up создан",
			zap.Uint64("event_id", id),
			zap.Uint64("ticket_id", ticket.ID),
			zap.Uint64("policy_id", policy.ID))
	}
	return nil
}

// policyMatches: команда политики пуста либо совпадает, теги пусты либо
// пересекаются с тегом тикета, дополнительный фильтр пуст либо истинен.
// Ошибка разбора/вычисления фильтра трактуется пермиссивно.
func (s *FollowUpService) policyMatches(policy entities.Policy, ticket *entities.Ticket) bool {
	if policy.TeamID != nil {
		if ticket.TeamID == nil || *ticket.TeamID != *policy.TeamID {
			return false
		}
	}

	if len(policy.TagIDs) > 0 {
		if ticket.ChannelTagID == nil {
			return false
		}
		found := false
		for _, tagID := range policy.TagIDs {
			if tagID == *ticket.ChannelTagID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if policy.ExtraFilter == "" {
		return true
	}
	node, err := filter.Parse(policy.ExtraFilter)
	if err != nil {
		s.logger.Warn("не удалось разобрать фильтр политики, пропускаем фильтр",
			zap.Uint64("policy_id", policy.ID), zap.Error(err))
		return true
	}
	ok, err := filter.Eval(node, ticketEnv(ticket))
	if err != nil {
		s.logger.Warn("ошибка вычисления фильтра политики, пропускаем фильтр",
			zap.Uint64("policy_id", policy.ID), zap.Error(err))
		return true
	}
	return ok
}

// ticketEnv — белый список полей тикета, доступных фильтрам.
func ticketEnv(ticket *entities.Ticket) filter.Env {
	env := filter.Env{
		"priority": ticket.Priority,
		"stage_id": ticket.StageID,
		"title":    ticket.Title,
	}
	if ticket.TeamID != nil {
		env["team_id"] = *ticket.TeamID
	}
	if ticket.ChannelTagID != nil {
		env["channel_tag_id"] = *ticket.ChannelTagID
	}
	return env
}

// SweepEscalations переводит просроченные pending-события в escalated,
// когда просрочка превысила порог политики.
func (s *FollowUpService) SweepEscalations(ctx context.Context, now time.Time) error {
	overdue, err := s.followUpRepository.FindOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("ошибка выборки просроченных событий: %w", err)
	}

	for _, event := range overdue {
		policy, err := s.policyRepository.FindPolicy(ctx, event.PolicyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("ошибка загрузки политики %d: %w", event.PolicyID, err)
		}
		if !policy.EscalationEnabled {
			continue
		}

		threshold := event.DueDate.Add(time.Duration(policy.EscalationAfterOverdueDays) * 24 * time.Hour)
		if now.Before(threshold) {
			continue
		}

		// Эскалация — отдельная активность на эскалационном исполнителе
		// политики; без него событие остаётся на прежнем.
		if err := s.followUpRepository.MarkEscalated(ctx, event.ID, now,
			policy.EscalationAssigneeID, policy.EscalationActivityType); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("ошибка эскалации события %d: %w", event.ID, err)
		}
		if policy.EscalationNoteTemplate != "" {
			if err := s.ticketRepository.AppendInternalNote(ctx, event.TicketID, policy.EscalationNoteTemplate, now); err != nil {
				s.logger.Warn("не удалось добавить заметку эскалации", zap.Error(err))
			}
		}
		s.logger.Info("follow-up эскалирован",
			zap.Uint64("event_id", event.ID),
			zap.Uint64("ticket_id", event.TicketID),
			zap.Uint64p("escalation_assignee_id", policy.EscalationAssigneeID))
	}
	return nil
}
