package services

import (
	"context"
	"time"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"

	"go.uber.org/zap"
)

type ChannelServiceInterface interface {
	GetChannels(ctx context.Context, limit, offset uint64) ([]dto.ChannelDTO, uint64, error)
	FindChannel(ctx context.Context, id uint64) (*dto.ChannelDTO, error)
	CreateChannel(ctx context.Context, payload dto.CreateChannelDTO) (*dto.ChannelDTO, error)
	UpdateChannel(ctx context.Context, id uint64, payload dto.UpdateChannelDTO) error
}

type ChannelService struct {
	channelRepository repositories.ChannelRepositoryInterface
	logger            *zap.Logger
}

func NewChannelService(
	channelRepository repositories.ChannelRepositoryInterface,
	logger *zap.Logger,
) ChannelServiceInterface {
	return &ChannelService{channelRepository: channelRepository, logger: logger}
}

func (s *ChannelService) GetChannels(ctx context.Context, limit, offset uint64) ([]dto.ChannelDTO, uint64, error) {
	channels, total, err := s.channelRepository.GetChannels(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ChannelDTO, 0, len(channels))
	for _, ch := range channels {
		out = append(out, toChannelDTO(ch))
	}
	return out, total, nil
}

func (s *ChannelService) FindChannel(ctx context.Context, id uint64) (*dto.ChannelDTO, error) {
	ch, err := s.channelRepository.FindChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toChannelDTO(*ch)
	return &out, nil
}

func (s *ChannelService) CreateChannel(ctx context.Context, payload dto.CreateChannelDTO) (*dto.ChannelDTO, error) {
	id, err := s.channelRepository.CreateChannel(ctx, payload)
	if err != nil {
		s.logger.Error("ошибка создания канала", zap.Error(err))
		return nil, err
	}
	s.logger.Info("канал создан", zap.Uint64("id", id), zap.String("name", payload.Name))
	return s.FindChannel(ctx, id)
}

func (s *ChannelService) UpdateChannel(ctx context.Context, id uint64, payload dto.UpdateChannelDTO) error {
	if err := s.channelRepository.UpdateChannel(ctx, id, payload); err != nil {
		return err
	}
	s.logger.Info("канал обновлён", zap.Uint64("id", id))
	return nil
}

func toChannelDTO(ch entities.Channel) dto.ChannelDTO {
	out := dto.ChannelDTO{
		ID:             ch.ID,
		Name:           ch.Name,
		Active:         ch.Active,
		HasSecret:      ch.Secret != "",
		DefaultTeamID:  ch.DefaultTeamID,
		DefaultStageID: ch.DefaultStageID,
		CreateTicket:   ch.CreateTicket,
		MatchMode:      ch.MatchMode,
		CreatedAt:      ch.CreatedAt.Format(time.RFC3339),
	}
	if !ch.UpdatedAt.IsZero() {
		out.UpdatedAt = ch.UpdatedAt.Format(time.RFC3339)
	}
	return out
}
