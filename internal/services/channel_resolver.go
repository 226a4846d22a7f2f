package services

import (
	"context"
	"fmt"

	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/utils"

	"go.uber.org/zap"
)

type ChannelResolverInterface interface {
	ResolveBySignature(ctx context.Context, body []byte, signature string) (*entities.Channel, error)
}

// ChannelResolver подбирает канал по подписи запроса: перебираются активные
// каналы с непустым секретом, затем глобальный секрет из настроек.
type ChannelResolver struct {
	channelRepository repositories.ChannelRepositoryInterface
	settings          SettingsServiceInterface
	logger            *zap.Logger
}

func NewChannelResolver(
	channelRepository repositories.ChannelRepositoryInterface,
	settings SettingsServiceInterface,
	logger *zap.Logger,
) ChannelResolverInterface {
	return &ChannelResolver{
		channelRepository: channelRepository,
		settings:          settings,
		logger:            logger,
	}
}

func (s *ChannelResolver) ResolveBySignature(ctx context.Context, body []byte, signature string) (*entities.Channel, error) {
	channels, err := s.channelRepository.GetActiveChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки активных каналов: %w", err)
	}

	for i := range channels {
		if utils.VerifySignature(channels[i].Secret, body, signature) {
			return &channels[i], nil
		}
	}

	// Глобальный секрет принимает трафик без привязки к каналу;
	// дефолты маршрутизации берутся из настроек.
	if utils.VerifySignature(s.settings.GlobalSecret(ctx), body, signature) {
		return &entities.Channel{
			Name:           "global",
			Active:         true,
			AccessToken:    s.settings.GlobalAccessToken(ctx),
			DefaultTeamID:  s.settings.DefaultTeamID(ctx),
			DefaultStageID: s.settings.DefaultStageID(ctx),
			CreateTicket:   s.settings.DefaultCreateTicket(ctx),
			MatchMode:      s.settings.DefaultMatchMode(ctx),
		}, nil
	}

	return nil, apperrors.ErrSignatureInvalid
}
