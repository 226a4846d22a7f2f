package services

import (
	"context"
	"errors"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.TokenPairDTO, error)
}

type AuthService struct {
	userRepository repositories.UserRepositoryInterface
	jwtService     service.JWTService
	logger         *zap.Logger
}

func NewAuthService(
	userRepository repositories.UserRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepository: userRepository,
		jwtService:     jwtService,
		logger:         logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	user, err := s.userRepository.FindByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Warn("неуспешная попытка входа", zap.String("email", payload.Email))
		return nil, apperrors.ErrInvalidCredentials
	}

	access, refresh, err := s.jwtService.GenerateTokens(int(user.ID))
	if err != nil {
		s.logger.Error("не удалось выпустить токены", zap.Error(err))
		return nil, err
	}
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil || !claims.IsRefreshToken {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepository.FindUser(ctx, uint64(claims.UserID))
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	access, refresh, err := s.jwtService.GenerateTokens(int(user.ID))
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}
