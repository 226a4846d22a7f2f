package services

import (
	"context"
	"encoding/json"
	"fmt"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/filter"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"

	"go.uber.org/zap"
)

type PolicyServiceInterface interface {
	GetPolicies(ctx context.Context, limit, offset uint64) ([]entities.Policy, uint64, error)
	FindPolicy(ctx context.Context, id uint64) (*entities.Policy, error)
	CreatePolicy(ctx context.Context, payload dto.CreatePolicyDTO) (*entities.Policy, error)
	UpdatePolicy(ctx context.Context, id uint64, payload dto.UpdatePolicyDTO) error
	DeletePolicy(ctx context.Context, id uint64) error
}

type PolicyService struct {
	policyRepository repositories.PolicyRepositoryInterface
	logger           *zap.Logger
}

func NewPolicyService(
	policyRepository repositories.PolicyRepositoryInterface,
	logger *zap.Logger,
) PolicyServiceInterface {
	return &PolicyService{policyRepository: policyRepository, logger: logger}
}

func (s *PolicyService) GetPolicies(ctx context.Context, limit, offset uint64) ([]entities.Policy, uint64, error) {
	return s.policyRepository.GetPolicies(ctx, limit, offset)
}

func (s *PolicyService) FindPolicy(ctx context.Context, id uint64) (*entities.Policy, error) {
	return s.policyRepository.FindPolicy(ctx, id)
}

func (s *PolicyService) CreatePolicy(ctx context.Context, payload dto.CreatePolicyDTO) (*entities.Policy, error) {
	normalized, err := normalizeExtraFilter(payload.ExtraFilter)
	if err != nil {
		return nil, err
	}
	payload.ExtraFilter = normalized
	id, err := s.policyRepository.CreatePolicy(ctx, payload)
	if err != nil {
		s.logger.Error("ошибка создания политики", zap.Error(err))
		return nil, err
	}
	s.logger.Info("политика создана", zap.Uint64("id", id), zap.String("name", payload.Name))
	return s.policyRepository.FindPolicy(ctx, id)
}

func (s *PolicyService) UpdatePolicy(ctx context.Context, id uint64, payload dto.UpdatePolicyDTO) error {
	if payload.ExtraFilter != nil {
		normalized, err := normalizeExtraFilter(*payload.ExtraFilter)
		if err != nil {
			return err
		}
		payload.ExtraFilter = &normalized
	}
	if err := s.policyRepository.UpdatePolicy(ctx, id, payload); err != nil {
		return err
	}
	s.logger.Info("политика обновлена", zap.Uint64("id", id))
	return nil
}

func (s *PolicyService) DeletePolicy(ctx context.Context, id uint64) error {
	return s.policyRepository.DeletePolicy(ctx, id)
}

// Фильтр проверяется на входе в API: движок позже трактует битый фильтр
// пермиссивно, поэтому единственный шанс отклонить мусор — здесь.
// Унаследованный строковый формат ("priority >= 2 AND team_id = 3")
// принимается и нормализуется в AST перед сохранением.
func normalizeExtraFilter(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if _, err := filter.Parse(raw); err == nil {
		return raw, nil
	}

	node, err := filter.ParseLegacy(raw)
	if err != nil {
		return "", apperrors.NewHttpError(422, fmt.Sprintf("некорректный фильтр политики: %v", err), err, nil)
	}
	converted, err := json.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации фильтра: %w", err)
	}
	return string(converted), nil
}
