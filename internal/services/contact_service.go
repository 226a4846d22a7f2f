package services

import (
	"context"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"

	"go.uber.org/zap"
)

type ContactServiceInterface interface {
	GetContacts(ctx context.Context, limit, offset uint64) ([]entities.Contact, uint64, error)
	FindContact(ctx context.Context, id uint64) (*entities.Contact, error)
	UpdateContact(ctx context.Context, id uint64, payload dto.UpdateContactDTO) error
}

type ContactService struct {
	contactRepository repositories.ContactRepositoryInterface
	logger            *zap.Logger
}

func NewContactService(
	contactRepository repositories.ContactRepositoryInterface,
	logger *zap.Logger,
) ContactServiceInterface {
	return &ContactService{contactRepository: contactRepository, logger: logger}
}

func (s *ContactService) GetContacts(ctx context.Context, limit, offset uint64) ([]entities.Contact, uint64, error) {
	return s.contactRepository.GetContacts(ctx, limit, offset)
}

func (s *ContactService) FindContact(ctx context.Context, id uint64) (*entities.Contact, error) {
	return s.contactRepository.FindContact(ctx, id)
}

func (s *ContactService) UpdateContact(ctx context.Context, id uint64, payload dto.UpdateContactDTO) error {
	if err := s.contactRepository.UpdateContact(ctx, id, payload); err != nil {
		s.logger.Error("ошибка обновления контакта", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("контакт обновлен", zap.Uint64("id", id))
	return nil
}
