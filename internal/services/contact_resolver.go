package services

import (
	"context"
	"errors"
	"fmt"

	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/lineapi"
	"line-helpdesk/pkg/utils"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

// ResolveResult — итог идентификации контакта для одного события.
type ResolveResult struct {
	Contact  *entities.Contact
	Matched  bool // нашли существующий контакт
	Created  bool // завели новый контакт
	Conflict bool // у найденного контакта уже другая LINE-идентичность
}

type ContactResolverInterface interface {
	Resolve(ctx context.Context, rc RequestCtx, channel *entities.Channel, externalUserID, messageText string) (*ResolveResult, error)
}

type ContactResolver struct {
	contactRepository repositories.ContactRepositoryInterface
	lineAPI           lineapi.ServiceInterface
	settings          SettingsServiceInterface
	logger            *zap.Logger
}

func NewContactResolver(
	contactRepository repositories.ContactRepositoryInterface,
	lineAPI lineapi.ServiceInterface,
	settings SettingsServiceInterface,
	logger *zap.Logger,
) ContactResolverInterface {
	return &ContactResolver{
		contactRepository: contactRepository,
		lineAPI:           lineAPI,
		settings:          settings,
		logger:            logger,
	}
}

// Resolve ищет контакт в три шага: по LINE-идентичности, затем (если канал
// разрешает) по email/телефону из текста, иначе создаёт новый контакт.
func (s *ContactResolver) Resolve(
	ctx context.Context,
	rc RequestCtx,
	channel *entities.Channel,
	externalUserID string,
	messageText string,
) (*ResolveResult, error) {
	// Шаг 1: точное совпадение по идентичности.
	contact, err := s.contactRepository.FindByIdentity(ctx, entities.IdentitySystemLine, externalUserID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("ошибка поиска контакта по идентичности: %w", err)
	}
	if contact != nil {
		if identity, err := s.contactRepository.GetIdentity(ctx, contact.ID, entities.IdentitySystemLine); err == nil {
			if err := s.contactRepository.BumpIdentityLastSeen(ctx, identity.ID); err != nil {
				s.logger.Warn("не удалось обновить last_seen идентичности", zap.Error(err))
			}
		}
		if err := s.contactRepository.TouchMatch(ctx, contact.ID, ""); err != nil {
			s.logger.Warn("не удалось обновить контакт после совпадения", zap.Error(err))
		}
		return &ResolveResult{Contact: contact, Matched: true}, nil
	}

	// Шаг 2: поиск по реквизитам из текста, если режим канала позволяет.
	if channel.MatchMode == entities.MatchModeByPhoneOrEmail {
		email := utils.ExtractEmail(messageText)
		phones := utils.ExtractPhoneVariants(messageText)
		if email != "" || len(phones) > 0 {
			found, err := s.contactRepository.SearchByEmailOrPhones(ctx, email, phones)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("ошибка поиска контакта по реквизитам: %w", err)
			}
			if found != nil {
				return s.attachToExisting(ctx, rc, channel, found, externalUserID)
			}
		}
	}

	// Шаг 3: новый контакт.
	return s.createContact(ctx, rc, channel, externalUserID)
}

// attachToExisting привязывает LINE-идентичность к найденному контакту.
// Если у контакта уже есть другая LINE-идентичность, она не перезаписывается:
// конфликт фиксируется заметкой на контакте.
func (s *ContactResolver) attachToExisting(
	ctx context.Context,
	rc RequestCtx,
	channel *entities.Channel,
	contact *entities.Contact,
	externalUserID string,
) (*ResolveResult, error) {
	existing, err := s.contactRepository.GetIdentity(ctx, contact.ID, entities.IdentitySystemLine)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("ошибка проверки идентичности контакта: %w", err)
	}

	if existing != nil && existing.ExternalID != externalUserID {
		note := fmt.Sprintf("Конфликт LINE-идентичности: входящий userId %s, у контакта уже привязан %s",
			externalUserID, existing.ExternalID)
		if err := s.contactRepository.AddNote(ctx, contact.ID, note); err != nil {
			s.logger.Warn("не удалось записать заметку о конфликте", zap.Error(err))
		}
		return &ResolveResult{Contact: contact, Matched: true, Conflict: true}, nil
	}

	if existing == nil {
		displayName := s.fetchDisplayName(ctx, channel, externalUserID)
		if err := s.contactRepository.AttachIdentity(ctx, entities.ContactIdentity{
			ContactID:  contact.ID,
			System:     entities.IdentitySystemLine,
			ExternalID: externalUserID,
			FirstSeen:  rc.Now,
			LastSeen:   rc.Now,
		}); err != nil {
			return nil, fmt.Errorf("ошибка привязки идентичности: %w", err)
		}
		if err := s.contactRepository.TouchMatch(ctx, contact.ID, displayName); err != nil {
			s.logger.Warn("не удалось обновить контакт после привязки", zap.Error(err))
		}
	}
	return &ResolveResult{Contact: contact, Matched: true}, nil
}

func (s *ContactResolver) createContact(
	ctx context.Context,
	rc RequestCtx,
	channel *entities.Channel,
	externalUserID string,
) (*ResolveResult, error) {
	displayName := s.fetchDisplayName(ctx, channel, externalUserID)
	name := displayName
	if name == "" {
		name = entities.FallbackContactName
	}

	contact := entities.Contact{
		Name:       name,
		LastSeenAt: null.TimeFrom(rc.Now),
	}
	if displayName != "" {
		contact.DisplayName = null.StringFrom(displayName)
	}

	identity := &entities.ContactIdentity{
		System:     entities.IdentitySystemLine,
		ExternalID: externalUserID,
		FirstSeen:  rc.Now,
		LastSeen:   rc.Now,
	}

	id, err := s.contactRepository.CreateContact(ctx, contact, identity)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания контакта: %w", err)
	}
	contact.ID = id

	return &ResolveResult{Contact: &contact, Created: true}, nil
}

// fetchDisplayName спрашивает профиль у LINE; любая ошибка проглатывается,
// конвейер не должен падать из-за недоступности внешнего API.
func (s *ContactResolver) fetchDisplayName(ctx context.Context, channel *entities.Channel, externalUserID string) string {
	token := channel.AccessToken
	if token == "" {
		token = s.settings.GlobalAccessToken(ctx)
	}
	if token == "" {
		return ""
	}

	profile, err := s.lineAPI.GetProfile(ctx, externalUserID, token)
	if err != nil {
		s.logger.Debug("не удалось получить профиль LINE",
			zap.String("user_id", externalUserID), zap.Error(err))
		return ""
	}
	return profile.DisplayName
}
