package services

import (
	"context"
	"strconv"
	"time"

	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/repositories"

	"go.uber.org/zap"
)

// Ключи настроек конвейера в таблице settings.
const (
	SettingWebhookEnabled      = "line.webhook_enabled"
	SettingWebhookPath         = "line.webhook_path"
	SettingGlobalSecret        = "line.global_secret"
	SettingGlobalAccessToken   = "line.global_access_token"
	SettingDefaultTeamID       = "line.default_team_id"
	SettingDefaultStageID      = "line.default_stage_id"
	SettingDefaultMatchMode    = "line.default_match_mode"
	SettingDefaultCreateTicket = "line.default_create_ticket"
	SettingCompletionTarget    = "kpi.completion_target"
	SettingSLAHours            = "kpi.sla_hours"
	SettingSummaryPeriodDays   = "kpi.summary_period_days"
)

// Дефолты, когда ключ не задан ни в БД, ни в кэше.
const (
	DefaultCompletionTarget  = 90.0
	DefaultSLAHours          = 2.0
	DefaultSummaryPeriodDays = 30
	DefaultWebhookPath       = "/line/webhook/otd"
)

const settingsCacheTTL = 5 * time.Minute

type SettingsServiceInterface interface {
	WebhookEnabled(ctx context.Context) bool
	WebhookPath(ctx context.Context) string
	GlobalSecret(ctx context.Context) string
	GlobalAccessToken(ctx context.Context) string
	DefaultTeamID(ctx context.Context) *uint64
	DefaultStageID(ctx context.Context) *uint64
	DefaultMatchMode(ctx context.Context) string
	DefaultCreateTicket(ctx context.Context) bool
	CompletionTarget(ctx context.Context) float64
	SLAHours(ctx context.Context) float64
	SummaryPeriodDays(ctx context.Context) int
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// Ключи, значения которых никогда не отдаются наружу.
var secretSettingKeys = map[string]bool{
	SettingGlobalSecret:      true,
	SettingGlobalAccessToken: true,
}

// KnownSettingKey ограничивает админский API справочником ключей:
// произвольные строки в settings не попадают.
func KnownSettingKey(key string) bool {
	switch key {
	case SettingWebhookEnabled, SettingWebhookPath, SettingGlobalSecret,
		SettingGlobalAccessToken, SettingDefaultTeamID, SettingDefaultStageID,
		SettingDefaultMatchMode, SettingDefaultCreateTicket,
		SettingCompletionTarget, SettingSLAHours, SettingSummaryPeriodDays:
		return true
	}
	return false
}

type SettingsService struct {
	repo   repositories.SettingsRepositoryInterface
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger
}

func NewSettingsService(
	repo repositories.SettingsRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) SettingsServiceInterface {
	return &SettingsService{repo: repo, cache: cache, logger: logger}
}

// get читает ключ сквозь Redis-кэш; любая ошибка деградирует в fallback.
func (s *SettingsService) get(ctx context.Context, key, fallback string) string {
	cacheKey := "settings:" + key
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		return cached
	}

	value, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Warn("не удалось прочитать настройку, используем дефолт",
			zap.String("key", key), zap.Error(err))
		return fallback
	}
	if !ok {
		return fallback
	}
	if err := s.cache.Set(ctx, cacheKey, value, settingsCacheTTL); err != nil {
		s.logger.Debug("не удалось закэшировать настройку", zap.String("key", key), zap.Error(err))
	}
	return value
}

// All отдаёт настройки для админского API; секретные значения маскируются.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	settings, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for key := range settings {
		if secretSettingKeys[key] && settings[key] != "" {
			settings[key] = "********"
		}
	}
	return settings, nil
}

func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	if err := s.cache.Del(ctx, "settings:"+key); err != nil {
		s.logger.Debug("не удалось сбросить кэш настройки", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (s *SettingsService) WebhookEnabled(ctx context.Context) bool {
	return s.get(ctx, SettingWebhookEnabled, "false") == "true"
}

func (s *SettingsService) WebhookPath(ctx context.Context) string {
	return s.get(ctx, SettingWebhookPath, DefaultWebhookPath)
}

func (s *SettingsService) GlobalSecret(ctx context.Context) string {
	return s.get(ctx, SettingGlobalSecret, "")
}

func (s *SettingsService) GlobalAccessToken(ctx context.Context) string {
	return s.get(ctx, SettingGlobalAccessToken, "")
}

func (s *SettingsService) DefaultTeamID(ctx context.Context) *uint64 {
	return s.getUint64Ptr(ctx, SettingDefaultTeamID)
}

func (s *SettingsService) DefaultStageID(ctx context.Context) *uint64 {
	return s.getUint64Ptr(ctx, SettingDefaultStageID)
}

func (s *SettingsService) DefaultMatchMode(ctx context.Context) string {
	return s.get(ctx, SettingDefaultMatchMode, entities.MatchModeByPhoneOrEmail)
}

func (s *SettingsService) DefaultCreateTicket(ctx context.Context) bool {
	return s.get(ctx, SettingDefaultCreateTicket, "true") == "true"
}

func (s *SettingsService) CompletionTarget(ctx context.Context) float64 {
	return s.getFloat(ctx, SettingCompletionTarget, DefaultCompletionTarget)
}

func (s *SettingsService) SLAHours(ctx context.Context) float64 {
	return s.getFloat(ctx, SettingSLAHours, DefaultSLAHours)
}

func (s *SettingsService) SummaryPeriodDays(ctx context.Context) int {
	raw := s.get(ctx, SettingSummaryPeriodDays, "")
	if raw == "" {
		return DefaultSummaryPeriodDays
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultSummaryPeriodDays
	}
	return n
}

func (s *SettingsService) getUint64Ptr(ctx context.Context, key string) *uint64 {
	raw := s.get(ctx, key, "")
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		s.logger.Warn("некорректное значение настройки", zap.String("key", key), zap.String("value", raw))
		return nil
	}
	return &n
}

func (s *SettingsService) getFloat(ctx context.Context, key string, fallback float64) float64 {
	raw := s.get(ctx, key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
