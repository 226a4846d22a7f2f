package routes

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
	"line-helpdesk/pkg/config"
)

// Вебхук публичный: аутентификация — подпись запроса, не JWT.
// Путь читается из настроек один раз при старте процесса.
func runWebhookRouter(
	e *echo.Echo,
	webhookService services.LineWebhookServiceInterface,
	channelResolver services.ChannelResolverInterface,
	settingsService services.SettingsServiceInterface,
	cfg *config.Config,
	logger *zap.Logger,
) {
	ctrl := controllers.NewLineWebhookController(webhookService, channelResolver, settingsService, logger)

	path := settingsService.WebhookPath(context.Background())
	if path == "" {
		path = services.DefaultWebhookPath
	}
	e.POST(path, ctrl.Handle)
	logger.Info("вебхук LINE зарегистрирован", zap.String("path", path))
}
