package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const lineSignatureHeader = "X-Line-Signature"

type LineWebhookController struct {
	webhookService services.LineWebhookServiceInterface
	channelService services.ChannelResolverInterface
	settings       services.SettingsServiceInterface
	logger         *zap.Logger
}

func NewLineWebhookController(
	webhookService services.LineWebhookServiceInterface,
	channelService services.ChannelResolverInterface,
	settings services.SettingsServiceInterface,
	logger *zap.Logger,
) *LineWebhookController {
	return &LineWebhookController{
		webhookService: webhookService,
		channelService: channelService,
		settings:       settings,
		logger:         logger,
	}
}

// Handle принимает вебхук LINE. Контракт ответов фиксированный:
// 404 — вебхук выключен, 403 — подпись не подошла ни одному каналу,
// 400 — нечитаемое тело, 200 "OK" — всё остальное, включая ошибки
// обработки отдельных событий.
func (c *LineWebhookController) Handle(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if !c.settings.WebhookEnabled(reqCtx) {
		return ctx.NoContent(http.StatusNotFound)
	}

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		c.logger.Warn("не удалось прочитать тело вебхука", zap.Error(err))
		return ctx.NoContent(http.StatusBadRequest)
	}

	signature := ctx.Request().Header.Get(lineSignatureHeader)
	channel, err := c.channelService.ResolveBySignature(reqCtx, body, signature)
	if err != nil {
		c.logger.Warn("подпись вебхука не прошла проверку",
			zap.String("remote", ctx.RealIP()))
		return ctx.NoContent(http.StatusForbidden)
	}

	var payload dto.LineWebhookDTO
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("не удалось разобрать тело вебхука", zap.Error(err))
		return ctx.NoContent(http.StatusBadRequest)
	}

	rc := services.NewRequestCtx(time.Now().UTC())
	c.webhookService.ProcessPayload(reqCtx, rc, channel, payload, body)

	return ctx.String(http.StatusOK, "OK")
}
