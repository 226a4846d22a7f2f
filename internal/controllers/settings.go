package controllers

import (
	"net/http"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/services"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SettingsController struct {
	settingsService services.SettingsServiceInterface
	logger          *zap.Logger
}

func NewSettingsController(settingsService services.SettingsServiceInterface, logger *zap.Logger) *SettingsController {
	return &SettingsController{settingsService: settingsService, logger: logger}
}

func (c *SettingsController) GetSettings(ctx echo.Context) error {
	settings, err := c.settingsService.All(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, settings, "Настройки успешно получены", http.StatusOK)
}

func (c *SettingsController) UpdateSetting(ctx echo.Context) error {
	key := ctx.Param("key")
	if !services.KnownSettingKey(key) {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusUnprocessableEntity, "неизвестный ключ настройки", nil,
				map[string]interface{}{"key": key}), c.logger)
	}

	var payload dto.UpdateSettingDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}

	if err := c.settingsService.Set(ctx.Request().Context(), key, payload.Value); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Настройка успешно обновлена", http.StatusOK)
}
