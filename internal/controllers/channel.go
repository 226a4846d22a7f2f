package controllers

import (
	"net/http"
	"strconv"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/services"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ChannelController struct {
	channelService services.ChannelServiceInterface
	logger         *zap.Logger
}

func NewChannelController(channelService services.ChannelServiceInterface, logger *zap.Logger) *ChannelController {
	return &ChannelController{channelService: channelService, logger: logger}
}

func (c *ChannelController) GetChannels(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit := utils.ParsePagination(ctx)

	channels, total, err := c.channelService.GetChannels(reqCtx, uint64(limit), uint64((page-1)*limit))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, channels, "Список каналов успешно получен", http.StatusOK, total)
}

func (c *ChannelController) FindChannel(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	channel, err := c.channelService.FindChannel(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, channel, "Канал успешно найден", http.StatusOK)
}

func (c *ChannelController) CreateChannel(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateChannelDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	channel, err := c.channelService.CreateChannel(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, channel, "Канал успешно создан", http.StatusCreated)
}

func (c *ChannelController) UpdateChannel(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateChannelDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.channelService.UpdateChannel(reqCtx, id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Канал успешно обновлён", http.StatusOK)
}

func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID", err,
			map[string]interface{}{"param": ctx.Param("id")})
	}
	return id, nil
}
