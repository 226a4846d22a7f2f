package controllers

import (
	"net/http"

	"line-helpdesk/internal/services"
	"line-helpdesk/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type EventLogController struct {
	eventLogService services.EventLogServiceInterface
	logger          *zap.Logger
}

func NewEventLogController(eventLogService services.EventLogServiceInterface, logger *zap.Logger) *EventLogController {
	return &EventLogController{eventLogService: eventLogService, logger: logger}
}

func (c *EventLogController) GetEventLogs(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit := utils.ParsePagination(ctx)

	logs, total, err := c.eventLogService.GetEventLogs(reqCtx, uint64(limit), uint64((page-1)*limit))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, logs, "Журнал событий успешно получен", http.StatusOK, total)
}
