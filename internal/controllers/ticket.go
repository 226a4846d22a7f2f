package controllers

import (
	"net/http"
	"time"

	"line-helpdesk/internal/services"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TicketController struct {
	ticketService services.TicketServiceInterface
	logger        *zap.Logger
}

func NewTicketController(ticketService services.TicketServiceInterface, logger *zap.Logger) *TicketController {
	return &TicketController{ticketService: ticketService, logger: logger}
}

func (c *TicketController) FindTicket(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ticket, err := c.ticketService.FindTicket(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ticket, "Тикет успешно найден", http.StatusOK)
}

type updateStagePayload struct {
	StageID uint64 `json:"stage_id" validate:"required"`
}

func (c *TicketController) UpdateStage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload updateStagePayload
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rc := services.NewRequestCtx(time.Now().UTC())
	ticket, err := c.ticketService.UpdateStage(reqCtx, rc, id, payload.StageID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, ticket, "Стадия тикета успешно изменена", http.StatusOK)
}
