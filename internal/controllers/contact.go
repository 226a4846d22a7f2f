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

type ContactController struct {
	contactService services.ContactServiceInterface
	logger         *zap.Logger
}

func NewContactController(contactService services.ContactServiceInterface, logger *zap.Logger) *ContactController {
	return &ContactController{contactService: contactService, logger: logger}
}

func (c *ContactController) GetContacts(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit := utils.ParsePagination(ctx)

	contacts, total, err := c.contactService.GetContacts(reqCtx, uint64(limit), uint64((page-1)*limit))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, contacts, "Список контактов успешно получен", http.StatusOK, total)
}

func (c *ContactController) FindContact(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	contact, err := c.contactService.FindContact(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, contact, "Контакт успешно найден", http.StatusOK)
}

func (c *ContactController) UpdateContact(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateContactDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.contactService.UpdateContact(reqCtx, id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Контакт успешно обновлен", http.StatusOK)
}
