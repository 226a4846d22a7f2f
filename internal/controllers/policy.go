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

type PolicyController struct {
	policyService services.PolicyServiceInterface
	logger        *zap.Logger
}

func NewPolicyController(policyService services.PolicyServiceInterface, logger *zap.Logger) *PolicyController {
	return &PolicyController{policyService: policyService, logger: logger}
}

func (c *PolicyController) GetPolicies(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	page, limit := utils.ParsePagination(ctx)

	policies, total, err := c.policyService.GetPolicies(reqCtx, uint64(limit), uint64((page-1)*limit))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, policies, "Список политик успешно получен", http.StatusOK, total)
}

func (c *PolicyController) FindPolicy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	policy, err := c.policyService.FindPolicy(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, policy, "Политика успешно найдена", http.StatusOK)
}

func (c *PolicyController) CreatePolicy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreatePolicyDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	policy, err := c.policyService.CreatePolicy(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, policy, "Политика успешно создана", http.StatusCreated)
}

func (c *PolicyController) UpdatePolicy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdatePolicyDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.policyService.UpdatePolicy(reqCtx, id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Политика успешно обновлена", http.StatusOK)
}

func (c *PolicyController) DeletePolicy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.policyService.DeletePolicy(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Политика успешно удалена", http.StatusOK)
}
