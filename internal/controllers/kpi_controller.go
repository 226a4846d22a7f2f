package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/services"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type KPIController struct {
	kpiService services.KPIServiceInterface
	logger     *zap.Logger
}

func NewKPIController(kpiService services.KPIServiceInterface, logger *zap.Logger) *KPIController {
	return &KPIController{kpiService: kpiService, logger: logger}
}

func (c *KPIController) GetDashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	query, err := parseKPIQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rc := services.NewRequestCtx(time.Now().UTC())
	dashboard, err := c.kpiService.Dashboard(reqCtx, rc, query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dashboard, "Дашборд KPI успешно собран", http.StatusOK)
}

func (c *KPIController) GetSummary(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	summary, err := c.kpiService.Summary(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, summary, "Сводка KPI успешно получена", http.StatusOK)
}

// GetReport отдаёт дневные агрегаты; format=xlsx выгружает файл.
func (c *KPIController) GetReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	query, err := parseKPIQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rc := services.NewRequestCtx(time.Now().UTC())
	dailies, err := c.kpiService.Dailies(reqCtx, rc, query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if ctx.QueryParam("format") == "xlsx" {
		return c.respondWithXLSX(ctx, dailies)
	}
	return utils.SuccessResponse(ctx, dailies, "Отчёт KPI успешно получен", http.StatusOK)
}

var kpiReportHeaders = []interface{}{
	"Дата", "Команда", "Политика", "Пользователь",
	"Создано", "Закрыто", "Эскалаций", "Ср. время реакции, ч", "Процент закрытия",
}

func (c *KPIController) respondWithXLSX(ctx echo.Context, dailies []entities.KPIDaily) error {
	f := excelize.NewFile()
	sheet := "KPI"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &kpiReportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "I1", style)

	for i, d := range dailies {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			d.Date.Format("2006-01-02"),
			uint64OrEmpty(d.TeamID),
			uint64OrEmpty(d.PolicyID),
			uint64OrEmpty(d.AssignedUserID),
			d.CreatedCount,
			d.DoneCount,
			d.EscalationCount,
			fmt.Sprintf("%.2f", d.AvgResponseHours),
			fmt.Sprintf("%.1f%%", d.CompletionRate()),
		}
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "E", "I", 18)

	fileName := fmt.Sprintf("kpi_report_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func uint64OrEmpty(v *uint64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func parseKPIQuery(ctx echo.Context) (dto.KPIQueryDTO, error) {
	var query dto.KPIQueryDTO

	if raw := ctx.QueryParam("period_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 90 {
			return query, apperrors.NewHttpError(http.StatusBadRequest,
				"Неверный period_days", err, map[string]interface{}{"value": raw})
		}
		query.PeriodDays = n
	}

	for param, target := range map[string]**uint64{
		"team_id":   &query.TeamID,
		"policy_id": &query.PolicyID,
		"user_id":   &query.UserID,
	} {
		raw := ctx.QueryParam(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return query, apperrors.NewHttpError(http.StatusBadRequest,
				"Неверный "+param, err, map[string]interface{}{"value": raw})
		}
		*target = &id
	}
	return query, nil
}
