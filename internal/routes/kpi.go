package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runKPIRouter(g *echo.Group, kpiService services.KPIServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewKPIController(kpiService, logger)

	g.GET("/kpi/dashboard", ctrl.GetDashboard)
	g.GET("/kpi/summary", ctrl.GetSummary)
	g.GET("/kpi/report", ctrl.GetReport)
}
