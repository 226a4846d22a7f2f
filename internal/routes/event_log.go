package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runEventLogRouter(g *echo.Group, eventLogService services.EventLogServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewEventLogController(eventLogService, logger)

	g.GET("/event-logs", ctrl.GetEventLogs)
}
