package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runSettingsRouter(g *echo.Group, settingsService services.SettingsServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewSettingsController(settingsService, logger)

	g.GET("/settings", ctrl.GetSettings)
	g.PUT("/settings/:key", ctrl.UpdateSetting)
}
