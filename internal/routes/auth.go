package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runAuthRouter(api *echo.Group, authService services.AuthServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewAuthController(authService, logger)

	api.POST("/auth/login", ctrl.Login)
	api.POST("/auth/refresh", ctrl.Refresh)
}
