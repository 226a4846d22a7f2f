package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runChannelRouter(g *echo.Group, channelService services.ChannelServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewChannelController(channelService, logger)

	g.GET("/channels", ctrl.GetChannels)
	g.GET("/channels/:id", ctrl.FindChannel)
	g.POST("/channels", ctrl.CreateChannel)
	g.PUT("/channels/:id", ctrl.UpdateChannel)
}
