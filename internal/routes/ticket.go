package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runTicketRouter(g *echo.Group, ticketService services.TicketServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewTicketController(ticketService, logger)

	g.GET("/tickets/:id", ctrl.FindTicket)
	g.PUT("/tickets/:id/stage", ctrl.UpdateStage)
}
