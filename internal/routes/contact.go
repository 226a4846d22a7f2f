package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runContactRouter(g *echo.Group, contactService services.ContactServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewContactController(contactService, logger)

	g.GET("/contacts", ctrl.GetContacts)
	g.GET("/contacts/:id", ctrl.FindContact)
	g.PUT("/contacts/:id", ctrl.UpdateContact)
}
