package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/controllers"
	"line-helpdesk/internal/services"
)

func runPolicyRouter(g *echo.Group, policyService services.PolicyServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewPolicyController(policyService, logger)

	g.GET("/policies", ctrl.GetPolicies)
	g.GET("/policies/:id", ctrl.FindPolicy)
	g.POST("/policies", ctrl.CreatePolicy)
	g.PUT("/policies/:id", ctrl.UpdatePolicy)
	g.DELETE("/policies/:id", ctrl.DeletePolicy)
}
