package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/controllers"
	"metrology-portal/internal/services"
	"metrology-portal/pkg/middleware"
)

func runDashboardRouter(
	secureGroup *echo.Group,
	dashboardService services.DashboardServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	dashboardCtrl := controllers.NewDashboardController(dashboardService, logger)

	secureGroup.GET("/dashboard/summary", dashboardCtrl.GetSummary, authMW.AdminOnly)
}
