package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/controllers"
	"metrology-portal/internal/services"
	"metrology-portal/pkg/middleware"
)

func runCatalogRouter(
	api *echo.Group,
	secureGroup *echo.Group,
	catalogService services.CatalogServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	catalogCtrl := controllers.NewCatalogController(catalogService, logger)

	// Каталог услуг открыт без авторизации: его видит публичный сайт.
	api.GET("/services", catalogCtrl.GetServices)
	api.GET("/services/:id", catalogCtrl.FindService)

	secureGroup.POST("/services", catalogCtrl.CreateService, authMW.AdminOnly)
	secureGroup.PUT("/services/:id", catalogCtrl.UpdateService, authMW.AdminOnly)
	secureGroup.DELETE("/services/:id", catalogCtrl.DeleteService, authMW.AdminOnly)
}
