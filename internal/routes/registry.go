package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/controllers"
	"metrology-portal/internal/services"
)

func runRegistryRouter(
	secureGroup *echo.Group,
	registryService services.RegistryServiceInterface,
	logger *zap.Logger,
) {
	registryCtrl := controllers.NewRegistryController(registryService, logger)

	secureGroup.GET("/registry/search", registryCtrl.Search)
}
