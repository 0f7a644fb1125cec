package controllers

import (
	"net/http"

	"metrology-portal/internal/services"
	"metrology-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RegistryController struct {
	registryService services.RegistryServiceInterface
	logger          *zap.Logger
}

func NewRegistryController(registryService services.RegistryServiceInterface, logger *zap.Logger) *RegistryController {
	return &RegistryController{registryService: registryService, logger: logger}
}

// Search проксирует поиск по госреестру СИ. Сбои реестра наружу не
// отдаются: клиент получает пустой список.
func (c *RegistryController) Search(ctx echo.Context) error {
	query := ctx.QueryParam("q")

	res, err := c.registryService.Search(ctx.Request().Context(), query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Поиск по госреестру выполнен", http.StatusOK)
}
