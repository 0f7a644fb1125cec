package controllers

import (
	"net/http"

	"metrology-portal/internal/services"
	"metrology-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(dashboardService services.DashboardServiceInterface, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, logger: logger}
}

func (c *DashboardController) GetSummary(ctx echo.Context) error {
	res, err := c.dashboardService.GetSummary(ctx.Request().Context())
	if err != nil {
		c.logger.Error("GetSummary: ошибка при сборе сводки", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сводка успешно получена", http.StatusOK)
}
