package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/controllers"
	"metrology-portal/internal/services"
	"metrology-portal/pkg/middleware"
)

func runRequestRouter(
	secureGroup *echo.Group,
	requestService services.RequestServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	requestCtrl := controllers.NewRequestController(requestService, logger)

	secureGroup.GET("/requests", requestCtrl.GetRequests)
	secureGroup.GET("/requests/:id", requestCtrl.FindRequest)
	secureGroup.POST("/requests", requestCtrl.CreateRequest)
	secureGroup.PUT("/requests/:id", requestCtrl.UpdateRequestStatus, authMW.AdminOnly)
}
