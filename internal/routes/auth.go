package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/controllers"
	"metrology-portal/internal/services"
)

func runAuthRouter(
	api *echo.Group,
	secureGroup *echo.Group,
	authService services.AuthServiceInterface,
	logger *zap.Logger,
) {
	authController := controllers.NewAuthController(authService, logger)

	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.POST("/auth/refresh", authController.Refresh)
	secureGroup.GET("/auth/me", authController.Me)
}
