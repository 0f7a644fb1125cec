package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/controllers"
	"metrology-portal/internal/services"
	"metrology-portal/pkg/config"
)

func runNotificationRouter(
	api *echo.Group,
	notifier services.NotifierServiceInterface,
	notifyCfg config.NotifyConfig,
	logger *zap.Logger,
) {
	notificationCtrl := controllers.NewNotificationController(notifier, notifyCfg, logger)

	// Защита секретом внутри контроллера, JWT здесь не используется:
	// эндпоинт дергает системный крон, а не пользователь.
	api.POST("/notifications/cron", notificationCtrl.RunCron)
}
