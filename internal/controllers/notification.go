package controllers

import (
	"crypto/subtle"
	"net/http"

	"metrology-portal/internal/services"
	"metrology-portal/pkg/config"
	apperrors "metrology-portal/pkg/errors"
	"metrology-portal/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NotificationController struct {
	notifier  services.NotifierServiceInterface
	notifyCfg config.NotifyConfig
	logger    *zap.Logger
}

func NewNotificationController(
	notifier services.NotifierServiceInterface,
	notifyCfg config.NotifyConfig,
	logger *zap.Logger,
) *NotificationController {
	return &NotificationController{
		notifier:  notifier,
		notifyCfg: notifyCfg,
		logger:    logger,
	}
}

// RunCron — внешний триггер диспетчера напоминаний для системного крона.
// Защищён секретом в заголовке x-cron-secret; проверка идёт до любых
// обращений к базе, неавторизованный вызов побочных эффектов не имеет.
func (c *NotificationController) RunCron(ctx echo.Context) error {
	if c.notifyCfg.CronSecret == "" {
		c.logger.Error("RunCron: CRON_SECRET не настроен, эндпоинт отключен")
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Крон-триггер не настроен на сервере", nil, nil),
			c.logger)
	}

	provided := ctx.Request().Header.Get("x-cron-secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(c.notifyCfg.CronSecret)) != 1 {
		c.logger.Warn("RunCron: вызов с неверным секретом")
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusUnauthorized, "Неверный секрет крон-триггера", nil, nil),
			c.logger)
	}

	result, err := c.notifier.RunDispatch(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return ctx.JSON(http.StatusOK, result)
}
