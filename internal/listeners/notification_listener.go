package listeners

import (
	"context"
	"fmt"

	"metrology-portal/internal/events"
	"metrology-portal/pkg/config"
	"metrology-portal/pkg/eventbus"
	"metrology-portal/pkg/telegram"

	"go.uber.org/zap"
)

// AdminNotificationListener пересылает админам в Telegram уведомления
// о новых заявках клиентов.
type AdminNotificationListener struct {
	telegramSvc telegram.ServiceInterface
	telegramCfg config.TelegramConfig
	logger      *zap.Logger
}

func NewAdminNotificationListener(
	telegramSvc telegram.ServiceInterface,
	telegramCfg config.TelegramConfig,
	logger *zap.Logger,
) *AdminNotificationListener {
	return &AdminNotificationListener{
		telegramSvc: telegramSvc,
		telegramCfg: telegramCfg,
		logger:      logger,
	}
}

func (l *AdminNotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe("request.created", l.handleRequestCreated)
	l.logger.Info("AdminNotificationListener подписан на событие 'request.created'")
}

func (l *AdminNotificationListener) handleRequestCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestCreatedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	if l.telegramCfg.AdminChatID == 0 {
		l.logger.Debug("Чат админов не настроен, уведомление о заявке пропущено",
			zap.Uint64("requestID", e.Request.ID))
		return nil
	}

	msg := fmt.Sprintf("Новая заявка №%d\nКлиент: %s (%s)", e.Request.ID, e.User.Fio, e.User.Email)
	if e.Service != nil {
		msg += fmt.Sprintf("\nУслуга: %s", e.Service.Name)
	}
	if e.Request.EquipmentName.Valid {
		msg += fmt.Sprintf("\nОборудование: %s", e.Request.EquipmentName.String)
	}
	if e.Request.Message.Valid {
		msg += fmt.Sprintf("\nКомментарий: %s", e.Request.Message.String)
	}

	if err := l.telegramSvc.SendMessage(ctx, l.telegramCfg.AdminChatID, msg); err != nil {
		return fmt.Errorf("не удалось отправить уведомление о заявке №%d: %w", e.Request.ID, err)
	}
	return nil
}
