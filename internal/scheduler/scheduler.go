package scheduler

import (
	"context"
	"time"

	"metrology-portal/internal/services"
	"metrology-portal/pkg/config"

	"go.uber.org/zap"
)

// Scheduler — встроенный планировщик диспетчера напоминаний: прогон
// через StartupDelay после старта, дальше раз в Interval. Без блокировок
// и персистентности: при нескольких экземплярах сервиса письма могут
// дублироваться, внешний крон-триггер тогда предпочтительнее.
type Scheduler struct {
	notifier services.NotifierServiceInterface
	cfg      config.NotifyConfig
	logger   *zap.Logger
}

func New(notifier services.NotifierServiceInterface, cfg config.NotifyConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start блокируется до отмены контекста; запускать в отдельной горутине.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Планировщик напоминаний запущен",
		zap.Duration("startupDelay", s.cfg.StartupDelay),
		zap.Duration("interval", s.cfg.Interval),
	)

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.cfg.StartupDelay):
	}
	s.runOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Планировщик напоминаний остановлен")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce: ошибку прогона вернуть некому, только логируем.
func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.notifier.RunDispatch(ctx)
	if err != nil {
		s.logger.Error("Плановый прогон диспетчера напоминаний не удался", zap.Error(err))
		return
	}
	s.logger.Info("Плановый прогон диспетчера напоминаний выполнен",
		zap.Int("sent", result.Sent),
		zap.Int("equipmentNotified", result.EquipmentNotified),
	)
}
