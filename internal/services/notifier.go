package services

import (
	"context"
	"sort"
	"time"

	"metrology-portal/internal/entities"
	"metrology-portal/internal/repositories"
	"metrology-portal/pkg/mailer"
	"metrology-portal/pkg/telegram"

	"go.uber.org/zap"
)

// DispatchResult — итог одного прогона диспетчера напоминаний.
type DispatchResult struct {
	Sent              int `json:"sent"`
	EquipmentNotified int `json:"equipmentNotified"`
}

type NotifierServiceInterface interface {
	// RunDispatch выполняет один прогон: выборка due-soon, группировка по
	// владельцам, отправка писем, пометка notified. Ошибка возвращается
	// только если упала сама выборка; сбои отправки отдельным пользователям
	// изолируются и логируются.
	RunDispatch(ctx context.Context) (DispatchResult, error)
}

type NotifierService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	mailer        mailer.MailerInterface
	telegramSvc   telegram.ServiceInterface
	lookaheadDays int
	logger        *zap.Logger
}

func NewNotifierService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	mailerSvc mailer.MailerInterface,
	telegramSvc telegram.ServiceInterface,
	lookaheadDays int,
	logger *zap.Logger,
) NotifierServiceInterface {
	return &NotifierService{
		equipmentRepo: equipmentRepo,
		userRepo:      userRepo,
		mailer:        mailerSvc,
		telegramSvc:   telegramSvc,
		lookaheadDays: lookaheadDays,
		logger:        logger,
	}
}

func (s *NotifierService) RunDispatch(ctx context.Context) (DispatchResult, error) {
	var result DispatchResult

	now := time.Now()
	to := now.AddDate(0, 0, s.lookaheadDays)

	// Хранимому status не доверяем: он пересчитывается только при записи.
	// Отбор идёт напрямую по next_verification и notified.
	dueSoon, err := s.equipmentRepo.FindDueSoon(ctx, now, to)
	if err != nil {
		s.logger.Error("Диспетчер: не удалось выбрать оборудование с приближающейся поверкой", zap.Error(err))
		return result, err
	}
	if len(dueSoon) == 0 {
		s.logger.Info("Диспетчер: оборудования с приближающейся поверкой нет")
		return result, nil
	}

	groups := make(map[uint64][]entities.Equipment)
	for _, item := range dueSoon {
		groups[item.UserID] = append(groups[item.UserID], item)
	}

	ownerIDs := make([]uint64, 0, len(groups))
	for id := range groups {
		ownerIDs = append(ownerIDs, id)
	}

	owners, err := s.userRepo.FindUsersByIDs(ctx, ownerIDs)
	if err != nil {
		s.logger.Error("Диспетчер: не удалось получить владельцев оборудования", zap.Error(err))
		return result, err
	}

	// Порядок обхода групп фиксируем только ради детерминированных логов;
	// корректность группировки от порядка не зависит.
	sort.Slice(ownerIDs, func(i, j int) bool { return ownerIDs[i] < ownerIDs[j] })

	for _, ownerID := range ownerIDs {
		items := groups[ownerID]

		owner, ok := owners[ownerID]
		if !ok {
			s.logger.Warn("Диспетчер: владелец оборудования не найден, группа пропущена",
				zap.Uint64("userID", ownerID), zap.Int("items", len(items)))
			continue
		}

		payload := buildReminderPayload(&owner, items)

		if err := s.mailer.SendVerificationReminder(ctx, payload); err != nil {
			// Сбой одной группы не прерывает остальные: строки остаются
			// непомеченными и будут выбраны на следующем прогоне.
			s.logger.Error("Диспетчер: не удалось отправить письмо-напоминание",
				zap.Uint64("userID", ownerID), zap.String("email", payload.Email), zap.Error(err))
			continue
		}

		// Дублируем напоминание в Telegram, если у пользователя привязан чат.
		// Сбой Telegram письмо не отменяет и пометку не блокирует.
		if s.telegramSvc != nil && owner.TelegramChatID.Valid && owner.TelegramChatID.Int64 != 0 {
			if err := s.telegramSvc.SendMessage(ctx, owner.TelegramChatID.Int64, formatTelegramReminder(items)); err != nil {
				s.logger.Warn("Диспетчер: не удалось продублировать напоминание в Telegram",
					zap.Uint64("userID", ownerID), zap.Error(err))
			}
		}

		ids := make([]uint64, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}

		// Пометка после успешной отправки: при падении между отправкой и
		// пометкой следующий прогон пошлёт письмо повторно (at-least-once).
		if err := s.equipmentRepo.MarkNotified(ctx, ids); err != nil {
			s.logger.Error("Диспетчер: письмо отправлено, но не удалось пометить оборудование",
				zap.Uint64("userID", ownerID), zap.Uint64s("ids", ids), zap.Error(err))
			continue
		}

		result.Sent++
		result.EquipmentNotified += len(ids)
	}

	s.logger.Info("Диспетчер: прогон завершен",
		zap.Int("sent", result.Sent),
		zap.Int("equipmentNotified", result.EquipmentNotified),
		zap.Int("dueSoonTotal", len(dueSoon)),
	)

	return result, nil
}

// buildReminderPayload собирает письмо для одной группы. Адрес доставки —
// контактный email первой позиции, если он задан, иначе email аккаунта.
func buildReminderPayload(owner *entities.User, items []entities.Equipment) mailer.ReminderPayload {
	email := owner.Email
	if items[0].ContactEmail.Valid && items[0].ContactEmail.String != "" {
		email = items[0].ContactEmail.String
	}

	lines := make([]mailer.EquipmentLine, 0, len(items))
	for _, item := range items {
		line := mailer.EquipmentLine{
			Name:           item.Name,
			Type:           item.Type.String,
			SerialNumber:   item.SerialNumber.String,
			RegistryNumber: item.RegistryNumber.String,
			Category:       item.Category,
		}
		if item.NextVerification.Valid {
			line.NextVerification = item.NextVerification.Time.Format(dateLayout)
		}
		lines = append(lines, line)
	}

	return mailer.ReminderPayload{
		UserName:  owner.Fio,
		Email:     email,
		Equipment: lines,
	}
}

func formatTelegramReminder(items []entities.Equipment) string {
	msg := "Приближается срок поверки оборудования:\n"
	for _, item := range items {
		msg += "• " + item.Name
		if item.NextVerification.Valid {
			msg += " — " + item.NextVerification.Time.Format("02.01.2006")
		}
		msg += "\n"
	}
	return msg
}
