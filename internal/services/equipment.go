package services

import (
	"context"
	"net/http"
	"time"

	"metrology-portal/internal/dto"
	"metrology-portal/internal/entities"
	"metrology-portal/internal/events"
	"metrology-portal/internal/repositories"
	"metrology-portal/pkg/constants"
	apperrors "metrology-portal/pkg/errors"
	"metrology-portal/pkg/eventbus"
	"metrology-portal/pkg/types"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ClassifyStatus — чистая функция классификации статуса оборудования
// по дате следующей поверки относительно "сейчас".
// Вызывается только при создании и обновлении записи; хранимое значение
// между записями может устареть, читатели не должны считать его актуальным.
func ClassifyStatus(nextVerification *time.Time, now time.Time) string {
	if nextVerification == nil {
		return constants.EquipmentStatusActive
	}
	if nextVerification.Before(now) {
		return constants.EquipmentStatusExpired
	}
	if nextVerification.Before(now.AddDate(0, 0, constants.PendingWindowDays)) {
		return constants.EquipmentStatusPending
	}
	return constants.EquipmentStatusActive
}

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context, ownerID uint64, isAdmin bool, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	FindEquipment(ctx context.Context, ownerID uint64, isAdmin bool, id uint64) (*dto.EquipmentDTO, error)
	CreateEquipment(ctx context.Context, ownerID uint64, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	UpdateEquipment(ctx context.Context, ownerID uint64, isAdmin bool, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
	DeleteEquipment(ctx context.Context, ownerID uint64, isAdmin bool, id uint64) error
}

type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		bus:           bus,
		logger:        logger,
	}
}

func (s *EquipmentService) GetEquipments(ctx context.Context, ownerID uint64, isAdmin bool, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	scopeID := ownerID
	if isAdmin {
		scopeID = 0
	}

	list, total, err := s.equipmentRepo.GetEquipments(ctx, scopeID, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.EquipmentDTO, 0, len(list))
	for i := range list {
		result = append(result, *equipmentToDTO(&list[i]))
	}
	return result, total, nil
}

func (s *EquipmentService) FindEquipment(ctx context.Context, ownerID uint64, isAdmin bool, id uint64) (*dto.EquipmentDTO, error) {
	equipment, err := s.findOwned(ctx, ownerID, isAdmin, id)
	if err != nil {
		return nil, err
	}
	return equipmentToDTO(equipment), nil
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, ownerID uint64, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	equipment := &entities.Equipment{
		UserID:         ownerID,
		Name:           payload.Name,
		Type:           null.StringFromPtr(payload.Type),
		SerialNumber:   null.StringFromPtr(payload.SerialNumber),
		RegistryNumber: null.StringFromPtr(payload.RegistryNumber),
		Category:       payload.Category,
		IntervalMonths: constants.DefaultVerificationIntervalMonths,
		Company:        null.StringFromPtr(payload.Company),
		ContactEmail:   null.StringFromPtr(payload.ContactEmail),
	}
	if equipment.Category == "" {
		equipment.Category = constants.CategoryVerification
	}
	if payload.IntervalMonths != nil {
		equipment.IntervalMonths = *payload.IntervalMonths
	}

	if payload.VerificationDate != nil {
		parsed, err := time.Parse(dateLayout, *payload.VerificationDate)
		if err != nil {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат даты поверки", err, nil)
		}
		equipment.VerificationDate = null.TimeFrom(parsed)
	}
	if payload.NextVerification != nil {
		parsed, err := time.Parse(dateLayout, *payload.NextVerification)
		if err != nil {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат даты следующей поверки", err, nil)
		}
		equipment.NextVerification = null.TimeFrom(parsed)
	} else if equipment.VerificationDate.Valid {
		// Дата следующей поверки по умолчанию — последняя поверка плюс интервал.
		equipment.NextVerification = null.TimeFrom(equipment.VerificationDate.Time.AddDate(0, equipment.IntervalMonths, 0))
	}

	equipment.Status = ClassifyStatus(equipment.NextVerification.Ptr(), time.Now())
	equipment.Notified = false

	id, err := s.equipmentRepo.CreateEquipment(ctx, equipment)
	if err != nil {
		s.logger.Error("Ошибка при создании оборудования", zap.Error(err))
		return nil, err
	}
	equipment.ID = id

	s.bus.Publish(ctx, events.NewEquipmentChangedEvent(*equipment, "created"))
	s.logger.Info("Оборудование создано", zap.Uint64("id", id), zap.String("status", equipment.Status))

	return equipmentToDTO(equipment), nil
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, ownerID uint64, isAdmin bool, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	equipment, err := s.findOwned(ctx, ownerID, isAdmin, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		equipment.Name = *payload.Name
	}
	if payload.Type != nil {
		equipment.Type = null.StringFrom(*payload.Type)
	}
	if payload.SerialNumber != nil {
		equipment.SerialNumber = null.StringFrom(*payload.SerialNumber)
	}
	if payload.RegistryNumber != nil {
		equipment.RegistryNumber = null.StringFrom(*payload.RegistryNumber)
	}
	if payload.Category != nil {
		equipment.Category = *payload.Category
	}
	if payload.IntervalMonths != nil {
		equipment.IntervalMonths = *payload.IntervalMonths
	}
	if payload.Company != nil {
		equipment.Company = null.StringFrom(*payload.Company)
	}
	if payload.ContactEmail != nil {
		equipment.ContactEmail = null.StringFrom(*payload.ContactEmail)
	}

	if payload.VerificationDate != nil {
		parsed, err := time.Parse(dateLayout, *payload.VerificationDate)
		if err != nil {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат даты поверки", err, nil)
		}
		equipment.VerificationDate = null.TimeFrom(parsed)
	}

	if payload.NextVerification != nil {
		parsed, err := time.Parse(dateLayout, *payload.NextVerification)
		if err != nil {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат даты следующей поверки", err, nil)
		}
		// Смена даты поверки открывает новое окно напоминаний.
		if !equipment.NextVerification.Valid || !equipment.NextVerification.Time.Equal(parsed) {
			equipment.Notified = false
		}
		equipment.NextVerification = null.TimeFrom(parsed)
	}

	equipment.Status = ClassifyStatus(equipment.NextVerification.Ptr(), time.Now())

	if err := s.equipmentRepo.UpdateEquipment(ctx, equipment); err != nil {
		s.logger.Error("Ошибка при обновлении оборудования", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	s.bus.Publish(ctx, events.NewEquipmentChangedEvent(*equipment, "updated"))

	return equipmentToDTO(equipment), nil
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, ownerID uint64, isAdmin bool, id uint64) error {
	equipment, err := s.findOwned(ctx, ownerID, isAdmin, id)
	if err != nil {
		return err
	}

	if err := s.equipmentRepo.DeleteEquipment(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.NewEquipmentChangedEvent(*equipment, "deleted"))
	return nil
}

func (s *EquipmentService) findOwned(ctx context.Context, ownerID uint64, isAdmin bool, id uint64) (*entities.Equipment, error) {
	equipment, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && equipment.UserID != ownerID {
		// Чужое оборудование для клиента неотличимо от несуществующего.
		return nil, apperrors.ErrNotFound
	}
	return equipment, nil
}

func equipmentToDTO(e *entities.Equipment) *dto.EquipmentDTO {
	result := &dto.EquipmentDTO{
		ID:             e.ID,
		UserID:         e.UserID,
		Name:           e.Name,
		Type:           e.Type.String,
		SerialNumber:   e.SerialNumber.String,
		RegistryNumber: e.RegistryNumber.String,
		Category:       e.Category,
		IntervalMonths: e.IntervalMonths,
		Status:         e.Status,
		Notified:       e.Notified,
		Company:        e.Company.String,
		ContactEmail:   e.ContactEmail.String,
		CreatedAt:      e.CreatedAt.Format("2006-01-02, 15:04:05"),
		UpdatedAt:      e.UpdatedAt.Format("2006-01-02, 15:04:05"),
	}
	if e.VerificationDate.Valid {
		result.VerificationDate = e.VerificationDate.Time.Format(dateLayout)
	}
	if e.NextVerification.Valid {
		result.NextVerification = e.NextVerification.Time.Format(dateLayout)
	}
	return result
}
