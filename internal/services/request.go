package services

import (
	"context"
	"net/http"

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

type RequestServiceInterface interface {
	GetRequests(ctx context.Context, ownerID uint64, isAdmin bool, filter types.Filter) ([]dto.RequestDTO, uint64, error)
	FindRequest(ctx context.Context, ownerID uint64, isAdmin bool, id uint64) (*dto.RequestDTO, error)
	CreateRequest(ctx context.Context, ownerID uint64, payload dto.CreateRequestDTO) (*dto.RequestDTO, error)
	UpdateRequestStatus(ctx context.Context, id uint64, status string) (*dto.RequestDTO, error)
}

type RequestService struct {
	requestRepo repositories.RequestRepositoryInterface
	serviceRepo repositories.ServiceRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewRequestService(
	requestRepo repositories.RequestRepositoryInterface,
	serviceRepo repositories.ServiceRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		requestRepo: requestRepo,
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		bus:         bus,
		logger:      logger,
	}
}

func (s *RequestService) GetRequests(ctx context.Context, ownerID uint64, isAdmin bool, filter types.Filter) ([]dto.RequestDTO, uint64, error) {
	scopeID := ownerID
	if isAdmin {
		scopeID = 0
	}

	list, total, err := s.requestRepo.GetRequests(ctx, scopeID, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.RequestDTO, 0, len(list))
	for i := range list {
		item, err := s.requestToDTO(ctx, &list[i])
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *item)
	}
	return result, total, nil
}

func (s *RequestService) FindRequest(ctx context.Context, ownerID uint64, isAdmin bool, id uint64) (*dto.RequestDTO, error) {
	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && request.UserID != ownerID {
		return nil, apperrors.ErrNotFound
	}
	return s.requestToDTO(ctx, request)
}

func (s *RequestService) CreateRequest(ctx context.Context, ownerID uint64, payload dto.CreateRequestDTO) (*dto.RequestDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var svc *entities.Service
	if payload.ServiceID != nil {
		svc, err = s.serviceRepo.FindService(ctx, uint64(*payload.ServiceID))
		if err != nil {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, "Указанная услуга не найдена", err, nil)
		}
	}

	request := &entities.Request{
		UserID:        ownerID,
		ServiceID:     null.Int64FromPtr(payload.ServiceID),
		EquipmentName: null.StringFromPtr(payload.EquipmentName),
		Message:       null.StringFromPtr(payload.Message),
		Status:        constants.RequestStatusNew,
	}

	id, err := s.requestRepo.CreateRequest(ctx, request)
	if err != nil {
		s.logger.Error("Ошибка при создании заявки", zap.Error(err))
		return nil, err
	}
	request.ID = id

	// Админы узнают о новой заявке через слушателя события.
	s.bus.Publish(ctx, events.NewRequestCreatedEvent(*request, *user, svc))
	s.logger.Info("Создана заявка", zap.Uint64("id", id), zap.Uint64("userID", ownerID))

	return s.requestToDTO(ctx, request)
}

func (s *RequestService) UpdateRequestStatus(ctx context.Context, id uint64, status string) (*dto.RequestDTO, error) {
	if !constants.IsValidRequestStatus(status) {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Недопустимый статус заявки", nil, nil)
	}

	if err := s.requestRepo.UpdateRequestStatus(ctx, id, status); err != nil {
		return nil, err
	}

	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.requestToDTO(ctx, request)
}

func (s *RequestService) requestToDTO(ctx context.Context, req *entities.Request) (*dto.RequestDTO, error) {
	result := &dto.RequestDTO{
		ID:            req.ID,
		ServiceID:     req.ServiceID.Int64,
		EquipmentName: req.EquipmentName.String,
		Message:       req.Message.String,
		Status:        req.Status,
		CreatedAt:     req.CreatedAt.Format("2006-01-02, 15:04:05"),
		UpdatedAt:     req.UpdatedAt.Format("2006-01-02, 15:04:05"),
	}

	user, err := s.userRepo.FindUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	result.User = dto.ShortUserDTO{ID: user.ID, Fio: user.Fio, Email: user.Email}

	if req.ServiceID.Valid {
		if svc, err := s.serviceRepo.FindService(ctx, uint64(req.ServiceID.Int64)); err == nil {
			result.ServiceName = svc.Name
		}
	}
	return result, nil
}
