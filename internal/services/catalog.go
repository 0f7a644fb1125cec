package services

import (
	"context"

	"metrology-portal/internal/dto"
	"metrology-portal/internal/entities"
	"metrology-portal/internal/repositories"
	"metrology-portal/pkg/types"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

type CatalogServiceInterface interface {
	GetServices(ctx context.Context, filter types.Filter) ([]dto.ServiceDTO, uint64, error)
	FindService(ctx context.Context, id uint64) (*dto.ServiceDTO, error)
	CreateService(ctx context.Context, payload dto.CreateServiceDTO) (*dto.ServiceDTO, error)
	UpdateService(ctx context.Context, id uint64, payload dto.UpdateServiceDTO) (*dto.ServiceDTO, error)
	DeleteService(ctx context.Context, id uint64) error
}

type CatalogService struct {
	serviceRepo repositories.ServiceRepositoryInterface
	logger      *zap.Logger
}

func NewCatalogService(serviceRepo repositories.ServiceRepositoryInterface, logger *zap.Logger) CatalogServiceInterface {
	return &CatalogService{serviceRepo: serviceRepo, logger: logger}
}

func (s *CatalogService) GetServices(ctx context.Context, filter types.Filter) ([]dto.ServiceDTO, uint64, error) {
	list, total, err := s.serviceRepo.GetServices(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.ServiceDTO, 0, len(list))
	for i := range list {
		result = append(result, serviceToDTO(&list[i]))
	}
	return result, total, nil
}

func (s *CatalogService) FindService(ctx context.Context, id uint64) (*dto.ServiceDTO, error) {
	svc, err := s.serviceRepo.FindService(ctx, id)
	if err != nil {
		return nil, err
	}
	result := serviceToDTO(svc)
	return &result, nil
}

func (s *CatalogService) CreateService(ctx context.Context, payload dto.CreateServiceDTO) (*dto.ServiceDTO, error) {
	svc := &entities.Service{
		Name:        payload.Name,
		Description: null.StringFromPtr(payload.Description),
		Category:    payload.Category,
		Price:       payload.Price,
		Unit:        null.StringFromPtr(payload.Unit),
		IsActive:    true,
	}

	id, err := s.serviceRepo.CreateService(ctx, svc)
	if err != nil {
		s.logger.Error("Ошибка при создании услуги", zap.Error(err))
		return nil, err
	}
	svc.ID = id

	result := serviceToDTO(svc)
	return &result, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id uint64, payload dto.UpdateServiceDTO) (*dto.ServiceDTO, error) {
	svc, err := s.serviceRepo.FindService(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		svc.Name = *payload.Name
	}
	if payload.Description != nil {
		svc.Description = null.StringFrom(*payload.Description)
	}
	if payload.Category != nil {
		svc.Category = *payload.Category
	}
	if payload.Price != nil {
		svc.Price = *payload.Price
	}
	if payload.Unit != nil {
		svc.Unit = null.StringFrom(*payload.Unit)
	}
	if payload.IsActive != nil {
		svc.IsActive = *payload.IsActive
	}

	if err := s.serviceRepo.UpdateService(ctx, svc); err != nil {
		return nil, err
	}

	result := serviceToDTO(svc)
	return &result, nil
}

func (s *CatalogService) DeleteService(ctx context.Context, id uint64) error {
	return s.serviceRepo.DeleteService(ctx, id)
}

func serviceToDTO(s *entities.Service) dto.ServiceDTO {
	return dto.ServiceDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description.String,
		Category:    s.Category,
		Price:       s.Price,
		Unit:        s.Unit.String,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt.Format("2006-01-02, 15:04:05"),
		UpdatedAt:   s.UpdatedAt.Format("2006-01-02, 15:04:05"),
	}
}
