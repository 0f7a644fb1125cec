package services

import (
	"context"

	"metrology-portal/internal/dto"
	"metrology-portal/internal/repositories"

	"go.uber.org/zap"
)

type DashboardServiceInterface interface {
	GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error)
}

type DashboardService struct {
	dashboardRepo repositories.DashboardRepositoryInterface
	requestRepo   repositories.RequestRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	logger        *zap.Logger
}

func NewDashboardService(
	dashboardRepo repositories.DashboardRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

func (s *DashboardService) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	usersTotal, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	equipmentTotal, err := s.dashboardRepo.CountEquipment(ctx)
	if err != nil {
		return nil, err
	}

	equipmentByStatus, err := s.dashboardRepo.CountEquipmentByStatus(ctx)
	if err != nil {
		return nil, err
	}

	requestsByStatus, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	requestsLast30, err := s.requestRepo.CountSince(ctx, 30)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardSummaryDTO{
		UsersTotal:         usersTotal,
		EquipmentTotal:     equipmentTotal,
		EquipmentByStatus:  equipmentByStatus,
		RequestsByStatus:   requestsByStatus,
		RequestsLast30Days: requestsLast30,
	}, nil
}
