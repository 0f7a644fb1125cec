package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"metrology-portal/internal/entities"
	apperrors "metrology-portal/pkg/errors"
	"metrology-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceTable = "services"
const serviceFields = "id, name, description, category, price, unit, is_active, created_at, updated_at"

var serviceAllowedFilterFields = map[string]string{
	"category":  "category",
	"is_active": "is_active",
}

type ServiceRepositoryInterface interface {
	GetServices(ctx context.Context, filter types.Filter) ([]entities.Service, uint64, error)
	FindService(ctx context.Context, id uint64) (*entities.Service, error)
	CreateService(ctx context.Context, service *entities.Service) (uint64, error)
	UpdateService(ctx context.Context, service *entities.Service) error
	DeleteService(ctx context.Context, id uint64) error
}

type ServiceRepository struct {
	storage *pgxpool.Pool
}

func NewServiceRepository(storage *pgxpool.Pool) ServiceRepositoryInterface {
	return &ServiceRepository{storage: storage}
}

func scanService(row pgx.Row) (*entities.Service, error) {
	var s entities.Service
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.Category, &s.Price,
		&s.Unit, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepository) GetServices(ctx context.Context, filter types.Filter) ([]entities.Service, uint64, error) {
	builder := sq.Select(serviceFields).From(serviceTable).PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From(serviceTable).PlaceholderFormat(sq.Dollar)

	for key, value := range filter.Filter {
		dbCol, ok := serviceAllowedFilterFields[key]
		if !ok {
			continue
		}
		if s, ok := value.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
			countBuilder = countBuilder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: value})
			countBuilder = countBuilder.Where(sq.Eq{dbCol: value})
		}
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Expr("name ILIKE ?", pattern))
		countBuilder = countBuilder.Where(sq.Expr("name ILIKE ?", pattern))
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса услуг: %w", err)
	}

	var totalCount uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета услуг: %w", err)
	}
	if totalCount == 0 {
		return []entities.Service{}, 0, nil
	}

	builder = builder.OrderBy("category", "price")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	mainSQL, mainArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса услуг: %w", err)
	}

	rows, err := r.storage.Query(ctx, mainSQL, mainArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения услуг: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *s)
	}
	return list, totalCount, rows.Err()
}

func (r *ServiceRepository) FindService(ctx context.Context, id uint64) (*entities.Service, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", serviceFields, serviceTable)
	return scanService(r.storage.QueryRow(ctx, query, id))
}

func (r *ServiceRepository) CreateService(ctx context.Context, s *entities.Service) (uint64, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (name, description, category, price, unit, is_active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `, serviceTable)

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		s.Name, s.Description, s.Category, s.Price, s.Unit, s.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ServiceRepository) UpdateService(ctx context.Context, s *entities.Service) error {
	query := fmt.Sprintf(`
        UPDATE %s
        SET name = $1, description = $2, category = $3, price = $4, unit = $5, is_active = $6, updated_at = CURRENT_TIMESTAMP
        WHERE id = $7
    `, serviceTable)

	result, err := r.storage.Exec(ctx, query,
		s.Name, s.Description, s.Category, s.Price, s.Unit, s.IsActive, s.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) DeleteService(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", serviceTable), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
