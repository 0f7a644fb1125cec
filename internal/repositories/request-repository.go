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
	"go.uber.org/zap"
)

const requestTable = "requests"
const requestFields = "id, user_id, service_id, equipment_name, message, status, created_at, updated_at"

var requestAllowedFilterFields = map[string]string{
	"status":     "status",
	"user_id":    "user_id",
	"service_id": "service_id",
}

type RequestRepositoryInterface interface {
	GetRequests(ctx context.Context, ownerID uint64, filter types.Filter) ([]entities.Request, uint64, error)
	FindRequest(ctx context.Context, id uint64) (*entities.Request, error)
	CreateRequest(ctx context.Context, request *entities.Request) (uint64, error)
	UpdateRequestStatus(ctx context.Context, id uint64, status string) error
	CountByStatus(ctx context.Context) (map[string]uint64, error)
	CountSince(ctx context.Context, days int) (uint64, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

func scanRequest(row pgx.Row) (*entities.Request, error) {
	var req entities.Request
	err := row.Scan(
		&req.ID, &req.UserID, &req.ServiceID, &req.EquipmentName,
		&req.Message, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) GetRequests(ctx context.Context, ownerID uint64, filter types.Filter) ([]entities.Request, uint64, error) {
	builder := sq.Select(requestFields).From(requestTable).PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From(requestTable).PlaceholderFormat(sq.Dollar)

	if ownerID > 0 {
		builder = builder.Where(sq.Eq{"user_id": ownerID})
		countBuilder = countBuilder.Where(sq.Eq{"user_id": ownerID})
	}

	for key, value := range filter.Filter {
		dbCol, ok := requestAllowedFilterFields[key]
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

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса заявок: %w", err)
	}

	var totalCount uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", err)
	}
	if totalCount == 0 {
		return []entities.Request{}, 0, nil
	}

	builder = builder.OrderBy("id DESC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	mainSQL, mainArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса заявок: %w", err)
	}

	rows, err := r.storage.Query(ctx, mainSQL, mainArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения заявок: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *req)
	}
	return list, totalCount, rows.Err()
}

func (r *RequestRepository) FindRequest(ctx context.Context, id uint64) (*entities.Request, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", requestFields, requestTable)
	return scanRequest(r.storage.QueryRow(ctx, query, id))
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req *entities.Request) (uint64, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (user_id, service_id, equipment_name, message, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, requestTable)

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		req.UserID, req.ServiceID, req.EquipmentName, req.Message, req.Status,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *RequestRepository) UpdateRequestStatus(ctx context.Context, id uint64, status string) error {
	query := fmt.Sprintf("UPDATE %s SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2", requestTable)
	result, err := r.storage.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[string]uint64, error) {
	rows, err := r.storage.Query(ctx, fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", requestTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var status string
		var count uint64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *RequestRepository) CountSince(ctx context.Context, days int) (uint64, error) {
	var total uint64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE created_at >= NOW() - $1::interval", requestTable)
	err := r.storage.QueryRow(ctx, query, fmt.Sprintf("%d days", days)).Scan(&total)
	return total, err
}
