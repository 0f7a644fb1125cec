package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"metrology-portal/internal/entities"
	apperrors "metrology-portal/pkg/errors"
	"metrology-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const equipmentTable = "equipments"
const equipmentFields = "id, user_id, name, type, serial_number, registry_number, category, verification_date, next_verification, interval_months, status, notified, company, contact_email, created_at, updated_at"

var equipmentAllowedFilterFields = map[string]string{
	"status":   "status",
	"category": "category",
	"user_id":  "user_id",
	"notified": "notified",
}

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context, ownerID uint64, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, equipment *entities.Equipment) (uint64, error)
	UpdateEquipment(ctx context.Context, equipment *entities.Equipment) error
	DeleteEquipment(ctx context.Context, id uint64) error

	// FindDueSoon возвращает строки с notified = false и next_verification
	// в окне [from, to] включительно с обеих сторон. NULL никогда не попадает.
	FindDueSoon(ctx context.Context, from, to time.Time) ([]entities.Equipment, error)
	// MarkNotified выставляет notified = true всему списку одним UPDATE.
	MarkNotified(ctx context.Context, ids []uint64) error

	// UpsertImported вставляет или обновляет строку при импорте из Excel
	// в рамках переданной транзакции. Возвращает true, если была вставка.
	UpsertImported(ctx context.Context, tx pgx.Tx, equipment *entities.Equipment) (bool, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	err := row.Scan(
		&e.ID, &e.UserID, &e.Name, &e.Type, &e.SerialNumber, &e.RegistryNumber,
		&e.Category, &e.VerificationDate, &e.NextVerification, &e.IntervalMonths,
		&e.Status, &e.Notified, &e.Company, &e.ContactEmail,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, ownerID uint64, filter types.Filter) ([]entities.Equipment, uint64, error) {
	builder := sq.Select(equipmentFields).From(equipmentTable).PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From(equipmentTable).PlaceholderFormat(sq.Dollar)

	// ownerID == 0 означает админский запрос без ограничения по владельцу.
	if ownerID > 0 {
		builder = builder.Where(sq.Eq{"user_id": ownerID})
		countBuilder = countBuilder.Where(sq.Eq{"user_id": ownerID})
	}

	for key, value := range filter.Filter {
		dbCol, ok := equipmentAllowedFilterFields[key]
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
		cond := sq.Or{
			sq.Expr("name ILIKE ?", pattern),
			sq.Expr("serial_number ILIKE ?", pattern),
			sq.Expr("registry_number ILIKE ?", pattern),
		}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса: %w", err)
	}

	var totalCount uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета оборудования: %w", err)
	}
	if totalCount == 0 {
		return []entities.Equipment{}, 0, nil
	}

	builder = builder.OrderBy("id DESC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	mainSQL, mainArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	r.logger.Debug("Выполнение SQL-запроса списка оборудования", zap.String("query", mainSQL))

	rows, err := r.storage.Query(ctx, mainSQL, mainArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения оборудования: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *e)
	}
	return list, totalCount, rows.Err()
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", equipmentFields, equipmentTable)
	return scanEquipment(r.storage.QueryRow(ctx, query, id))
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, e *entities.Equipment) (uint64, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (user_id, name, type, serial_number, registry_number, category, verification_date, next_verification, interval_months, status, notified, company, contact_email)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id
    `, equipmentTable)

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		e.UserID, e.Name, e.Type, e.SerialNumber, e.RegistryNumber,
		e.Category, e.VerificationDate, e.NextVerification, e.IntervalMonths,
		e.Status, e.Notified, e.Company, e.ContactEmail,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, e *entities.Equipment) error {
	query := fmt.Sprintf(`
        UPDATE %s
        SET name = $1, type = $2, serial_number = $3, registry_number = $4, category = $5,
            verification_date = $6, next_verification = $7, interval_months = $8,
            status = $9, notified = $10, company = $11, contact_email = $12,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $13
    `, equipmentTable)

	result, err := r.storage.Exec(ctx, query,
		e.Name, e.Type, e.SerialNumber, e.RegistryNumber, e.Category,
		e.VerificationDate, e.NextVerification, e.IntervalMonths,
		e.Status, e.Notified, e.Company, e.ContactEmail,
		e.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", equipmentTable), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) FindDueSoon(ctx context.Context, from, to time.Time) ([]entities.Equipment, error) {
	// Обе границы включительно: ровно "сегодня" и ровно через 14 дней попадают.
	query, args, err := sq.Select(equipmentFields).
		From(equipmentTable).
		Where(sq.Eq{"notified": false}).
		Where(sq.GtOrEq{"next_verification": from}).
		Where(sq.LtOrEq{"next_verification": to}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса выборки due-soon: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки оборудования с приближающейся поверкой: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepository) MarkNotified(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sq.Update(equipmentTable).
		Set("notified", true).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса MarkNotified: %w", err)
	}

	_, err = r.storage.Exec(ctx, query, args...)
	return err
}

func (r *EquipmentRepository) UpsertImported(ctx context.Context, tx pgx.Tx, e *entities.Equipment) (bool, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (user_id, name, type, serial_number, registry_number, category, verification_date, next_verification, interval_months, status, notified)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false)
        ON CONFLICT (user_id, name, serial_number)
        DO UPDATE SET
            type = COALESCE(EXCLUDED.type, %s.type),
            registry_number = COALESCE(EXCLUDED.registry_number, %s.registry_number),
            verification_date = COALESCE(EXCLUDED.verification_date, %s.verification_date),
            next_verification = COALESCE(EXCLUDED.next_verification, %s.next_verification),
            status = EXCLUDED.status,
            updated_at = NOW()
        RETURNING (xmax = 0) AS is_insert
    `, equipmentTable, equipmentTable, equipmentTable, equipmentTable, equipmentTable)

	var isInsert bool
	err := tx.QueryRow(ctx, query,
		e.UserID, e.Name, e.Type, e.SerialNumber, e.RegistryNumber,
		e.Category, e.VerificationDate, e.NextVerification, e.IntervalMonths, e.Status,
	).Scan(&isInsert)
	if err != nil {
		return false, err
	}
	return isInsert, nil
}
