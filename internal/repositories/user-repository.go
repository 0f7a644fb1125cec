package repositories

import (
	"context"
	"errors"
	"fmt"

	"metrology-portal/internal/entities"
	apperrors "metrology-portal/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userTable = "users"
const userFields = "id, fio, email, phone, company, password, role, telegram_chat_id, created_at, updated_at"

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) (uint64, error)
	CountUsers(ctx context.Context) (uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.Fio, &user.Email, &user.Phone, &user.Company,
		&user.Password, &user.Role, &user.TelegramChatID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", userFields, userTable)
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE LOWER(email) = LOWER($1) LIMIT 1", userFields, userTable)
	return scanUser(r.storage.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.User, error) {
	if len(ids) == 0 {
		return map[uint64]entities.User{}, nil
	}

	query, args, err := sq.Select(userFields).
		From(userTable).
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindUsersByIDs: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей по списку ID: %w", err)
	}
	defer rows.Close()

	users := make(map[uint64]entities.User, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[user.ID] = *user
	}
	return users, rows.Err()
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) (uint64, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (fio, email, phone, company, password, role)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `, userTable)

	var id uint64
	err := r.storage.QueryRow(ctx, query,
		user.Fio, user.Email, user.Phone, user.Company, user.Password, user.Role,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (uint64, error) {
	var total uint64
	err := r.storage.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", userTable)).Scan(&total)
	return total, err
}
