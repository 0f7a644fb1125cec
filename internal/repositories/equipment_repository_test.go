package repositories

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"metrology-portal/internal/entities"
	"metrology-portal/pkg/constants"
	"metrology-portal/pkg/database/postgresql"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPool *pgxpool.Pool

// TestMain поднимает соединение с тестовой БД и прогоняет миграции.
// Без TEST_DATABASE_URL интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	var err error
	testPool, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}
	defer testPool.Close()

	if err := postgresql.Migrate(dsn, "../../migrations"); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
	}

	os.Exit(m.Run())
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан, интеграционный тест пропущен")
	}
}

func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE TABLE requests, equipments, services, users RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

func seedUser(t *testing.T, email string) uint64 {
	t.Helper()
	var id uint64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO users (fio, email, password, role) VALUES ('Тестовый Клиент', $1, 'hash', 'client') RETURNING id`,
		email,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedEquipment(t *testing.T, repo EquipmentRepositoryInterface, userID uint64, name string, next *time.Time, notified bool) uint64 {
	t.Helper()
	e := &entities.Equipment{
		UserID:         userID,
		Name:           name,
		Category:       constants.CategoryVerification,
		IntervalMonths: 12,
		Status:         constants.EquipmentStatusActive,
		Notified:       notified,
	}
	if next != nil {
		e.NextVerification = null.TimeFrom(*next)
	}
	id, err := repo.CreateEquipment(context.Background(), e)
	require.NoError(t, err)
	return id
}

func TestFindDueSoon_WindowAndFlags(t *testing.T) {
	requireDB(t)
	cleanupTables(t)

	repo := NewEquipmentRepository(testPool, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, "client@example.com")

	now := time.Now().Truncate(24 * time.Hour)
	to := now.AddDate(0, 0, 14)

	inWindow := now.AddDate(0, 0, 5)
	overdue := now.AddDate(0, 0, -3)
	farAway := now.AddDate(0, 0, 30)

	dueID := seedEquipment(t, repo, userID, "В окне", &inWindow, false)
	boundaryID := seedEquipment(t, repo, userID, "Ровно на границе", &to, false)
	seedEquipment(t, repo, userID, "Просроченное", &overdue, false)
	seedEquipment(t, repo, userID, "Далёкое", &farAway, false)
	seedEquipment(t, repo, userID, "Без даты", nil, false)
	seedEquipment(t, repo, userID, "Уже уведомлено", &inWindow, true)

	list, err := repo.FindDueSoon(ctx, now, to)
	require.NoError(t, err)

	ids := make([]uint64, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}

	// Обе границы включительно; NULL, просроченные и помеченные не попадают.
	assert.ElementsMatch(t, []uint64{dueID, boundaryID}, ids)
}

func TestMarkNotified_ExcludesFromNextSelection(t *testing.T) {
	requireDB(t)
	cleanupTables(t)

	repo := NewEquipmentRepository(testPool, zap.NewNop())
	ctx := context.Background()

	userID := seedUser(t, "client@example.com")
	next := time.Now().AddDate(0, 0, 7)
	id := seedEquipment(t, repo, userID, "Манометр", &next, false)

	require.NoError(t, repo.MarkNotified(ctx, []uint64{id}))

	list, err := repo.FindDueSoon(ctx, time.Now(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Empty(t, list)

	e, err := repo.FindEquipment(ctx, id)
	require.NoError(t, err)
	assert.True(t, e.Notified)
}

func TestUpsertImported_InsertThenUpdate(t *testing.T) {
	requireDB(t)
	cleanupTables(t)

	repo := NewEquipmentRepository(testPool, zap.NewNop())
	txManager := NewTxManager(testPool)
	ctx := context.Background()

	userID := seedUser(t, "client@example.com")

	e := &entities.Equipment{
		UserID:         userID,
		Name:           "Манометр",
		SerialNumber:   null.StringFrom("12345"),
		Category:       constants.CategoryVerification,
		IntervalMonths: 12,
		Status:         constants.EquipmentStatusActive,
	}

	err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		isInsert, err := repo.UpsertImported(ctx, tx, e)
		require.NoError(t, err)
		assert.True(t, isInsert)
		return nil
	})
	require.NoError(t, err)

	next := time.Now().AddDate(0, 6, 0)
	e.NextVerification = null.TimeFrom(next)
	e.Status = constants.EquipmentStatusActive

	err = txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		isInsert, err := repo.UpsertImported(ctx, tx, e)
		require.NoError(t, err)
		assert.False(t, isInsert)
		return nil
	})
	require.NoError(t, err)
}
