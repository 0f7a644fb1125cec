package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"metrology-portal/internal/entities"
	apperrors "metrology-portal/pkg/errors"
	"metrology-portal/pkg/mailer"
	"metrology-portal/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- фейки ---

type fakeEquipmentRepo struct {
	dueSoon     []entities.Equipment
	dueSoonErr  error
	notifiedIDs [][]uint64
	markErr     error
	upserted    []entities.Equipment
}

func (f *fakeEquipmentRepo) GetEquipments(ctx context.Context, ownerID uint64, filter types.Filter) ([]entities.Equipment, uint64, error) {
	return nil, 0, nil
}
func (f *fakeEquipmentRepo) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return nil, nil
}
func (f *fakeEquipmentRepo) CreateEquipment(ctx context.Context, e *entities.Equipment) (uint64, error) {
	return 0, nil
}
func (f *fakeEquipmentRepo) UpdateEquipment(ctx context.Context, e *entities.Equipment) error {
	return nil
}
func (f *fakeEquipmentRepo) DeleteEquipment(ctx context.Context, id uint64) error { return nil }
func (f *fakeEquipmentRepo) FindDueSoon(ctx context.Context, from, to time.Time) ([]entities.Equipment, error) {
	if f.dueSoonErr != nil {
		return nil, f.dueSoonErr
	}
	// Повторный прогон не должен видеть уже помеченные строки.
	marked := make(map[uint64]bool)
	for _, batch := range f.notifiedIDs {
		for _, id := range batch {
			marked[id] = true
		}
	}
	result := make([]entities.Equipment, 0, len(f.dueSoon))
	for _, e := range f.dueSoon {
		if !marked[e.ID] {
			result = append(result, e)
		}
	}
	return result, nil
}
func (f *fakeEquipmentRepo) MarkNotified(ctx context.Context, ids []uint64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.notifiedIDs = append(f.notifiedIDs, ids)
	return nil
}
func (f *fakeEquipmentRepo) UpsertImported(ctx context.Context, tx pgx.Tx, e *entities.Equipment) (bool, error) {
	f.upserted = append(f.upserted, *e)
	return true, nil
}

type fakeUserRepo struct {
	users map[uint64]entities.User
}

func (f *fakeUserRepo) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("нет пользователя %d", id)
	}
	return &u, nil
}
func (f *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
func (f *fakeUserRepo) FindUsersByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.User, error) {
	result := make(map[uint64]entities.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}
func (f *fakeUserRepo) CreateUser(ctx context.Context, u *entities.User) (uint64, error) {
	id := uint64(len(f.users) + 1)
	stored := *u
	stored.ID = id
	f.users[id] = stored
	return id, nil
}
func (f *fakeUserRepo) CountUsers(ctx context.Context) (uint64, error) { return 0, nil }

type fakeMailer struct {
	sent    []mailer.ReminderPayload
	failFor map[string]bool
}

func (f *fakeMailer) SendVerificationReminder(ctx context.Context, payload mailer.ReminderPayload) error {
	if f.failFor[payload.Email] {
		return fmt.Errorf("smtp отказал для %s", payload.Email)
	}
	f.sent = append(f.sent, payload)
	return nil
}

// --- хелперы ---

func dueItem(id, userID uint64, name string, days int) entities.Equipment {
	return entities.Equipment{
		ID:               id,
		UserID:           userID,
		Name:             name,
		Category:         "verification",
		NextVerification: null.TimeFrom(time.Now().AddDate(0, 0, days)),
	}
}

func newTestNotifier(equipRepo *fakeEquipmentRepo, userRepo *fakeUserRepo, m *fakeMailer) NotifierServiceInterface {
	return NewNotifierService(equipRepo, userRepo, m, nil, 14, zap.NewNop())
}

// --- тесты ---

func TestRunDispatch_GroupsByOwner(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{dueSoon: []entities.Equipment{
		dueItem(1, 10, "Манометр", 3),
		dueItem(2, 10, "Термометр", 5),
		dueItem(3, 20, "Весы", 7),
	}}
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{
		10: {ID: 10, Fio: "Иванов И.И.", Email: "ivanov@example.com"},
		20: {ID: 20, Fio: "Петров П.П.", Email: "petrov@example.com"},
	}}
	m := &fakeMailer{}

	result, err := newTestNotifier(equipRepo, userRepo, m).RunDispatch(context.Background())
	require.NoError(t, err)

	// Одно письмо на владельца, сколько бы позиций у него ни было.
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 3, result.EquipmentNotified)
	require.Len(t, m.sent, 2)

	byEmail := make(map[string]mailer.ReminderPayload)
	for _, p := range m.sent {
		byEmail[p.Email] = p
	}
	assert.Len(t, byEmail["ivanov@example.com"].Equipment, 2)
	assert.Len(t, byEmail["petrov@example.com"].Equipment, 1)
}

func TestRunDispatch_SecondRunSendsNothing(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{dueSoon: []entities.Equipment{
		dueItem(1, 10, "Манометр", 3),
	}}
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{
		10: {ID: 10, Fio: "Иванов И.И.", Email: "ivanov@example.com"},
	}}
	m := &fakeMailer{}
	notifier := newTestNotifier(equipRepo, userRepo, m)

	first, err := notifier.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)

	second, err := notifier.RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Sent)
	assert.Equal(t, 0, second.EquipmentNotified)
	assert.Len(t, m.sent, 1)
}

func TestRunDispatch_ContactEmailOverride(t *testing.T) {
	item := dueItem(1, 10, "Манометр", 3)
	item.ContactEmail = null.StringFrom("metrolog@zavod.ru")

	equipRepo := &fakeEquipmentRepo{dueSoon: []entities.Equipment{item}}
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{
		10: {ID: 10, Fio: "Иванов И.И.", Email: "ivanov@example.com"},
	}}
	m := &fakeMailer{}

	_, err := newTestNotifier(equipRepo, userRepo, m).RunDispatch(context.Background())
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "metrolog@zavod.ru", m.sent[0].Email)
}

func TestRunDispatch_OneFailureDoesNotBlockOthers(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{dueSoon: []entities.Equipment{
		dueItem(1, 10, "Манометр", 3),
		dueItem(2, 20, "Весы", 5),
	}}
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{
		10: {ID: 10, Fio: "Иванов И.И.", Email: "ivanov@example.com"},
		20: {ID: 20, Fio: "Петров П.П.", Email: "petrov@example.com"},
	}}
	m := &fakeMailer{failFor: map[string]bool{"ivanov@example.com": true}}

	result, err := newTestNotifier(equipRepo, userRepo, m).RunDispatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.EquipmentNotified)

	// Непомеченная группа будет выбрана на следующем прогоне.
	require.Len(t, equipRepo.notifiedIDs, 1)
	assert.Equal(t, []uint64{2}, equipRepo.notifiedIDs[0])
}

func TestRunDispatch_MissingOwnerSkipsGroup(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{dueSoon: []entities.Equipment{
		dueItem(1, 99, "Манометр", 3),
		dueItem(2, 10, "Весы", 5),
	}}
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{
		10: {ID: 10, Fio: "Иванов И.И.", Email: "ivanov@example.com"},
	}}
	m := &fakeMailer{}

	result, err := newTestNotifier(equipRepo, userRepo, m).RunDispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.EquipmentNotified)
}

func TestRunDispatch_SelectorErrorFailsRun(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{dueSoonErr: fmt.Errorf("база недоступна")}
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{}}
	m := &fakeMailer{}

	_, err := newTestNotifier(equipRepo, userRepo, m).RunDispatch(context.Background())
	require.Error(t, err)
	assert.Empty(t, m.sent)
}

func TestRunDispatch_MarkFailureKeepsGroupUnnotified(t *testing.T) {
	equipRepo := &fakeEquipmentRepo{
		dueSoon: []entities.Equipment{dueItem(1, 10, "Манометр", 3)},
		markErr: fmt.Errorf("обрыв соединения"),
	}
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{
		10: {ID: 10, Fio: "Иванов И.И.", Email: "ivanov@example.com"},
	}}
	m := &fakeMailer{}

	result, err := newTestNotifier(equipRepo, userRepo, m).RunDispatch(context.Background())
	require.NoError(t, err)

	// Письмо ушло, но пометка не удалась: в счётчики группа не попадает.
	assert.Len(t, m.sent, 1)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.EquipmentNotified)
}
