package services

import (
	"context"
	"testing"
	"time"

	"metrology-portal/internal/dto"
	"metrology-portal/internal/entities"
	"metrology-portal/pkg/config"
	apperrors "metrology-portal/pkg/errors"
	"metrology-portal/pkg/service"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.values[key] = "1"
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	n := int64(1)
	if v, ok := f.values[key]; ok && v != "" {
		// В фейке счётчик хранится длиной строки: проще, чем парсить.
		n = int64(len(v)) + 1
	}
	f.values[key] = string(make([]byte, n))
	return n, nil
}

func (f *fakeCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return true, nil
}

func newTestAuthService(userRepo *fakeUserRepo, cache *fakeCache) AuthServiceInterface {
	jwtSvc := service.NewJWTService("test-secret", time.Hour, time.Hour*24, zap.NewNop())
	cfg := config.AuthConfig{MaxLoginAttempts: 3, LockoutDuration: time.Minute * 15}
	return NewAuthService(userRepo, cache, jwtSvc, cfg, zap.NewNop())
}

func seedAuthUser(t *testing.T, userRepo *fakeUserRepo, email, password string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.users[1] = entities.User{
		ID: 1, Fio: "Иванов И.И.", Email: email, Password: string(hashed), Role: "client",
	}
}

func TestLogin_Success(t *testing.T) {
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{}}
	seedAuthUser(t, userRepo, "ivanov@example.com", "correct-horse")

	svc := newTestAuthService(userRepo, newFakeCache())

	res, err := svc.Login(context.Background(), dto.LoginDTO{Email: "ivanov@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "ivanov@example.com", res.User.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{}}
	seedAuthUser(t, userRepo, "ivanov@example.com", "correct-horse")

	svc := newTestAuthService(userRepo, newFakeCache())

	_, err := svc.Login(context.Background(), dto.LoginDTO{Email: "ivanov@example.com", Password: "wrong"})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 401, httpErr.Code)
}

func TestLogin_LockoutAfterMaxAttempts(t *testing.T) {
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{}}
	seedAuthUser(t, userRepo, "ivanov@example.com", "correct-horse")

	cache := newFakeCache()
	svc := newTestAuthService(userRepo, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, dto.LoginDTO{Email: "ivanov@example.com", Password: "wrong"})
		require.Error(t, err)
	}

	// Даже верный пароль не пускает, пока действует блокировка.
	_, err := svc.Login(ctx, dto.LoginDTO{Email: "ivanov@example.com", Password: "correct-horse"})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 429, httpErr.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{}}
	seedAuthUser(t, userRepo, "ivanov@example.com", "correct-horse")

	svc := newTestAuthService(userRepo, newFakeCache())

	_, err := svc.Register(context.Background(), dto.RegisterDTO{
		Fio: "Дубль", Email: "IVANOV@example.com", Password: "password123",
	})
	require.Error(t, err)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 409, httpErr.Code)
}

func TestRegister_IssuesTokensAndClientRole(t *testing.T) {
	userRepo := &fakeUserRepo{users: map[uint64]entities.User{}}
	svc := newTestAuthService(userRepo, newFakeCache())

	res, err := svc.Register(context.Background(), dto.RegisterDTO{
		Fio: "Новый Клиент", Email: "new@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "client", res.User.Role)

	stored, err := userRepo.FindUserByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	// В базе лежит bcrypt-хеш, не исходный пароль.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))
}
