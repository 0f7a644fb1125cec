package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"metrology-portal/internal/dto"
	"metrology-portal/internal/entities"
	"metrology-portal/internal/repositories"
	"metrology-portal/pkg/config"
	"metrology-portal/pkg/constants"
	apperrors "metrology-portal/pkg/errors"
	"metrology-portal/pkg/service"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, payload dto.RegisterDTO) (*dto.TokenPairDTO, error)
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error)
	Me(ctx context.Context, userID uint64) (*dto.UserDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	authCfg    config.AuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	authCfg config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		authCfg:    authCfg,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, payload dto.RegisterDTO) (*dto.TokenPairDTO, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		return nil, apperrors.NewHttpError(http.StatusConflict, "Пользователь с таким email уже зарегистрирован", nil, nil)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Не удалось захешировать пароль", zap.Error(err))
		return nil, err
	}

	user := &entities.User{
		Fio:      payload.Fio,
		Email:    email,
		Phone:    null.StringFromPtr(payload.Phone),
		Company:  null.StringFromPtr(payload.Company),
		Password: string(hashed),
		Role:     constants.RoleClient,
	}

	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		s.logger.Error("Ошибка при создании пользователя", zap.Error(err))
		return nil, err
	}
	user.ID = id

	s.logger.Info("Зарегистрирован новый пользователь", zap.Uint64("id", id), zap.String("email", email))

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	lockKey := fmt.Sprintf("auth:lock:%s", email)
	attemptsKey := fmt.Sprintf("auth:attempts:%s", email)

	if locked, err := s.cacheRepo.Get(ctx, lockKey); err == nil && locked != "" {
		return nil, apperrors.NewHttpError(http.StatusTooManyRequests, "Слишком много неудачных попыток входа, попробуйте позже", apperrors.ErrAccountLocked, nil)
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.registerFailedAttempt(ctx, attemptsKey, lockKey, email)
			return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Неверный email или пароль", apperrors.ErrInvalidCredentials, nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		s.registerFailedAttempt(ctx, attemptsKey, lockKey, email)
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Неверный email или пароль", apperrors.ErrInvalidCredentials, nil)
	}

	// Успешный вход сбрасывает счётчик неудачных попыток.
	if err := s.cacheRepo.Del(ctx, attemptsKey); err != nil {
		s.logger.Warn("Не удалось сбросить счётчик попыток входа", zap.String("email", email), zap.Error(err))
	}

	return s.issueTokens(user)
}

func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Недействительный refresh-токен", err, nil)
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Ожидался refresh-токен", apperrors.ErrInvalidToken, nil)
	}

	user, err := s.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Пользователь не найден", err, nil)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Me(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := userToDTO(user)
	return &result, nil
}

// registerFailedAttempt увеличивает счётчик неудачных входов и при достижении
// порога ставит блокировку на LockoutDuration. Ошибки Redis вход не ломают.
func (s *AuthService) registerFailedAttempt(ctx context.Context, attemptsKey, lockKey, email string) {
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось увеличить счётчик попыток входа", zap.String("email", email), zap.Error(err))
		return
	}
	if attempts == 1 {
		if _, err := s.cacheRepo.Expire(ctx, attemptsKey, s.authCfg.LockoutDuration); err != nil {
			s.logger.Warn("Не удалось выставить TTL счётчика попыток", zap.String("email", email), zap.Error(err))
		}
	}
	if attempts >= int64(s.authCfg.MaxLoginAttempts) {
		if err := s.cacheRepo.Set(ctx, lockKey, "1", s.authCfg.LockoutDuration); err != nil {
			s.logger.Warn("Не удалось заблокировать учётную запись", zap.String("email", email), zap.Error(err))
			return
		}
		s.logger.Warn("Учётная запись временно заблокирована после серии неудачных входов",
			zap.String("email", email), zap.Int64("attempts", attempts))
	}
}

func (s *AuthService) issueTokens(user *entities.User) (*dto.TokenPairDTO, error) {
	access, refresh, err := s.jwtService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         userToDTO(user),
	}, nil
}

func userToDTO(user *entities.User) dto.UserDTO {
	return dto.UserDTO{
		ID:      user.ID,
		Fio:     user.Fio,
		Email:   user.Email,
		Phone:   user.Phone.String,
		Company: user.Company.String,
		Role:    user.Role,
	}
}
