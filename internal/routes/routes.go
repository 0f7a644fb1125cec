package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/listeners"
	"metrology-portal/internal/repositories"
	"metrology-portal/internal/services"
	"metrology-portal/pkg/config"
	"metrology-portal/pkg/eventbus"
	"metrology-portal/pkg/mailer"
	"metrology-portal/pkg/middleware"
	"metrology-portal/pkg/service"
	"metrology-portal/pkg/telegram"
)

// InitRouter собирает весь граф зависимостей и вешает маршруты.
// Возвращает диспетчер напоминаний: его же гоняет встроенный планировщик.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cfg *config.Config,
) services.NotifierServiceInterface {
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	txManager := repositories.NewTxManager(dbConn)

	// --- Репозитории ---
	userRepo := repositories.NewUserRepository(dbConn, logger)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, logger)
	requestRepo := repositories.NewRequestRepository(dbConn, logger)
	serviceRepo := repositories.NewServiceRepository(dbConn)
	dashboardRepo := repositories.NewDashboardRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- Внешние каналы ---
	mailerSvc := mailer.New(cfg.SMTP)
	telegramSvc := telegram.NewService(cfg.Telegram.BotToken)

	// --- Сервисы ---
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, cfg.Auth, logger)
	equipmentService := services.NewEquipmentService(equipmentRepo, bus, logger)
	importerService := services.NewEquipmentImporter(equipmentRepo, txManager, logger)
	requestService := services.NewRequestService(requestRepo, serviceRepo, userRepo, bus, logger)
	catalogService := services.NewCatalogService(serviceRepo, logger)
	registryService := services.NewRegistryService(cacheRepo, cfg.Registry, logger)
	dashboardService := services.NewDashboardService(dashboardRepo, requestRepo, userRepo, logger)
	notifierService := services.NewNotifierService(
		equipmentRepo, userRepo, mailerSvc, telegramSvc, cfg.Notify.LookaheadDays, logger)

	// --- Слушатели событий ---
	listeners.NewAdminNotificationListener(telegramSvc, cfg.Telegram, logger).Register(bus)

	// --- Маршруты ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authService, logger)
	runEquipmentRouter(secureGroup, equipmentService, importerService, logger)
	runRequestRouter(secureGroup, requestService, logger, authMW)
	runCatalogRouter(api, secureGroup, catalogService, logger, authMW)
	runRegistryRouter(secureGroup, registryService, logger)
	runDashboardRouter(secureGroup, dashboardService, logger, authMW)
	runNotificationRouter(api, notifierService, cfg.Notify, logger)

	logger.Info("InitRouter: Маршруты успешно созданы")
	return notifierService
}
