package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-order-system/internal/listeners"
	"isp-order-system/internal/repositories"
	"isp-order-system/internal/services"
	"isp-order-system/pkg/config"
	"isp-order-system/pkg/eventbus"
	"isp-order-system/pkg/middleware"
	"isp-order-system/pkg/service"
)

// Deps — всё, что нужно роутерам для сборки сервисного слоя.
type Deps struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Bus    *eventbus.Bus
	Cfg    *config.Config
	JWTSvc service.JWTServiceInterface
	Logger *zap.Logger
}

// RunRouters собирает репозитории, сервисы и контроллеры и вешает
// маршруты: /api/auth открыт, остальное за JWT-мидлварью.
func RunRouters(e *echo.Echo, deps Deps) {
	txManager := repositories.NewTxManager(deps.Pool)
	orderRepo := repositories.NewOrderRepository(deps.Pool)
	handoffRepo := repositories.NewHandoffRepository(deps.Pool)
	userRepo := repositories.NewUserRepository(deps.Pool)
	materialRepo := repositories.NewMaterialRepository(deps.Pool)
	assignmentRepo := repositories.NewAssignmentRepository(deps.Pool)
	inboxRepo := repositories.NewInboxRepository(deps.Pool)
	cache := repositories.NewRedisCacheRepository(deps.Redis)

	assignmentService := services.NewAssignmentService(assignmentRepo, cache, deps.Cfg.Assignment.RankCacheTTL, deps.Logger)
	transitionService := services.NewTransitionService(txManager, orderRepo, handoffRepo, userRepo, materialRepo, cache, deps.Bus, deps.Logger)
	orderService := services.NewOrderService(txManager, orderRepo, handoffRepo, userRepo, assignmentService, deps.Bus, deps.Logger)
	inboxService := services.NewInboxService(inboxRepo, userRepo, deps.Logger)
	reportService := services.NewReportService(orderRepo, handoffRepo, deps.Logger)
	authService := services.NewAuthService(userRepo, deps.JWTSvc, deps.Logger)

	notifier := services.NewLogNotifier(deps.Logger)
	notificationListener := listeners.NewNotificationListener(notifier, assignmentService, userRepo, deps.Logger)
	notificationListener.Register(deps.Bus)

	api := e.Group("/api")
	runAuthRouter(api, authService, deps.Logger)

	secureGroup := api.Group("", middleware.Auth(deps.JWTSvc, deps.Logger))
	runOrderRouter(secureGroup, orderService, transitionService, deps.Logger)
	runInboxRouter(secureGroup, inboxService, deps.Logger)
	runAssignmentRouter(secureGroup, assignmentService, deps.Logger)
	runReportRouter(secureGroup, reportService, deps.Logger)
}
