package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lab-inventory-system/internal/controllers"
	"lab-inventory-system/internal/notify"
	"lab-inventory-system/internal/reconcile"
	"lab-inventory-system/internal/repositories"
	"lab-inventory-system/internal/services"
	"lab-inventory-system/pkg/config"
	"lab-inventory-system/pkg/eventbus"
	"lab-inventory-system/pkg/middleware"
	"lab-inventory-system/pkg/service"
	ws "lab-inventory-system/pkg/websocket"
)

// InitRouter builds the full dependency graph and registers every route.
// Construction order follows the data flow: repositories, the fan-out and
// orchestration services, controllers, then the route groups.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	hub *ws.Hub,
	engine *reconcile.Engine,
	bus *eventbus.Bus,
	cfg *config.Config,
	logger *zap.Logger,
) {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	userRepo := repositories.NewUserRepository(dbConn)
	labRepo := repositories.NewLabRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	transferRepo := repositories.NewTransferRepository(dbConn)
	issueRepo := repositories.NewIssueRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	notifier := notify.NewService(notificationRepo, cacheRepo, bus, logger)

	authService := services.NewAuthService(userRepo, jwtSvc, logger)
	referenceService := services.NewReferenceService(labRepo, userRepo)
	equipmentService := services.NewEquipmentService(equipmentRepo, notifier, bus, logger)
	transferService := services.NewTransferService(transferRepo, equipmentRepo, notifier, bus, logger)
	issueService := services.NewIssueService(issueRepo, equipmentRepo, notifier, bus, logger)
	notificationService := services.NewNotificationService(
		notificationRepo, cacheRepo, cfg.Notifications.UnreadCacheTTL, logger)

	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authService, authMW, logger)
	runReferenceRouter(secureGroup, referenceService, logger)
	runEquipmentRouter(secureGroup, equipmentService, logger)
	runTransferRouter(secureGroup, transferService, logger)
	runIssueRouter(secureGroup, issueService, logger)
	runNotificationRouter(secureGroup, notificationService, logger)
	runWorkflowRouter(secureGroup, equipmentService, transferService, issueService, logger)
	runWebsocketRouter(e, secureGroup, hub, engine, jwtSvc, logger)

	logger.Info("routes registered")
}

func runAuthRouter(api *echo.Group, authService *services.AuthService, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(authService, logger)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/refresh_token", authCtrl.Refresh)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
	}
}

func runReferenceRouter(group *echo.Group, referenceService *services.ReferenceService, logger *zap.Logger) {
	referenceCtrl := controllers.NewReferenceController(referenceService, logger)

	group.GET("/labs", referenceCtrl.GetLabs)
	group.GET("/equipment-types", referenceCtrl.GetEquipmentTypes)
	group.GET("/users", referenceCtrl.GetUsers)
}

func runEquipmentRouter(group *echo.Group, equipmentService *services.EquipmentService, logger *zap.Logger) {
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, logger)

	group.GET("/equipments", equipmentCtrl.GetEquipments)
	group.GET("/equipments/:id", equipmentCtrl.FindEquipment)
	group.POST("/equipments", equipmentCtrl.CreateEquipment)
	group.PUT("/equipments/:id", equipmentCtrl.UpdateEquipment)
	group.POST("/equipments/:id/approve", equipmentCtrl.ApproveEquipment)
	group.DELETE("/equipments/:id", equipmentCtrl.RequestDelete)
	group.POST("/equipments/:id/ratify", equipmentCtrl.RatifyDelete)
}

func runTransferRouter(group *echo.Group, transferService *services.TransferService, logger *zap.Logger) {
	transferCtrl := controllers.NewTransferController(transferService, logger)

	group.GET("/transfers", transferCtrl.GetTransfers)
	group.GET("/transfers/:id", transferCtrl.FindTransfer)
	group.POST("/transfers", transferCtrl.CreateTransfer)
	group.POST("/transfers/:id/receive", transferCtrl.ReceiveTransfer)
	group.DELETE("/transfers/:id", transferCtrl.DeleteTransfer)
}

func runIssueRouter(group *echo.Group, issueService *services.IssueService, logger *zap.Logger) {
	issueCtrl := controllers.NewIssueController(issueService, logger)

	group.GET("/issues", issueCtrl.GetIssues)
	group.GET("/issues/:id", issueCtrl.FindIssue)
	group.POST("/issues", issueCtrl.ReportIssue)
	group.POST("/issues/:id/resolve", issueCtrl.ResolveIssue)
}

func runNotificationRouter(group *echo.Group, notificationService *services.NotificationService, logger *zap.Logger) {
	notificationCtrl := controllers.NewNotificationController(notificationService, logger)

	group.GET("/notifications", notificationCtrl.GetNotifications)
	group.GET("/notifications/unread_count", notificationCtrl.GetUnreadCount)
	group.PUT("/notifications/:id/read", notificationCtrl.MarkRead)
	group.PUT("/notifications/read_all", notificationCtrl.MarkAllRead)
}

func runWorkflowRouter(
	group *echo.Group,
	equipmentService *services.EquipmentService,
	transferService *services.TransferService,
	issueService *services.IssueService,
	logger *zap.Logger,
) {
	workflowCtrl := controllers.NewWorkflowController(equipmentService, transferService, issueService, logger)

	group.POST("/guards/evaluate", workflowCtrl.EvaluateGuard)
	group.POST("/transitions", workflowCtrl.Transition)
}

func runWebsocketRouter(
	e *echo.Echo,
	secureGroup *echo.Group,
	hub *ws.Hub,
	engine *reconcile.Engine,
	jwtSvc service.JWTService,
	logger *zap.Logger,
) {
	wsCtrl := controllers.NewWebsocketController(hub, engine, jwtSvc, logger)

	// The upgrade endpoint authenticates via query param, outside the group.
	e.GET("/ws", wsCtrl.Serve)
	secureGroup.POST("/ws/filters", wsCtrl.SetFilter)
}
