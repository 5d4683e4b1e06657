package main

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"lab-inventory-system/internal/listeners"
	"lab-inventory-system/internal/reconcile"
	"lab-inventory-system/internal/routes"
	"lab-inventory-system/pkg/config"
	"lab-inventory-system/pkg/database/postgresql"
	"lab-inventory-system/pkg/eventbus"
	applogger "lab-inventory-system/pkg/logger"
	"lab-inventory-system/pkg/service"
	"lab-inventory-system/pkg/utils"
	ws "lab-inventory-system/pkg/websocket"
)

func main() {
	e := echo.New()
	logger := applogger.NewLogger()
	defer func() { _ = logger.Sync() }()

	cfg := config.New()

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = utils.ErrorResponse(c, err, logger)
			}
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.Validator = utils.NewValidator(validator.New())

	postgresql.Migrate(cfg.Postgres.DSN, logger)
	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN, logger)
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("failed to connect to redis",
			zap.String("address", cfg.Redis.Address), zap.Error(err))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)

	hub := ws.NewHub(logger)
	go hub.Run()

	bus := eventbus.New(logger)

	engine := reconcile.NewEngine(hub, logger)
	engine.Register(bus)

	notificationListener := listeners.NewNotificationListener(hub, cfg.Notifications, logger)
	notificationListener.Register(bus)

	routes.InitRouter(e, dbConn, redisClient, jwtSvc, hub, engine, bus, cfg, logger)

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
