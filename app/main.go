package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"line-helpdesk/internal/routes"
	"line-helpdesk/internal/scheduler"
	"line-helpdesk/migrations"
	"line-helpdesk/pkg/config"
	"line-helpdesk/pkg/customvalidator"
	"line-helpdesk/pkg/database/postgresql"
	apperrors "line-helpdesk/pkg/errors"
	"line-helpdesk/pkg/eventbus"
	appmiddleware "line-helpdesk/pkg/middleware"
	applogger "line-helpdesk/pkg/logger"
	"line-helpdesk/pkg/service"
	"line-helpdesk/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	e := echo.New()
	logger := applogger.NewLogger()
	cfg := config.New()

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("паника при обработке запроса",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	runMigrations(cfg.Postgres.DSN, logger)

	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis",
			zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	bus := eventbus.New(logger)
	sched := scheduler.New(logger)

	routes.InitRouter(e, dbConn, redisClient, jwtSvc, bus, sched, logger, cfg)

	sched.Start(context.Background())
	defer sched.Stop()

	logger.Info("сервер запущен", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		logger.Fatal("ошибка запуска сервера", zap.Error(err))
	}
}

// runMigrations накатывает миграции до поднятия пула приложения.
func runMigrations(dsn string, logger *zap.Logger) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal("не удалось открыть соединение для миграций", zap.Error(err))
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal("не удалось выбрать диалект миграций", zap.Error(err))
	}
	if err := goose.Up(db, "."); err != nil {
		logger.Fatal("не удалось применить миграции", zap.Error(err))
	}
	logger.Info("миграции применены")
}
