package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"line-helpdesk/internal/listeners"
	"line-helpdesk/internal/repositories"
	"line-helpdesk/internal/scheduler"
	"line-helpdesk/internal/services"
	"line-helpdesk/pkg/config"
	"line-helpdesk/pkg/eventbus"
	"line-helpdesk/pkg/lineapi"
	"line-helpdesk/pkg/middleware"
	"line-helpdesk/pkg/service"
)

// InitRouter собирает весь граф зависимостей: репозитории, сервисы,
// контроллеры, слушателей шины и задачи планировщика.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	// --- РЕПОЗИТОРИИ ---
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	settingsRepo := repositories.NewSettingsRepository(dbConn)
	channelRepo := repositories.NewChannelRepository(dbConn)
	contactRepo := repositories.NewContactRepository(dbConn)
	ticketRepo := repositories.NewTicketRepository(dbConn)
	channelTagRepo := repositories.NewChannelTagRepository(dbConn)
	stageRepo := repositories.NewStageRepository(dbConn)
	teamRepo := repositories.NewTeamRepository(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	policyRepo := repositories.NewPolicyRepository(dbConn)
	followUpRepo := repositories.NewFollowUpRepository(dbConn)
	kpiRepo := repositories.NewKPIRepository(dbConn)
	eventLogRepo := repositories.NewEventLogRepository(dbConn)

	// --- СЕРВИСЫ ---
	lineAPI := lineapi.NewService(cfg.Line.ProfileAPIBase, cfg.Line.ProfileTimeout)
	settingsService := services.NewSettingsService(settingsRepo, cacheRepo, logger)
	contactResolver := services.NewContactResolver(contactRepo, lineAPI, settingsService, logger)
	ticketRouter := services.NewTicketRouter(ticketRepo, channelTagRepo, stageRepo, settingsService, bus, logger)
	channelResolver := services.NewChannelResolver(channelRepo, settingsService, logger)
	webhookService := services.NewLineWebhookService(contactResolver, ticketRouter, eventLogRepo, settingsService, logger)
	followUpService := services.NewFollowUpService(policyRepo, followUpRepo, ticketRepo, logger)
	kpiService := services.NewKPIService(kpiRepo, followUpRepo, teamRepo, userRepo, settingsService, logger)
	ticketService := services.NewTicketService(ticketRepo, stageRepo, bus, logger)
	authService := services.NewAuthService(userRepo, jwtSvc, logger)
	channelService := services.NewChannelService(channelRepo, logger)
	policyService := services.NewPolicyService(policyRepo, logger)
	contactService := services.NewContactService(contactRepo, logger)
	eventLogService := services.NewEventLogService(eventLogRepo)

	// --- СЛУШАТЕЛИ ---
	listeners.NewFollowUpListener(followUpService, logger).Register(bus)

	// --- ПЛАНИРОВЩИК ---
	registerJobs(sched, cfg, followUpService, kpiService)

	// --- РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runWebhookRouter(e, webhookService, channelResolver, settingsService, cfg, logger)
	runAuthRouter(api, authService, logger)
	runChannelRouter(secureGroup, channelService, logger)
	runPolicyRouter(secureGroup, policyService, logger)
	runContactRouter(secureGroup, contactService, logger)
	runTicketRouter(secureGroup, ticketService, logger)
	runKPIRouter(secureGroup, kpiService, logger)
	runEventLogRouter(secureGroup, eventLogService, logger)
	runSettingsRouter(secureGroup, settingsService, logger)

	logger.Info("InitRouter: создание маршрутов завершено")
}

func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	followUpService services.FollowUpServiceInterface,
	kpiService services.KPIServiceInterface,
) {
	sched.AddJob(scheduler.Job{
		Name:  "escalation_sweep",
		Every: cfg.Scheduler.EscalationEvery,
		Run:   followUpService.SweepEscalations,
	})
	sched.AddJob(scheduler.Job{
		Name:  "kpi_daily_rebuild",
		Every: cfg.Scheduler.KPIDailyEvery,
		Run:   kpiService.RebuildDaily,
	})
	sched.AddJob(scheduler.Job{
		Name:  "kpi_summary_rebuild",
		Every: cfg.Scheduler.KPISummaryEvery,
		Run:   kpiService.RebuildSummary,
	})
}
