package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pasturelink/pasturelink-backend/internal/db"
	"github.com/pasturelink/pasturelink-backend/internal/handlers"
	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/middleware"
	"github.com/pasturelink/pasturelink-backend/internal/observability"
	"github.com/pasturelink/pasturelink-backend/internal/realtime/bus"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/server"
	"github.com/pasturelink/pasturelink-backend/internal/services"
	"github.com/pasturelink/pasturelink-backend/internal/sse"
	"github.com/pasturelink/pasturelink-backend/internal/taxonomy"
	"github.com/pasturelink/pasturelink-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	allowOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)

	// Tracing
	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "pasturelink-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	defer func() {
		if err := shutdownOTel(ctx); err != nil {
			log.Warn("OTel shutdown failed", "error", err)
		}
	}()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Taxonomy
	tax := taxonomy.Default()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	orgRepo := repos.NewOrganizationRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	orderRepo := repos.NewProcessingOrderRepo(thePG, log)
	configRepo := repos.NewCutConfigRepo(thePG, log)
	sheetRepo := repos.NewCutSheetRepo(thePG, log)
	itemRepo := repos.NewCutSheetItemRepo(thePG, log)
	sausageRepo := repos.NewCutSheetSausageRepo(thePG, log)
	modRepo := repos.NewCutSheetModificationRepo(thePG, log)
	removedRepo := repos.NewCutSheetRemovedCutRepo(thePG, log)
	addedRepo := repos.NewCutSheetAddedCutRepo(thePG, log)
	historyRepo := repos.NewCutSheetHistoryRepo(thePG, log)
	packageRepo := repos.NewProducedPackageRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)
	var eventBus bus.Bus
	if utils.GetEnvAsBool("REDIS_BUS_ENABLED", false, log) {
		eventBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Warn("Redis bus init failed, continuing without cross-node fan-out", "error", err)
			eventBus = nil
		} else {
			if err := eventBus.StartForwarder(ctx, func(m sse.Message) { sseHub.Broadcast(m) }); err != nil {
				log.Warn("Redis bus forwarder failed to start", "error", err)
			}
			defer eventBus.Close()
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	notifier := services.NewChangeNotifier(log, sseHub, eventBus)
	authService := services.NewAuthService(thePG, log, userRepo, orgRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	orderService := services.NewOrderService(thePG, log, orderRepo, orgRepo, tax)
	configService := services.NewCutConfigService(thePG, log, configRepo, tax)
	cutSheetService := services.NewCutSheetService(
		thePG,
		log,
		sheetRepo,
		itemRepo,
		sausageRepo,
		modRepo,
		removedRepo,
		addedRepo,
		orderRepo,
		configRepo,
		packageRepo,
		historyRepo,
		tax,
		notifier,
	)
	historyService := services.NewHistoryService(thePG, log, sheetRepo, historyRepo)
	packageService := services.NewPackageService(thePG, log, sheetRepo, packageRepo, historyRepo, tax, notifier)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	cutConfigHandler := handlers.NewCutConfigHandler(configService, tax)
	cutSheetHandler := handlers.NewCutSheetHandler(cutSheetService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	packageHandler := handlers.NewPackageHandler(packageService)
	sseHandler := handlers.NewSSEHandler(sseHub)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if allowOrigins != "" {
		origins = strings.Split(allowOrigins, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		ServiceName:      "pasturelink-backend",
		AllowOrigins:     origins,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		OrderHandler:     orderHandler,
		CutSheetHandler:  cutSheetHandler,
		CutConfigHandler: cutConfigHandler,
		HistoryHandler:   historyHandler,
		PackageHandler:   packageHandler,
		SSEHandler:       sseHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
