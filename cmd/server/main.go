package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/adapters/cache"
	"github.com/khoahotran/program-catalog/adapters/event"
	httpAdapter "github.com/khoahotran/program-catalog/adapters/http"
	"github.com/khoahotran/program-catalog/adapters/persistence"
	authUC "github.com/khoahotran/program-catalog/internal/application/usecase/auth"
	categoryUC "github.com/khoahotran/program-catalog/internal/application/usecase/category"
	languageUC "github.com/khoahotran/program-catalog/internal/application/usecase/language"
	programUC "github.com/khoahotran/program-catalog/internal/application/usecase/program"
	searchUC "github.com/khoahotran/program-catalog/internal/application/usecase/search"
	"github.com/khoahotran/program-catalog/internal/config"
	"github.com/khoahotran/program-catalog/pkg/auth"
	"github.com/khoahotran/program-catalog/pkg/logger"
	"github.com/khoahotran/program-catalog/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start Program Catalog API Server...")

	tp, err := tracing.NewTracerProvider(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient := persistence.NewRedisClient(cfg, appLogger)
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	programRepo := persistence.NewPostgresProgramRepo(dbPool, appLogger)
	categoryRepo := persistence.NewPostgresCategoryRepo(dbPool, appLogger)
	languageRepo := persistence.NewPostgresLanguageRepo(dbPool, appLogger)
	metadataRepo := persistence.NewPostgresMetadataRepo(dbPool)
	allocator := persistence.NewPostgresAllocator(dbPool, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	catalogCache := cache.NewRedisCache(redisClient, cfg.Redis.OpTimeout, appLogger)

	// Use Cases
	programDeps := programUC.Deps{
		Programs:   programRepo,
		Categories: categoryRepo,
		Languages:  languageRepo,
		Allocator:  allocator,
		Cache:      catalogCache,
		Assembler:  programUC.NewAssembler(categoryRepo, languageRepo, userRepo, metadataRepo, appLogger),
		Searcher:   searchUC.NewWindowSearcher(programRepo, cfg.Search.Window),
		SearchLogs: kafkaClient,
		TTL: programUC.TTLs{
			List:   cfg.Cache.ListTTL,
			Search: cfg.Cache.SearchTTL,
			Item:   cfg.Cache.ItemTTL,
		},
		QueryTimeout: cfg.DB.QueryTimeout,
		Logger:       appLogger,
	}
	categoryUseCase := categoryUC.NewCategoryUseCase(categoryRepo, programRepo, allocator, catalogCache, cfg.Cache.LookupTTL, appLogger)
	languageUseCase := languageUC.NewLanguageUseCase(languageRepo, programRepo, allocator, catalogCache, cfg.Cache.LookupTTL, appLogger)
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	refreshUseCase := authUC.NewRefreshUseCase(userRepo, jwtSvc, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Program:  httpAdapter.NewProgramHandler(programDeps),
		Category: httpAdapter.NewCategoryHandler(categoryUseCase),
		Language: httpAdapter.NewLanguageHandler(languageUseCase),
		Auth:     httpAdapter.NewAuthHandler(loginUseCase, refreshUseCase),
		Health: httpAdapter.NewHealthHandler(map[string]httpAdapter.HealthCheck{
			"postgres": dbPool.Ping,
		}),
	}

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		httpAdapter.MetricsMiddleware(),
		httpAdapter.ErrorMiddleware(appLogger),
	)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httpAdapter.RegisterRoutes(router, handlers, jwtSvc, appLogger)

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
