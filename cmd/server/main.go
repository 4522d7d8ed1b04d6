package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "fedforum/internal/domain/apub"
	_ "fedforum/internal/domain/common"
	_ "fedforum/internal/domain/vote"
	"fedforum/internal/pkg/config"
	"fedforum/internal/pkg/middleware"
	"fedforum/internal/pkg/registry"
	"fedforum/internal/pkg/worker"
	"fedforum/pkg/cache"
	"fedforum/pkg/database"
	"fedforum/pkg/logger"
	"fedforum/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger.Init(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	db := database.InitDatabase()
	rdb := database.InitRedis()
	cacheService := cache.NewMultiLevelCache(
		cache.NewRedisCache(rdb, "fedforum:"), time.Minute)
	collector := metrics.NewCollector()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database.NewPoolMonitor(db, collector, 15*time.Second).Start(ctx)

	fedCfg := config.GlobalConfig.Federation
	deliverer := worker.NewHTTPDeliverer(30 * time.Second)
	delivery := worker.NewDeliveryQueue(deliverer, collector, fedCfg.Domain,
		fedCfg.DeliveryWorkers, fedCfg.DeliveryQueueSize)
	delivery.Start(ctx)

	gin.SetMode(ginMode(config.GlobalConfig.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(collector),
		cors.Default())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	moduleCtx := &registry.ModuleContext{
		DB:       db,
		Redis:    rdb,
		Router:   router,
		Cache:    cacheService,
		Metrics:  collector,
		Delivery: delivery,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		log.Fatalf("Failed to initialize modules: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("http server exited", zap.Error(err))
		}
	}()
	logger.Log.Info("server started", zap.String("port", config.GlobalConfig.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Log.Info("shutting down", zap.String("signal", sig.String()))

	// Stop the delivery workers; queued-but-undelivered events are
	// dropped rather than retried past shutdown.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("error shutting down http server", zap.Error(err))
	}
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
