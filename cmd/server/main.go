package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/config"
	cronrunner "github.com/mgjeanpierre85-cpu/ml-forex/internal/cron"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/db"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/handler"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/logger"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/mirror"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/notify"
	gormrepository "github.com/mgjeanpierre85-cpu/ml-forex/internal/repository/gorm"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/service"
)

func main() {
	cfgPath := os.Getenv("MLFX_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("MLFX_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.Migrate(dbConn); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	csvMirror := mirror.NewCSV(cfg.Mirror.Path)
	telegram := notify.NewTelegram(cfg.Telegram)

	signalService := &service.SignalService{
		Repo:     store,
		Mirror:   csvMirror,
		Notifier: telegram,
		Logger:   logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	signalHandler := &handler.SignalHandler{
		Service: signalService,
		Repo:    store,
		Logger:  logger,
	}
	signalHandler.Register(engine)
	exportHandler := &handler.ExportHandler{
		Mirror:     csvMirror,
		Service:    signalService,
		Logger:     logger,
		AdminToken: cfg.Admin.Token,
	}
	exportHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Housekeeping.Enabled {
		maxAge := cfg.Housekeeping.MaxAge
		_, err := cronRunner.Add(cfg.Housekeeping.Schedule, func(ctx context.Context) {
			cutoff := time.Now().UTC().Add(-maxAge)
			if _, err := signalService.MarkStale(ctx, cutoff); err != nil {
				logger.Warn("housekeeping run failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register housekeeping failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
