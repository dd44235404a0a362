package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/teamdesk/console/internal/handler"
	"github.com/teamdesk/console/internal/remote"
	"github.com/teamdesk/console/internal/service"
	"github.com/teamdesk/console/internal/store"
	"github.com/teamdesk/console/pkg/config"
	"github.com/teamdesk/console/pkg/logger"
	corsmiddleware "github.com/teamdesk/console/pkg/middleware/cors"
	reqidmiddleware "github.com/teamdesk/console/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	slot, err := newSlot(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open durable slot", "backend", cfg.Slot.Backend, "error", err)
	}

	metrics := service.NewMetricsService()
	cacheStore := store.NewCacheStore(slot, logr)
	transport := remote.NewClient(cfg.Remote, logr)
	attendance := service.NewAttendanceService(cacheStore, transport, validator.New(), logr, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := attendance.StartSession(ctx); err != nil {
		// The cached log is still usable; submissions will fail employee
		// resolution until the backend comes back.
		logr.Sugar().Warnw("session started without employee snapshot", "error", err)
	}
	cancel()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(metrics.GinMiddleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	attendanceHandler := handler.NewAttendanceHandler(attendance, cfg.Export.Title)
	employeeHandler := handler.NewEmployeeHandler(attendance)

	r.GET("/employees", employeeHandler.List)
	r.GET("/attendance", attendanceHandler.List)
	r.POST("/attendance", attendanceHandler.Submit)
	r.PATCH("/attendance/:id/status", attendanceHandler.SetStatus)
	if cfg.Export.Enabled {
		r.GET("/attendance/export", attendanceHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("console starting", "addr", addr, "env", cfg.Env, "slot_backend", cfg.Slot.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("console failed", "error", err)
	}
}

func newSlot(cfg *config.Config) (store.Slot, error) {
	switch cfg.Slot.Backend {
	case config.SlotBackendRedis:
		client, err := store.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store.NewRedisSlot(client, cfg.Slot.Key), nil
	case config.SlotBackendFile:
		return store.NewFileSlot(cfg.Slot.Dir, cfg.Slot.Key)
	default:
		return nil, fmt.Errorf("unknown slot backend %q", cfg.Slot.Backend)
	}
}
