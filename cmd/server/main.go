package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/study-ui/internal/config"
	"github.com/iliyamo/study-ui/internal/database"
	"github.com/iliyamo/study-ui/internal/handler"
	"github.com/iliyamo/study-ui/internal/middleware"
	"github.com/iliyamo/study-ui/internal/queue"
	"github.com/iliyamo/study-ui/internal/repository"
	"github.com/iliyamo/study-ui/internal/router"
	queue_publisher "github.com/iliyamo/study-ui/internal/service"
	"github.com/iliyamo/study-ui/internal/tracker"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable: response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events handler.EventPublisher
	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		events = queue_publisher.New(qcfg.URL)
		if qcfg.ConsumerOn {
			go func() {
				if err := queue.StartConsumer(ctx, qcfg.URL, qcfg.LogDir); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("events-consumer stopped: %v", err)
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	router.RegisterRoutes(e)

	rl := config.LoadRateLimitConfig()
	v1 := e.Group("/v1", middleware.NewTokenBucket(rl, rdb))
	router.RegisterSeating(v1,
		handler.NewSeatingHandler(config.LoadSeatingConfig(), events),
		middleware.ResponseCache(config.LoadCacheConfig(), rdb))
	router.RegisterTracker(v1,
		handler.NewTrackerHandler(tracker.NewService(repository.NewStudyRowRepo(db)), events),
		cfg.JWTSecret,
		middleware.NewTokenBucket(rl.Writes(), rdb))

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
