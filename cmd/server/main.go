package main

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
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/learnhub/learnhub/internal/config"
	"github.com/learnhub/learnhub/internal/handlers"
	"github.com/learnhub/learnhub/internal/logging"
	"github.com/learnhub/learnhub/internal/mykafka"
	"github.com/learnhub/learnhub/internal/ratelimit"
	"github.com/learnhub/learnhub/internal/service"
	httpserver "github.com/learnhub/learnhub/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	var blockStore ratelimit.BlockStore
	if configuration.REDIS_ADDR != "" {
		rdb := redis.NewClient(&redis.Options{Addr: configuration.REDIS_ADDR})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping failed: %v", err)
		}
		blockStore = ratelimit.NewRedisStore(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process block store")
		blockStore = ratelimit.NewMemoryStore()
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	tokenSvc := &service.TokenService{
		DB:            db,
		Cache:         blockStore,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
		AccessTTL:     configuration.AccessTTL,
		RefreshTTL:    configuration.RefreshTTL,
	}
	authSvc := &service.AuthService{
		DB:               db,
		Tokens:           tokenSvc,
		Limiter:          blockStore,
		Producer:         producer,
		LoginBlockTTL:    configuration.LoginBlockTTL,
		RegisterBlockTTL: configuration.RegisterBlockTTL,
	}
	profileSvc := &service.ProfileService{DB: db}
	courseSvc := &service.CourseService{DB: db, Producer: producer}
	enrollmentSvc := &service.EnrollmentService{DB: db, Producer: producer}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	deps := httpserver.Deps{
		Tokens:            tokenSvc,
		AuthHandler:       &handlers.AuthHandler{Auth: authSvc, Tokens: tokenSvc, Profiles: profileSvc},
		CourseHandler:     &handlers.CourseHandler{Courses: courseSvc, Enrollments: enrollmentSvc},
		EnrollmentHandler: &handlers.EnrollmentHandler{Enrollments: enrollmentSvc},
		ProfileHandler:    &handlers.ProfileHandler{Profiles: profileSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.ServerPort,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
