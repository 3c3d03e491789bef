package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"

	"github.com/srgjo27/concert-reservation/internal/adapter/handler"
	"github.com/srgjo27/concert-reservation/internal/adapter/queue"
	"github.com/srgjo27/concert-reservation/internal/adapter/relay"
	"github.com/srgjo27/concert-reservation/internal/adapter/repository/postgres"
	"github.com/srgjo27/concert-reservation/internal/adapter/repository/redisrepo"
	"github.com/srgjo27/concert-reservation/internal/config"
	"github.com/srgjo27/concert-reservation/internal/core/services"
	"github.com/srgjo27/concert-reservation/internal/platform/database"
	"github.com/srgjo27/concert-reservation/internal/platform/redisdb"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		log.Fatalf("Failed to connect to db after retries: %v", err)
	}
	defer db.Close()

	log.Printf("Connecting to Redis at %s...", cfg.RedisAddr)
	redisClient, err := redisdb.NewClient(redisdb.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected successfully!")

	publisher, err := queue.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	seatRepo := postgres.NewSeatRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	balanceRepo := postgres.NewBalanceRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	tokenRepo := redisrepo.NewTokenRepository(redisClient)
	seatLocker := redisrepo.NewSeatLocker(redisClient)

	tokenService := services.NewTokenService(tokenRepo, logger, cfg.AdmissionTTL)
	reservationService := services.NewReservationService(
		seatRepo, reservationRepo, balanceRepo, tokenRepo, seatLocker, logger, cfg.ReservationHold,
	)
	outboxRelay := relay.NewOutboxRelay(outboxRepo, publisher, logger)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	go tokenService.RunSweepWorker(workerCtx, cfg.TokenSweepInterval)
	go reservationService.RunCleanupWorker(workerCtx, cfg.CleanupInterval)
	go outboxRelay.Run(workerCtx, cfg.RelayInterval)

	tokenHandler := handler.NewTokenHandler(tokenService)
	reservationHandler := handler.NewReservationHandler(reservationService, tokenService)
	seatHandler := handler.NewSeatHandler(seatRepo)

	e := echo.New()
	e.HideBanner = true

	e.POST("/v1/tokens", tokenHandler.Issue)
	e.GET("/v1/tokens/:id", tokenHandler.Status)
	e.POST("/v1/tokens/:id/extend", tokenHandler.Extend)
	e.POST("/v1/tokens/:id/activate", tokenHandler.Activate)
	e.DELETE("/v1/tokens/:id", tokenHandler.Abandon)
	e.GET("/v1/concerts/:id/seats", seatHandler.Available)
	e.GET("/v1/concerts/:id/seats/count", seatHandler.CountAvailable)
	e.POST("/v1/reservations", reservationHandler.Reserve)
	e.POST("/v1/reservations/:id/pay", reservationHandler.Pay)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		log.Printf("Server starting on port %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
