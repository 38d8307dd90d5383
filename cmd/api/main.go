package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medbook/booking-api/internal/config"
	"github.com/medbook/booking-api/internal/email"
	"github.com/medbook/booking-api/internal/handler"
	appointmenthandler "github.com/medbook/booking-api/internal/handler/appointment"
	authhandler "github.com/medbook/booking-api/internal/handler/auth"
	userhandler "github.com/medbook/booking-api/internal/handler/user"
	"github.com/medbook/booking-api/internal/middleware"
	"github.com/medbook/booking-api/internal/repository/postgres"
	redisrepo "github.com/medbook/booking-api/internal/repository/redis"
	"github.com/medbook/booking-api/internal/router"
	appointmentservice "github.com/medbook/booking-api/internal/service/appointment"
	authservice "github.com/medbook/booking-api/internal/service/auth"
	userservice "github.com/medbook/booking-api/internal/service/user"
	"github.com/medbook/booking-api/pkg/logger"
	"github.com/medbook/booking-api/pkg/security"
	"github.com/medbook/booking-api/pkg/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer redisClient.Close()

	var mailer email.Service
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(cfg.SMTP)
	} else {
		mailer = email.NewNoopMailer(log)
	}

	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	codeStore := redisrepo.NewCodeStore(redisClient)

	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	issuer := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL())

	authSvc := authservice.NewService(userRepo, codeStore, mailer, hasher, issuer, log)
	userSvc := userservice.NewService(userRepo, log)
	appointmentSvc := appointmentservice.NewService(appointmentRepo, userRepo, log)

	gate := middleware.NewAuthMiddleware(issuer, userRepo)

	engine := router.New(cfg, router.Handlers{
		Auth:        authhandler.NewHandler(authSvc, cfg.JWT.TTL()),
		User:        userhandler.NewHandler(userSvc),
		Appointment: appointmenthandler.NewHandler(appointmentSvc),
		Health:      handler.NewHealthHandler(db),
		Gate:        gate,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
	log.Info("server stopped")
}
