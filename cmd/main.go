// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventloom/eventloom/internal/auth"
	"github.com/eventloom/eventloom/internal/config"
	"github.com/eventloom/eventloom/internal/database"
	"github.com/eventloom/eventloom/internal/handler"
	"github.com/eventloom/eventloom/internal/model"
	"github.com/eventloom/eventloom/internal/payment"
	"github.com/eventloom/eventloom/internal/repository"
	"github.com/eventloom/eventloom/internal/service"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// ── 1. Connect to PostgreSQL and apply migrations ─────────────────────
	pool, err := database.NewPool(ctx, cfg.DSN(), log)
	if err != nil {
		log.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		log.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("connected to postgres, schema up to date")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	ticketRepo := repository.NewTicketTypeRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	stripe := payment.NewClient(payment.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		BaseURL:       cfg.StripeBaseURL,
		SuccessURL:    cfg.PaymentSuccessURL,
		CancelURL:     cfg.PaymentCancelURL,
	})
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	userSvc := service.NewUserService(userRepo, tokens, log)
	eventSvc := service.NewEventService(eventRepo, ticketRepo, log)
	bookingSvc := service.NewBookingService(bookingRepo, eventRepo, ticketRepo, stripe, log)
	paymentSvc := service.NewPaymentService(bookingRepo, ticketRepo, stripe, cfg.PlatformFeePercent, log)

	development := cfg.Environment == "development"
	userHandler := handler.NewUserHandler(userSvc, development)
	eventHandler := handler.NewEventHandler(eventSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	webhookHandler := handler.NewWebhookHandler(paymentSvc, log)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger(log))
	r.Use(handler.Metrics)

	r.Get("/health", handler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	// Auth
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/password-reset/request", userHandler.RequestPasswordReset)
		r.Post("/password-reset/confirm", userHandler.ConfirmPasswordReset)
	})

	// Public event browsing
	r.Get("/events", eventHandler.List)
	r.Get("/events/{id}", eventHandler.Get)

	// Organizer event management
	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware)
		r.Use(auth.RequireRole(model.RoleOrganizer))

		r.Post("/events", eventHandler.Create)
		r.Get("/events/mine", eventHandler.ListMine)
		r.Put("/events/{id}", eventHandler.Update)
		r.Delete("/events/{id}", eventHandler.Delete)
		r.Get("/organizers/revenue", bookingHandler.OrganizerRevenue)
	})

	// Attendee bookings
	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware)

		r.Post("/bookings", bookingHandler.Create)
		r.Get("/bookings", bookingHandler.List)
		r.Get("/bookings/receipts", bookingHandler.Receipts)
	})

	// Payment provider webhook (authenticated by signature, not by token)
	r.Post("/payments/webhook", webhookHandler.HandleWebhook)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
