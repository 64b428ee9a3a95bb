// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rhymove/enrollment-backend/internal/auth"
	"github.com/rhymove/enrollment-backend/internal/config"
	"github.com/rhymove/enrollment-backend/internal/database"
	"github.com/rhymove/enrollment-backend/internal/handler"
	"github.com/rhymove/enrollment-backend/internal/payment"
	"github.com/rhymove/enrollment-backend/internal/repository"
	"github.com/rhymove/enrollment-backend/internal/service"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	offeringRepo := repository.NewOfferingRepository(pool)
	selectionRepo := repository.NewSelectionRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	gate := auth.NewGate(tokens, userRepo)
	authorizer := payment.NewMidtransAuthorizer(cfg.MidtransServerKey, cfg.MidtransProduction, cfg.ProviderTimeout)

	userSvc := service.NewUserService(userRepo, tokens)
	offeringSvc := service.NewOfferingService(offeringRepo)
	selectionSvc := service.NewSelectionService(selectionRepo)
	paymentSvc := service.NewPaymentService(paymentRepo, offeringRepo, authorizer)

	h := handler.New(gate, userSvc, offeringSvc, selectionSvc, paymentSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for the frontend

	// Health
	r.Get("/health", handler.HealthCheck)

	// Sessions
	r.Post("/auth/token", h.IssueToken)

	// API routes
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/role/{email}", h.GetRole)
		r.Patch("/{email}/role", h.SetRole)
		r.Delete("/{id}", h.DeleteUser)
	})

	r.Get("/instructors", h.ListInstructors)
	r.Get("/instructors/popular", h.ListPopularInstructors)

	r.Route("/offerings", func(r chi.Router) {
		r.Post("/", h.CreateOffering)
		r.Get("/", h.ListOfferings)
		r.Get("/popular", h.ListPopularOfferings)
		r.Get("/pending", h.ListPendingOfferings)
		r.Get("/mine", h.ListMyOfferings)
		r.Get("/{id}", h.GetOffering)
		r.Patch("/{id}/status", h.SetOfferingStatus)
		r.Patch("/{id}/feedback", h.AttachFeedback)
	})

	r.Route("/selections", func(r chi.Router) {
		r.Post("/", h.CreateSelection)
		r.Get("/", h.ListSelections)
		r.Delete("/{id}", h.DeleteSelection)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/intent", h.InitiateCharge)
		r.Post("/confirm", h.ConfirmPayment)
		r.Get("/", h.ListPayments)
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
