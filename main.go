// ticX is a ticket-tracking REST service. main wires the pieces together:
// configuration, the bounded connection pool, schema migrations, the
// metrics registry, the auth/user/ticket services, and the composed
// request pipeline, then runs the HTTP server until a shutdown signal.
//
// @title ticX API
// @version 1.0
// @description Ticket tracking service with Basic-auth login and bearer-token protected CRUD.
// @BasePath /
// @securityDefinitions.basic BasicAuth
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/ticx-go/apperror"
	"github.com/user/ticx-go/auth"
	"github.com/user/ticx-go/config"
	"github.com/user/ticx-go/db"
	"github.com/user/ticx-go/metrics"
	"github.com/user/ticx-go/tickets"
	"github.com/user/ticx-go/users"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not loaded", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.DB.MigrationsPath != "" {
		if err := db.RunMigrations(cfg.DB.URI, cfg.DB.MigrationsPath); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(db.PoolConfig{
		URI:            cfg.DB.URI,
		Size:           cfg.DB.PoolSize,
		AcquireTimeout: cfg.DB.AcquireTimeout,
	})
	if err != nil {
		log.Error("failed to create pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	m := metrics.New()
	m.RegisterPoolStats(pool.Stats)

	store := db.NewStore(pool, log)
	store.OnQuery = m.ObserveQuery

	authService := auth.NewService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	authHandlers := auth.NewHandlers(authService, log)
	userHandlers := users.NewHandlers(users.NewService(store))
	ticketHandlers := tickets.NewHandlers(tickets.NewService(store))

	r := newRouter(log, m, authService, authHandlers, userHandlers, ticketHandlers)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newRouter composes the request pipeline. Stage order is fixed here:
// counters outermost so they observe every request and every final
// status, then request identity and access logging, then panic recovery,
// then the routing split into the Basic-auth login scope, the
// token-protected API scope, and the unguarded metrics scrape.
func newRouter(
	log *slog.Logger,
	m *metrics.Metrics,
	authService *auth.Service,
	authHandlers *auth.Handlers,
	userHandlers *users.Handlers,
	ticketHandlers *tickets.Handlers,
) chi.Router {
	r := chi.NewRouter()

	r.Use(m.CountRequests)
	r.Use(m.CountResponses)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireBasic(authService, log))
			r.Get("/login", authHandlers.HandleLogin())
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireToken(authService, log))
		r.Route("/user", userHandlers.RegisterRoutes)
		r.Route("/ticket", ticketHandlers.RegisterRoutes)
	})

	r.Method(http.MethodGet, "/prom", m.Handler())

	return r
}

// requestLogger logs one line per request with the final status, even
// when an inner stage short-circuited. Credentials and tokens are never
// part of the logged fields.
func requestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

// recoverer converts handler panics into taxonomy errors so a defect in
// one request cannot take the process down or leak a stack trace to the
// client.
func recoverer(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Error("panic recovered",
						"panic", rvr,
						"method", r.Method,
						"path", r.URL.Path,
					)
					auth.WriteError(w, r, apperror.NewUnknown(nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
