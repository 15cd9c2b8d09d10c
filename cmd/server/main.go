// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobaggregator/internal/config"
	hhservice "jobaggregator/internal/hh/service"
	hhhttp "jobaggregator/internal/hh/transport/http"
	hhtokenrepository "jobaggregator/internal/hhtoken/repository"
	hhtokenservice "jobaggregator/internal/hhtoken/service"
	hhtokenhttp "jobaggregator/internal/hhtoken/transport/http"
	"jobaggregator/internal/metrics"
	tokenrepository "jobaggregator/internal/token/repository"
	userrepository "jobaggregator/internal/user/repository"
	userservice "jobaggregator/internal/user/service"
	userhttp "jobaggregator/internal/user/transport/http"
	vacancyrepository "jobaggregator/internal/vacancy/repository"
	vacancyservice "jobaggregator/internal/vacancy/service"
	vacancyhttp "jobaggregator/internal/vacancy/transport/http"
	"jobaggregator/pkg/crypto"
	"jobaggregator/pkg/db"
	"jobaggregator/pkg/httpclient"
	"jobaggregator/pkg/logger"
	"jobaggregator/pkg/middleware"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	log.Info("Job Aggregator API starting...", zap.String("env", cfg.Env))

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close()
	log.Info("connected to PostgreSQL")

	if cfg.RunMigrations {
		if err := db.Migrate(database); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	metrics.InitMetrics()

	// --- ИНИЦИАЛИЗАЦИЯ СЛОЁВ ---
	var cipher *crypto.Cipher
	if cfg.EncryptionSecret != "" {
		if cipher, err = crypto.NewCipher(cfg.EncryptionSecret); err != nil {
			log.Fatal("failed to init token cipher", zap.Error(err))
		}
	} else {
		log.Warn("ENCRYPTION_SECRET is not set, hh.ru tokens are stored in plain text")
	}

	// пользователи
	userRepo := userrepository.NewPostgresUserRepository(database)
	refreshTokenRepo := tokenrepository.NewRefreshTokenRepository(database)
	userService := userservice.NewUserService(userRepo, refreshTokenRepo, cfg.JWTSecret, log)
	userHandler := userhttp.NewHandler(userService, log)

	// hh.ru: OAuth-токены и API
	hhHTTPClient := httpclient.New(30*time.Second, cfg.HH.ProxyAddr, log)
	hhTokenRepo := hhtokenrepository.NewPostgresTokenRepository(database, cipher)
	exchanger := hhtokenservice.NewOAuthExchanger(cfg.HH, hhHTTPClient)
	tokenManager := hhtokenservice.NewManager(hhTokenRepo, exchanger, log)
	hhTokenHandler := hhtokenhttp.NewHandler(tokenManager, cfg.JWTSecret, log)

	hhClient := hhservice.NewClient(cfg.HH, hhHTTPClient, log)
	hhHandler := hhhttp.NewHandler(tokenManager, hhClient, userService, log)

	// вакансии
	vacancyRepo := vacancyrepository.NewPostgresVacancyRepository(sqlx.NewDb(database, "postgres"))
	vacancyHandler := vacancyhttp.NewVacancyHandler(vacancyservice.NewService(vacancyRepo), log)

	// фоновые задачи живут до сигнала остановки
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if cfg.Schedule.Disabled {
		log.Info("vacancy fetch task disabled")
	} else {
		fetchTask := vacancyservice.NewFetchTask(hhClient, vacancyRepo, cfg.Schedule, log)
		go fetchTask.Start(bgCtx)
	}
	go cleanupRefreshTokens(bgCtx, refreshTokenRepo, log)

	authLimiter := middleware.NewRateLimiter(10, time.Minute, log)
	go authLimiter.RunCleanup(bgCtx.Done())

	// --- РОУТЕР ---
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.ValidateRequest)

	// Публичные роуты
	r.Group(func(ar chi.Router) {
		ar.Use(authLimiter.Middleware)
		ar.Post("/auth/register", userHandler.Register)
		ar.Post("/auth/register/telegram", userHandler.RegisterTelegram)
		ar.Post("/auth/login", userHandler.Login)
		ar.Post("/auth/refresh", userHandler.Refresh)
		ar.Post("/auth/logout", userHandler.Logout)
		ar.Post("/users", userHandler.Create)
		ar.Post("/users/telegram", userHandler.CreateTelegramUser)
	})

	// hh.ru возвращает пользователя сюда без нашего JWT, личность берется из state
	r.Get("/api/v1/auth/hh/callback", hhTokenHandler.Callback)

	r.Route("/vacancies", vacancyHandler.Routes)

	// 🔐 Защищённая группа маршрутов
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(cfg.JWTSecret))

		pr.Get("/users/current", userHandler.Current)
		pr.Get("/users/telegram/{telegram_id}", userHandler.GetTelegramUser)
		pr.Get("/users/telegram/user/{user_id}", userHandler.GetTelegramUserByUserID)
		pr.Get("/users/{id}", userHandler.Get)
		pr.Delete("/users/{id}", userHandler.Delete)

		pr.Get("/api/v1/auth/hh/login", hhTokenHandler.Login)
		pr.Get("/api/v1/auth/hh/status", hhTokenHandler.Status)

		pr.Route("/api/v1/hh", hhHandler.Routes)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, database); err != nil {
			log.Error("database health check failed", zap.Error(err))
			middleware.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPassword)).Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown на сигналы ОС
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info("shutdown signal received, starting graceful shutdown")
		stopBackground()
		shutdownServer(server, log)
	}()

	log.Info("server running", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}

func shutdownServer(server *http.Server, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// cleanupRefreshTokens раз в час удаляет просроченные refresh-токены
func cleanupRefreshTokens(ctx context.Context, repo *tokenrepository.RefreshTokenRepository, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Error("failed to delete expired refresh tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("expired refresh tokens deleted", zap.Int64("count", n))
			}
		}
	}
}
