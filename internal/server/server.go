package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lemonqwest/lemonqwest/internal/clock"
	"github.com/lemonqwest/lemonqwest/internal/events"
	"github.com/lemonqwest/lemonqwest/internal/handler"
	"github.com/lemonqwest/lemonqwest/internal/metrics"
	"github.com/lemonqwest/lemonqwest/internal/middleware"
	"github.com/lemonqwest/lemonqwest/internal/service"
	"github.com/lemonqwest/lemonqwest/internal/store"
	ws "github.com/lemonqwest/lemonqwest/internal/websocket"
)

// Config holds the server's tunable knobs.
type Config struct {
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	bus          *events.Bus
	registry     *prometheus.Registry
	authH        *handler.AuthHandler
	userH        *handler.UserHandler
	taskH        *handler.TaskHandler
	achievementH *handler.AchievementHandler
	progressH    *handler.ProgressHandler
	rewardH      *handler.RewardHandler
	settingsH    *handler.SettingsHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	collector    *metrics.Collector
	cfg          Config
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	bus := events.NewBus(logger.With("component", "events"))
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	clk := clock.System{}

	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)
	sessionStore := store.NewSessionStore(db)
	settingsStore := store.NewSettingsStore(db)

	uow := store.NewUnitOfWork(db)
	taskSvc := service.NewTaskService(uow, bus, clk, collector, logger.With("component", "task"))
	rewardSvc := service.NewRewardService(uow, bus, clk, collector, logger.With("component", "reward"))
	userSvc := service.NewUserService(uow, bus, logger.With("component", "user"))
	achievementSvc := service.NewAchievementService(uow, clk)
	progressSvc := service.NewProgressService(uow, clk)

	return &Server{
		db:           db,
		hub:          hub,
		bus:          bus,
		registry:     registry,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		userH:        handler.NewUserHandler(userStore, userSvc, logger.With("component", "user_handler")),
		taskH:        handler.NewTaskHandler(taskStore, userStore, taskSvc, logger.With("component", "task_handler")),
		achievementH: handler.NewAchievementHandler(achievementSvc),
		progressH:    handler.NewProgressHandler(progressSvc),
		rewardH:      handler.NewRewardHandler(rewardStore, rewardSvc, logger.With("component", "reward_handler")),
		settingsH:    handler.NewSettingsHandler(settingsStore, logger.With("component", "settings_handler")),
		sessionStore: sessionStore,
		userStore:    userStore,
		rateLimiter:  middleware.NewRateLimiter(),
		collector:    collector,
		cfg:          cfg,
		logger:       logger,
	}
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Bus returns the domain event bus.
func (s *Server) Bus() *events.Bus {
	return s.bus
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /api/members", s.authH.Members)
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", metrics.Handler(s.registry))

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"), s.collector)(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.cfg.LoginRateLimit, s.cfg.LoginRateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// User routes
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.Handle("POST /api/users", middleware.RequireCaregiver(http.HandlerFunc(s.userH.Create)))
	mux.Handle("PUT /api/users/{id}", middleware.RequireCaregiver(http.HandlerFunc(s.userH.Update)))
	mux.HandleFunc("POST /api/users/{id}/balance", s.userH.AdjustBalance)

	// PIN routes
	mux.HandleFunc("POST /api/users/{id}/pin", s.userH.SetPIN)
	mux.HandleFunc("DELETE /api/users/{id}/pin", s.userH.ClearPIN)
	mux.HandleFunc("POST /api/users/{id}/pin/verify", s.userH.VerifyPIN)

	// Task routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.Handle("POST /api/tasks", middleware.RequireCaregiver(http.HandlerFunc(s.taskH.Create)))
	mux.Handle("PUT /api/tasks/{id}", middleware.RequireCaregiver(http.HandlerFunc(s.taskH.Update)))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/undo", s.taskH.Undo)
	mux.HandleFunc("GET /api/task-categories", s.taskH.Categories)

	// Achievement and progress routes
	mux.HandleFunc("GET /api/users/{id}/achievements", s.achievementH.ListForUser)
	mux.HandleFunc("GET /api/users/{id}/progress/daily", s.progressH.Daily)

	// Reward routes
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.Handle("POST /api/rewards", middleware.RequireCaregiver(http.HandlerFunc(s.rewardH.Create)))
	mux.Handle("PUT /api/rewards/{id}", middleware.RequireCaregiver(http.HandlerFunc(s.rewardH.Update)))
	mux.Handle("DELETE /api/rewards/{id}", middleware.RequireCaregiver(http.HandlerFunc(s.rewardH.Delete)))
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("GET /api/users/{id}/redemptions", s.rewardH.Redemptions)

	// Settings routes
	mux.HandleFunc("GET /api/settings/theme", s.settingsH.GetTheme)
	mux.Handle("PUT /api/settings/theme", middleware.RequireCaregiver(http.HandlerFunc(s.settingsH.UpdateTheme)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
