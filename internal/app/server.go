// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"polisure-service/internal/config"
	"polisure-service/internal/db"
	blacklistdomain "polisure-service/internal/domain/blacklist"
	auditHandler "polisure-service/internal/handlers/audit"
	authHandler "polisure-service/internal/handlers/auth"
	blacklistHandler "polisure-service/internal/handlers/blacklist"
	policyHandler "polisure-service/internal/handlers/policy"
	"polisure-service/internal/middleware"
	auditlog "polisure-service/internal/pkg/audit"
	"polisure-service/internal/pkg/ratelimit"
	"polisure-service/internal/pkg/session"
	"polisure-service/internal/repository/postgres"
	authUsecase "polisure-service/internal/service/auth"
	blacklistUsecase "polisure-service/internal/service/blacklist"
	policyUsecase "polisure-service/internal/service/policy"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	sweepStop  chan struct{}
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine, sweepStop: make(chan struct{})}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis (only when a shared store backend is selected) -----
	var redisClient *redis.Client
	if s.cfg.SessionStore == "redis" || s.cfg.RateLimitStore == "redis" {
		redisClient, err = db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			DB:       0,
			PoolSize: 10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("[REDIS] ✅ Connected successfully")
	}

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Request validation -----
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		blacklistdomain.RegisterValidations(v)
	}

	// ----- Audit Log -----
	auditLog := auditlog.NewLog(s.cfg.AuditCap, logger)

	// ----- Rate Limiters -----
	loginLimiter := s.newLimiter(redisClient, "rl:login", ratelimit.Config{
		MaxRequests: s.cfg.LoginMaxAttempts,
		Window:      s.cfg.LoginWindow,
	})
	verifyLimiter := s.newLimiter(redisClient, "rl:verify", ratelimit.Config{
		MaxRequests: s.cfg.LoginMaxAttempts,
		Window:      s.cfg.LoginWindow,
	})
	apiLimiter := s.newLimiter(redisClient, "rl:api", ratelimit.Config{
		MaxRequests: s.cfg.APIMaxRequests,
		Window:      s.cfg.APIWindow,
	})

	// ----- Session Manager -----
	var sessionStore session.Store
	if s.cfg.SessionStore == "redis" {
		sessionStore = session.NewRedisStore(redisClient)
	} else {
		sessionStore = session.NewMemoryStore()
	}
	sessionManager := session.NewManager(sessionStore, session.DefaultConfig())

	// ----- Repositories -----
	principalRepo := postgres.NewPrincipalRepository(pool)
	policyRepo := postgres.NewPolicyRepository(pool)
	blacklistRepo := postgres.NewBlacklistRepository(pool)

	// ----- Blacklist -----
	matcher := blacklistUsecase.NewMatcher()
	blacklistService := blacklistUsecase.NewService(blacklistRepo, matcher, auditLog, logger)
	if err := blacklistService.Load(ctx); err != nil {
		return fmt.Errorf("failed to load blacklist: %w", err)
	}
	if s.cfg.BlacklistSeedFile != "" {
		n, err := blacklistService.SeedFromFile(ctx, s.cfg.BlacklistSeedFile)
		if err != nil {
			logger.Error("blacklist seeding failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("blacklist seeded", zap.Int("entries", n))
		}
	}

	// ----- Services (Usecases) -----
	authService := authUsecase.NewAuthService(
		principalRepo,
		sessionManager,
		loginLimiter,
		blacklistService,
		auditLog,
		logger,
	)
	policyService := policyUsecase.NewPolicyService(
		policyRepo,
		verifyLimiter,
		blacklistService,
		auditLog,
		logger,
	)

	// ----- Bootstrap Administrator -----
	if s.cfg.BootstrapAdminEmail != "" && s.cfg.BootstrapAdminPassword != "" {
		if err := authService.EnsureBootstrapAdmin(
			ctx,
			s.cfg.BootstrapAdminEmail,
			s.cfg.BootstrapAdminPassword,
			s.cfg.BootstrapAdminName,
		); err != nil {
			logger.Error("failed to bootstrap administrator", zap.Error(err))
			// Don't fail startup, just log the error
		}
	}

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:      authHandler.NewAuthHandler(authService, s.cfg.CookieSecure, logger),
		PolicyHandler:    policyHandler.NewPolicyHandler(policyService, logger),
		BlacklistHandler: blacklistHandler.NewBlacklistHandler(blacklistService),
		AuditHandler:     auditHandler.NewAuditHandler(auditLog),
		AuthMiddleware:   middleware.NewAuthMiddleware(authService),
		APILimiter:       apiLimiter,
	}

	// ----- Router -----
	s.engine.Use(middleware.RecoveryMiddleware(logger))
	s.engine.Use(middleware.LoggingMiddleware(logger))
	s.engine.Use(middleware.CORSMiddleware())
	SetupRouter(s.engine, logger, handlers)

	// ----- Background sweeper -----
	go s.runSweeper(sessionManager, loginLimiter, verifyLimiter, apiLimiter)

	// ----- HTTP server -----
	s.httpServer = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}
	log.Printf("[HTTP] Listening on %s", s.cfg.HTTPAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener and the background sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.sweepStop)
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) newLimiter(client *redis.Client, prefix string, cfg ratelimit.Config) ratelimit.Limiter {
	if s.cfg.RateLimitStore == "redis" && client != nil {
		return ratelimit.NewRedisLimiter(client, prefix, cfg)
	}
	return ratelimit.NewMemoryLimiter(cfg)
}

// runSweeper periodically evicts expired sessions and elapsed rate-limit
// windows. Expiry is still enforced lazily on every read; the sweep only
// bounds memory held by abandoned entries.
func (s *Server) runSweeper(sessions *session.Manager, limiters ...ratelimit.Limiter) {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.sweepStop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed := sessions.SweepExpired(ctx)
			for _, l := range limiters {
				removed += l.Sweep(ctx)
			}
			cancel()
			if removed > 0 {
				s.logger.Debug("sweep completed", zap.Int("removed", removed))
			}
		}
	}
}
