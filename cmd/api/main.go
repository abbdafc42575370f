package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/config"
	authHandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	clinicHandler "github.com/jwalitptl/clinic-api/internal/handler/clinic"
	consultationHandler "github.com/jwalitptl/clinic-api/internal/handler/consultation"
	doctorHandler "github.com/jwalitptl/clinic-api/internal/handler/doctor"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/policy"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	authService "github.com/jwalitptl/clinic-api/internal/service/auth"
	clinicService "github.com/jwalitptl/clinic-api/internal/service/clinic"
	consultationService "github.com/jwalitptl/clinic-api/internal/service/consultation"
	doctorService "github.com/jwalitptl/clinic-api/internal/service/doctor"
	patientService "github.com/jwalitptl/clinic-api/internal/service/patient"
	userService "github.com/jwalitptl/clinic-api/internal/service/user"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	consultationPolicy, err := policy.ParseKind(cfg.Access.ConsultationPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid access policy")
	}

	// Initialize repositories
	baseRepo := postgres.NewBaseRepository(db)
	clinicRepo := postgres.NewClinicRepository(baseRepo)
	userRepo := postgres.NewUserRepository(baseRepo)
	doctorRepo := postgres.NewDoctorRepository(baseRepo)
	patientRepo := postgres.NewPatientRepository(baseRepo)
	consultationRepo := postgres.NewConsultationRepository(baseRepo)

	metricsHandler := prometheus.New()

	// Events go to Redis when it is configured and are dropped otherwise
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
		publisher = messaging.NewChannelPublisher(broker, cfg.Redis.Channel)
	}

	events := worker.NewEventQueue(publisher, worker.EventQueueConfig{
		QueueSize:     cfg.Events.QueueSize,
		Workers:       cfg.Events.Workers,
		RetryAttempts: cfg.Events.RetryAttempts,
		RetryDelay:    cfg.Events.RetryDelay,
	}, metrics.NewMetrics(metricsHandler.Registry(), "mis", "events"))
	events.Start(ctx)

	// Initialize services
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})

	userSvc := userService.NewService(userRepo, hasher)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	clinicSvc := clinicService.NewService(clinicRepo, cfg.Cache.ClinicTTL, cfg.Cache.CleanupInterval)
	doctorSvc := doctorService.NewService(doctorRepo, userSvc)
	patientSvc := patientService.NewService(patientRepo, userSvc)
	consultationSvc := consultationService.NewService(consultationRepo, events)

	// Setup router
	pageSize := cfg.Pagination.PageSize
	r := router.NewRouter(middleware.NewAuthMiddleware(jwtSvc), router.Handlers{
		Auth:         authHandler.NewHandler(authSvc),
		Clinic:       clinicHandler.NewHandler(clinicSvc, pageSize),
		Doctor:       doctorHandler.NewHandler(doctorSvc, pageSize),
		Patient:      patientHandler.NewHandler(patientSvc, pageSize),
		Consultation: consultationHandler.NewHandler(consultationSvc, pageSize),
		Health:       health.NewHandler(db),
		Metrics:      metricsHandler,
	}, router.RouterConfig{
		BasePath:         cfg.Server.BasePath,
		Policies:         policy.DefaultTable(consultationPolicy),
		RequestTimeout:   cfg.Server.RequestTimeout,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig:       middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins),
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("consultation_policy", consultationPolicy.String()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// No request can publish any more; flush what is queued before closing Redis
	events.Stop()

	log.Info().Msg("server exited properly")
}
