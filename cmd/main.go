package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuskit/campuskit-backend/internal/cache"
	"github.com/campuskit/campuskit-backend/internal/db"
	"github.com/campuskit/campuskit-backend/internal/handlers"
	"github.com/campuskit/campuskit-backend/internal/jobs"
	"github.com/campuskit/campuskit-backend/internal/jobs/runtime"
	"github.com/campuskit/campuskit-backend/internal/observability"
	"github.com/campuskit/campuskit-backend/internal/platform/envutil"
	"github.com/campuskit/campuskit-backend/internal/platform/logger"
	"github.com/campuskit/campuskit-backend/internal/repos"
	"github.com/campuskit/campuskit-backend/internal/risk"
	"github.com/campuskit/campuskit-backend/internal/server"
	"github.com/campuskit/campuskit-backend/internal/services"

	predictioncleanup "github.com/campuskit/campuskit-backend/internal/jobs/pipeline/prediction_cleanup"
	riskmodeltrain "github.com/campuskit/campuskit-backend/internal/jobs/pipeline/risk_model_train"
	riskrecalc "github.com/campuskit/campuskit-backend/internal/jobs/pipeline/risk_recalc"
	riskrecalcbulk "github.com/campuskit/campuskit-backend/internal/jobs/pipeline/risk_recalc_bulk"
)

func main() {
	log, err := logger.New(envutil.String("APP_ENV", "dev"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", "error", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("failed to connect to postgres", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("failed to migrate tables", "error", err)
	}
	gdb := pg.DB()

	redisClient := db.NewRedisClient(log)
	predCache := cache.NewPredictionCache(redisClient, envutil.Duration("PREDICTION_CACHE_TTL", 15*time.Minute), log)

	userRepo := repos.NewUserRepo(gdb, log)
	enrollmentRepo := repos.NewEnrollmentRepo(gdb, log)
	assignmentRepo := repos.NewAssignmentRepo(gdb, log)
	submissionRepo := repos.NewSubmissionRepo(gdb, log)
	predictionRepo := repos.NewRiskPredictionRepo(gdb, log)
	alertRepo := repos.NewPredictiveAlertRepo(gdb, log)
	recRepo := repos.NewLearningRecommendationRepo(gdb, log)
	sessionRepo := repos.NewTrainingSessionRepo(gdb, log)
	snapshotRepo := repos.NewModelSnapshotRepo(gdb, log)
	jobRepo := repos.NewJobRunRepo(gdb, log)

	collector := risk.NewCollector(log, enrollmentRepo, assignmentRepo, submissionRepo, userRepo, risk.StaticTelemetry{})

	scorers := services.NewScorerSource(log, snapshotRepo)
	if err := scorers.Reload(ctx); err != nil {
		log.Warn("failed to load model snapshot, serving rule-based fallback", "error", err)
	}

	authService := services.NewAuthService(log, userRepo)
	jobService := services.NewJobService(log, jobRepo)
	alertService := services.NewAlertService(log, alertRepo)
	recService := services.NewRecommendationService(log, recRepo)
	riskService := services.NewRiskService(log, collector, scorers, predictionRepo, enrollmentRepo, alertService, recService, jobService, predCache)
	trainingService := services.NewTrainingService(log, collector, enrollmentRepo, snapshotRepo, sessionRepo, scorers)

	registry := runtime.NewRegistry()
	riskrecalc.Register(registry, riskrecalc.Deps{Risk: riskService})
	riskrecalcbulk.Register(registry, riskrecalcbulk.Deps{Risk: riskService})
	riskmodeltrain.Register(registry, riskmodeltrain.Deps{Training: trainingService})
	predictioncleanup.Register(registry, predictioncleanup.Deps{Risk: riskService})

	// API-only replicas run with WORKER_ENABLED=false and leave job
	// execution to dedicated worker processes.
	worker := jobs.NewWorker(log, jobRepo, registry)
	workerEnabled := envutil.Bool("WORKER_ENABLED", true)
	if workerEnabled {
		worker.Start(ctx)
	}

	go retentionLoop(ctx, log, riskService)

	router := server.NewRouter(server.RouterConfig{
		Auth:            authService,
		AuthHandler:     handlers.NewAuthHandler(log, authService),
		RiskHandler:     handlers.NewRiskHandler(log, riskService, jobService),
		AlertHandler:    handlers.NewAlertHandler(log, alertService),
		RecHandler:      handlers.NewRecommendationHandler(log, recService),
		TrainingHandler: handlers.NewTrainingHandler(log, trainingService, jobService),
		JobHandler:      handlers.NewJobHandler(log, jobService),
		Healthcheck:     handlers.NewHealthcheckHandler(),
	})

	srv := &http.Server{
		Addr:    ":" + envutil.String("PORT", "8080"),
		Handler: router,
	}
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	cancel()
	if workerEnabled {
		worker.Stop()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown failed", "error", err)
	}
}

// retentionLoop runs the retention sweep on a fixed interval, once shortly
// after startup and then daily by default.
func retentionLoop(ctx context.Context, log *logger.Logger, riskService services.RiskService) {
	interval := envutil.Duration("CLEANUP_INTERVAL", 24*time.Hour)
	initial := time.NewTimer(time.Minute)
	defer initial.Stop()
	select {
	case <-ctx.Done():
		return
	case <-initial.C:
	}
	for {
		if _, err := riskService.CleanupExpired(ctx); err != nil {
			log.Error("retention sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
