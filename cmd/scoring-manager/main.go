// cmd/scoring-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/camunda"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/config"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/database"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/observability"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/assignment"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/patterns"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/resolver"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/results"

	atr "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/assign-test-result"
	msp "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/manage-scoring-pattern"
	rra "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/record-result-access"
	rsp "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/resolve-scoring-pattern"
	vsp "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/validate-scoring-pattern"
)

// retryWithBackoff retries operation with exponential backoff, logging each
// failed attempt.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialDelay
	policy.MaxElapsedTime = 0

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return operation()
	}, backoff.WithMaxRetries(policy, uint64(maxRetries-1)), func(err error, next time.Duration) {
		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("nextRetryIn", next),
		)
	})
	if err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempt, err)
	}
	return nil
}

// timeout returns the configured worker timeout, or def when unset.
func timeout(cfg *config.Config, taskType string, def time.Duration) time.Duration {
	if ms := config.GetWorkerConfig(cfg, taskType).Timeout; ms > 0 {
		return config.GetDuration(ms)
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting scoring manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Migrations.Auto {
		if err := database.Migrate(pg.DB); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("Schema migrations applied")
	}

	// --- Pattern store, optionally cached in Redis ---
	var patternStore patterns.Store = patterns.NewPostgresStore(pg.DB, log)
	var redis *database.RedisClient
	if ttl := config.GetDuration(cfg.Scoring.PatternCacheTTL); ttl > 0 {
		redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		patternStore = patterns.NewCachedStore(patternStore, redis.Client, ttl, log)
		zapLog.Info("Redis pattern cache enabled", zap.Duration("ttl", ttl))
	}

	// --- Elasticsearch result index ---
	var indexer results.Indexer
	if cfg.Database.Elasticsearch.Enabled && cfg.Scoring.IndexResults {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer = results.NewElasticsearchIndexer(es.Client, cfg.Scoring.ResultsIndex)
		zapLog.Info("Elasticsearch result indexing enabled", zap.String("index", cfg.Scoring.ResultsIndex))
	}

	// --- Services ---
	bindings := patterns.NewBindingChecker(pg.DB)
	engine := resolver.NewEngine(log)
	patternService := patterns.NewService(patternStore, bindings, log)
	assignmentService := assignment.NewService(assignment.Dependencies{
		Patterns:      patternStore,
		Results:       results.NewPostgresStore(pg.DB),
		Catalog:       results.NewPostgresCatalog(pg.DB),
		Engine:        engine,
		Indexer:       indexer,
		Locator:       bindings,
		Observability: obs,
	}, assignment.Config{
		NoMatchResultCode:         cfg.Scoring.NoMatchResultCode,
		UsageRetryAttempts:        cfg.Scoring.UsageRetryAttempts,
		UsageRetryInitialInterval: config.GetDuration(cfg.Scoring.UsageRetryInitialInterval),
	}, log)

	// --- Workers ---
	client := zeebe.GetClient()
	var workers []*camunda.Worker
	register := func(w *camunda.Worker) {
		if w != nil {
			workers = append(workers, w)
		}
	}

	register(camunda.StartWorker(client, atr.TaskType, config.GetWorkerConfig(cfg, atr.TaskType),
		atr.NewHandler(&atr.Config{Timeout: timeout(cfg, atr.TaskType, atr.LoadConfig().Timeout)},
			assignmentService, log).Handle,
		obs, log))

	register(camunda.StartWorker(client, rsp.TaskType, config.GetWorkerConfig(cfg, rsp.TaskType),
		rsp.NewHandler(&rsp.Config{Timeout: timeout(cfg, rsp.TaskType, rsp.LoadConfig().Timeout)},
			patternStore, engine, log).Handle,
		obs, log))

	register(camunda.StartWorker(client, vsp.TaskType, config.GetWorkerConfig(cfg, vsp.TaskType),
		vsp.NewHandler(&vsp.Config{Timeout: timeout(cfg, vsp.TaskType, vsp.LoadConfig().Timeout)},
			log).Handle,
		obs, log))

	register(camunda.StartWorker(client, msp.TaskType, config.GetWorkerConfig(cfg, msp.TaskType),
		msp.NewHandler(&msp.Config{Timeout: timeout(cfg, msp.TaskType, msp.LoadConfig().Timeout)},
			patternService, log).Handle,
		obs, log))

	register(camunda.StartWorker(client, rra.TaskType, config.GetWorkerConfig(cfg, rra.TaskType),
		rra.NewHandler(&rra.Config{Timeout: timeout(cfg, rra.TaskType, rra.LoadConfig().Timeout)},
			assignmentService, log).Handle,
		obs, log))

	zapLog.Info("Scoring workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status := http.StatusOK
		probe := func(name string, check func(context.Context) error) {
			if err := check(r.Context()); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				return
			}
			checks[name] = "ok"
		}
		probe("postgres", pg.Ping)
		probe("zeebe", zeebe.HealthCheck)
		if redis != nil {
			probe("redis", redis.Ping)
		}

		checks["status"] = "ready"
		if status != http.StatusOK {
			checks["status"] = "not_ready"
		}
		checks["time"] = time.Now().Format(time.RFC3339)
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Scoring manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
