// cmd/resume-matcher/main.go
package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-matcher/internal/api"
	"resume-matcher/internal/catalog"
	"resume-matcher/internal/common/camunda"
	"resume-matcher/internal/common/config"
	"resume-matcher/internal/common/database"
	"resume-matcher/internal/common/logger"
	"resume-matcher/internal/common/metrics"
	"resume-matcher/internal/common/observability"
	"resume-matcher/internal/common/ratelimit"
	"resume-matcher/internal/extraction"
	"resume-matcher/internal/extraction/ocr"
	"resume-matcher/internal/pipeline"
	"resume-matcher/internal/scoring"
	mr "resume-matcher/internal/workers/matching/match-resume"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"env":     cfg.App.Environment,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	cat, err := catalog.Default(time.Now())
	if err != nil {
		zapLog.Fatal("job catalog failed to load", zap.Error(err))
	}
	metrics.CatalogJobs.Set(float64(cat.Len()))

	scorer, err := newScorer(cfg.Scoring)
	if err != nil {
		zapLog.Fatal("scorer configuration invalid", zap.Error(err))
	}

	var ocrEngine *ocr.Engine
	var ocrStage extraction.Strategy
	if cfg.Extraction.OCR.Enabled {
		ocrEngine = ocr.NewEngine(ocr.ConfigFrom(cfg.Extraction), log)
		ocrStage = ocrEngine
	}

	extractor := extraction.New(cfg.Extraction, ocrStage, log, obs)
	matcher := pipeline.New(extractor, cat, scorer, cfg.Matching, log, obs)

	var redisClient *database.RedisClient
	if cfg.RateLimit.Enabled && cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis client init failed", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx); err != nil {
			log.Warn("Redis unreachable at startup, rate limiting fails open until it recovers", map[string]interface{}{
				"error": err.Error(),
			})
		}
		cancel()
	}

	limiter, err := ratelimit.New(cfg.RateLimit, redisClient)
	if err != nil {
		zapLog.Fatal("rate limiter init failed", zap.Error(err))
	}

	log.Info("Matching service configured", map[string]interface{}{
		"catalogJobs":   cat.Len(),
		"scoringScheme": scorer.Scheme(),
		"ocrEnabled":    cfg.Extraction.OCR.Enabled,
		"minTextLength": cfg.Extraction.MinTextLength,
		"rateLimit":     cfg.RateLimit.Enabled,
	})

	// --- Optional workflow worker ---
	var zeebe *camunda.Client
	var jobWorker *camunda.CamundaWorker
	if config.IsWorkerEnabled(cfg, mr.TaskType) {
		zeebe, jobWorker = startWorker(cfg, matcher, log)
	}

	// --- HTTP server ---
	server := api.New(api.Options{
		Config:  cfg.Server,
		Matcher: matcher,
		Limiter: limiter,
		Logger:  log,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error draining HTTP server", map[string]interface{}{"error": err.Error()})
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}
	if ocrEngine != nil {
		if err := ocrEngine.Close(); err != nil {
			log.Error("Error closing OCR engine", map[string]interface{}{"error": err.Error()})
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("Resume matcher stopped gracefully", nil)
}

func newScorer(cfg config.ScoringConfig) (*scoring.Scorer, error) {
	var override *scoring.Weights
	if w := cfg.Weights; w != nil {
		override = &scoring.Weights{
			Lexical:    w.Lexical,
			Skills:     w.Skills,
			Experience: w.Experience,
			Title:      w.Title,
		}
	}
	return scoring.New(cfg.Scheme, override)
}

// startWorker connects to the broker and opens the match-resume job worker.
// A broker that never answers is logged and the HTTP service runs without it.
func startWorker(cfg *config.Config, matcher mr.Matcher, log logger.Logger) (*camunda.Client, *camunda.CamundaWorker) {
	connectCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := camunda.NewClientWithConfig(connectCtx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		log.Error("Zeebe client initialization failed, workflow worker disabled", map[string]interface{}{
			"brokerAddress": cfg.Camunda.BrokerAddress,
			"error":         err.Error(),
		})
		return nil, nil
	}

	handler, err := mr.NewHandler(mr.HandlerOptions{
		AppConfig: cfg,
		Matcher:   matcher,
		Logger:    log,
	})
	if err != nil {
		log.Error("failed to create match-resume handler", map[string]interface{}{"error": err.Error()})
		_ = client.Close()
		return nil, nil
	}

	wc := handler.Config()
	w := camunda.NewWorker(client.GetClient(), mr.TaskType, wc.MaxJobsActive, wc.Timeout, handler, log)
	return client, w
}
