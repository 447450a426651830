package main

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

// loadConfig reads the optional config file, fills from the environment,
// and validates the result.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	merged := cfg.MergeWithDefaults(config.Config{
		Port:              8080,
		MaxAttempts:       3,
		EarlyStopScore:    170,
		SignificanceRatio: tailoring.DefaultOptions().SignificanceRatio,
		MinFinalLength:    200,
		Mode:              string(types.ModePersonalized),
	})
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func modelsFromConfig(cfg *config.Config) *llm.Config {
	models := llm.DefaultConfig()
	if cfg.LiteModel != "" {
		models = models.WithModel(llm.TierLite, cfg.LiteModel)
	}
	if cfg.StandardModel != "" {
		models = models.WithModel(llm.TierStandard, cfg.StandardModel)
	}
	if cfg.AdvancedModel != "" {
		models = models.WithModel(llm.TierAdvanced, cfg.AdvancedModel)
	}
	return models
}

func optionsFromConfig(cfg *config.Config) tailoring.Options {
	opts := tailoring.DefaultOptions()
	opts.MaxAttempts = cfg.MaxAttempts
	opts.EarlyStopScore = cfg.EarlyStopScore
	opts.SignificanceRatio = cfg.SignificanceRatio
	opts.MinFinalLength = cfg.MinFinalLength
	return opts
}

func buildGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*llm.Gateway, error) {
	router, err := llm.NewRouter(ctx, llm.RouterConfig{
		GeminiAPIKey:    cfg.GeminiAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
	})
	if err != nil {
		return nil, err
	}
	cache := llm.NewCache(llm.DefaultCacheCapacity, llm.DefaultCacheTTL)
	return llm.NewGateway(router, cache, logger, llm.GatewayOptions{}), nil
}

// dbAttemptStore adapts db.DB to the orchestrator's attempt persistence.
type dbAttemptStore struct {
	db *db.DB
}

func (s dbAttemptStore) Append(ctx context.Context, jobID uuid.UUID, attempt types.Attempt) error {
	return s.db.AppendAttempt(ctx, jobID, attempt)
}

// dbResumeUpdater adapts db.DB to the orchestrator's result persistence.
type dbResumeUpdater struct {
	db *db.DB
}

func (u dbResumeUpdater) UpdateTailored(ctx context.Context, id, ownerID uuid.UUID, update tailoring.ResumeUpdate) error {
	return u.db.UpdateTailoredResume(ctx, id, ownerID,
		update.ModifiedResume, update.ATSScore, update.JDScore, update.GoldenPassed,
		update.ModifiedSections, update.Version)
}
