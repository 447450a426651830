package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/evaluation"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/jonathan/resume-tailor/internal/tailoring"
)

var (
	servePort       int
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for launching tailoring jobs and polling their progress.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to run the server")
	}

	log, err := logger.New(true, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	gateway, err := buildGateway(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create completion gateway: %w", err)
	}

	models := modelsFromConfig(cfg)
	evaluator := evaluation.New(gateway, models.GetModel(llm.TierStandard), log)

	orchestrator := tailoring.New(gateway, evaluator, models,
		database.Progress(), dbAttemptStore{db: database}, dbResumeUpdater{db: database},
		log, optionsFromConfig(cfg))

	srv := server.New(server.Config{Port: cfg.Port}, server.Deps{
		Resumes:    database,
		Attempts:   database,
		Progress:   database.Progress(),
		Runner:     orchestrator,
		JWTService: server.NewJWTService(jwtConfig),
		Logger:     log,
	})

	return srv.Start()
}
