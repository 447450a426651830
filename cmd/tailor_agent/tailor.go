package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/evaluation"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/progress"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

var (
	tailorResumePath string
	tailorJobPath    string
	tailorOutPath    string
	tailorMode       string
	tailorConfigPath string
	tailorVerbose    bool
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor a resume against a job description",
	Long:  `Run the tailoring loop once from the command line, without a database: read a resume and a job description from files and write the tailored resume.`,
	RunE:  runTailor,
}

func init() {
	tailorCmd.Flags().StringVar(&tailorResumePath, "resume", "", "Path to resume text file (required)")
	tailorCmd.Flags().StringVar(&tailorJobPath, "job", "", "Path to job description file (required)")
	tailorCmd.Flags().StringVar(&tailorOutPath, "out", "", "Output path (default: stdout)")
	tailorCmd.Flags().StringVar(&tailorMode, "mode", "", "Tailoring mode: basic, personalized, or aggressive")
	tailorCmd.Flags().StringVar(&tailorConfigPath, "config", "", "Path to JSON config file")
	tailorCmd.Flags().BoolVar(&tailorVerbose, "verbose", false, "Print per-attempt scores and feedback")
	_ = tailorCmd.MarkFlagRequired("resume")
	_ = tailorCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(tailorCmd)
}

func runTailor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(tailorConfigPath)
	if err != nil {
		return err
	}

	resumeText, err := os.ReadFile(tailorResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	jobText, err := os.ReadFile(tailorJobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	mode := tailorMode
	if mode == "" {
		mode = cfg.Mode
	}

	log, err := logger.New(false, tailorVerbose || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	gateway, err := buildGateway(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create completion gateway: %w", err)
	}

	models := modelsFromConfig(cfg)
	evaluator := evaluation.New(gateway, models.GetModel(llm.TierStandard), log)

	// No database for one-shot runs; progress lives in memory and attempts
	// go to the terminal.
	orchestrator := tailoring.New(gateway, evaluator, models,
		progress.NewMemoryStore(), nil, nil, log, optionsFromConfig(cfg))

	printer := observability.NewPrinter(os.Stderr)
	if tailorVerbose || cfg.Verbose {
		orchestrator.OnAttempt = printer.PrintAttempt
		orchestrator.OnIntelligence = printer.PrintJobIntelligence
	}

	job := tailoring.Job{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		ResumeText:     string(resumeText),
		JobDescription: string(jobText),
		Mode:           types.NormalizeMode(mode),
		Version:        1,
	}

	result, err := orchestrator.Run(ctx, job)
	if err != nil {
		return fmt.Errorf("tailoring failed: %w", err)
	}

	if tailorVerbose || cfg.Verbose {
		printer.PrintSummary(result.ATSScore, result.JDScore,
			len(result.Attempts), result.Best.Number, result.GoldenPassed, result.ModifiedSections)
	}

	if tailorOutPath == "" {
		fmt.Println(result.FinalResume)
		return nil
	}
	if err := os.WriteFile(tailorOutPath, []byte(result.FinalResume+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info("tailored resume written", zap.String("path", tailorOutPath))
	return nil
}
