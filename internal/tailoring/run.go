// Package tailoring implements the iterative tailoring orchestrator: the
// control loop that alternates full-resume and section-targeted model
// requests, scores every candidate, and converges on the best attempt.
package tailoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/progress"
	"github.com/jonathan/resume-tailor/internal/prompting"
	"github.com/jonathan/resume-tailor/internal/sections"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Options tunes the tailoring loop. The early-stop score and significance
// ratio carry the original tuning; neither is derived, so both stay
// configurable.
type Options struct {
	MaxAttempts       int
	EarlyStopScore    int
	SignificanceRatio float64
	MinFinalLength    int
	HighValueSections []string
}

// DefaultOptions returns the production loop configuration.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:       3,
		EarlyStopScore:    170,
		SignificanceRatio: sections.DefaultSignificanceRatio,
		MinFinalLength:    200,
		HighValueSections: DefaultHighValueSections,
	}
}

// Job is one tailoring run's input.
type Job struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	ResumeText     string
	JobDescription string
	Mode           types.TailoringMode
	Version        int
}

// Result is a completed run's output. Scores are the best attempt's; the
// golden flag reflects the final check against the reconstructed document.
type Result struct {
	FinalResume      string
	ATSScore         int
	JDScore          int
	GoldenPassed     bool
	ModifiedSections []string
	Attempts         []types.Attempt
	Best             *types.Attempt
}

// Completer is the slice of the completion gateway the orchestrator needs.
type Completer interface {
	Generate(ctx context.Context, prompt, model string, temperature float32) (string, error)
	GenerateFresh(ctx context.Context, prompt, model string, temperature float32) (string, error)
}

// Evaluator is the quality oracle pair.
type Evaluator interface {
	ScoreQuality(ctx context.Context, original, candidate, jobDescription string) types.QualityScores
	CheckGoldenRules(ctx context.Context, candidate, jobDescription string) types.GoldenRuleResult
}

// AttemptStore persists attempts append-only, ordered by attempt number.
type AttemptStore interface {
	Append(ctx context.Context, jobID uuid.UUID, attempt types.Attempt) error
}

// ResumeUpdate carries the persisted outcome of a run.
type ResumeUpdate struct {
	ModifiedResume   string
	ATSScore         int
	JDScore          int
	GoldenPassed     bool
	ModifiedSections []string
	Version          int
}

// ResumeUpdater persists the tailored result.
type ResumeUpdater interface {
	UpdateTailored(ctx context.Context, id, ownerID uuid.UUID, update ResumeUpdate) error
}

// Orchestrator runs tailoring jobs. One orchestrator task owns a job's
// progress record for the duration of the run.
type Orchestrator struct {
	gateway   Completer
	evaluator Evaluator
	models    *llm.Config
	progress  progress.Store
	attempts  AttemptStore
	resumes   ResumeUpdater
	logger    *zap.Logger
	opts      Options

	// OnAttempt, when set, observes each recorded attempt (verbose CLI).
	OnAttempt func(types.Attempt)
	// OnIntelligence, when set, observes the extracted job intelligence.
	OnIntelligence func(*types.JobIntelligence)
}

// New creates an orchestrator. attempts and resumes may be nil when the
// caller handles persistence itself (one-shot CLI runs).
func New(gateway Completer, evaluator Evaluator, models *llm.Config, progressStore progress.Store,
	attempts AttemptStore, resumes ResumeUpdater, logger *zap.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if models == nil {
		models = llm.DefaultConfig()
	}
	if opts.MaxAttempts <= 0 {
		opts = DefaultOptions()
	}
	return &Orchestrator{
		gateway:   gateway,
		evaluator: evaluator,
		models:    models,
		progress:  progressStore,
		attempts:  attempts,
		resumes:   resumes,
		logger:    logger,
		opts:      opts,
	}
}

// Progress checkpoints outside the attempt loop.
const (
	progressAnalyzing   = 10
	progressAnalyzingJD = 15
	progressProcessing  = 90
	progressCompleted   = 100
)

// attemptProgress spreads attempt/scoring checkpoints across 15..85.
func (o *Orchestrator) attemptProgress(k int) int {
	return progressAnalyzingJD + (70*(2*k-1))/(2*o.opts.MaxAttempts)
}

func (o *Orchestrator) scoringProgress(k int) int {
	return progressAnalyzingJD + (70*2*k)/(2*o.opts.MaxAttempts)
}

func (o *Orchestrator) update(ctx context.Context, job Job, status progress.Status, pct, attempt int) {
	if err := o.progress.Update(ctx, job.ID, job.OwnerID, status, pct, attempt); err != nil {
		o.logger.Warn("failed to update progress",
			zap.String("job_id", job.ID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

// Run executes the full tailoring state machine for one job. Every exit
// path leaves the progress record terminal: completed or error.
func (o *Orchestrator) Run(ctx context.Context, job Job) (result Result, err error) {
	log := o.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("owner_id", job.OwnerID.String()),
		zap.String("mode", string(job.Mode)))

	if err := o.progress.Start(ctx, job.ID, job.OwnerID, o.opts.MaxAttempts); err != nil {
		return Result{}, fmt.Errorf("failed to start progress tracking: %w", err)
	}

	terminal := false
	defer func() {
		if err != nil && !terminal {
			o.update(ctx, job, progress.StatusError, 0, progress.AttemptUnchanged)
		}
	}()

	o.update(ctx, job, progress.StatusAnalyzing, progressAnalyzing, progress.AttemptUnchanged)
	original := sections.Extract(job.ResumeText)
	if original.Len() == 0 {
		return Result{}, fmt.Errorf("resume text is empty")
	}

	o.update(ctx, job, progress.StatusAnalyzingJD, progressAnalyzingJD, progress.AttemptUnchanged)
	jd := ingestion.NormalizeJobDescription(job.JobDescription)
	intel, intelErr := ingestion.ExtractJobIntelligence(ctx, o.gateway, o.models.GetModel(llm.TierLite), jd)
	if intelErr != nil {
		log.Warn("job intelligence unavailable, tailoring without it", zap.Error(intelErr))
		intel = nil
	}
	if intel != nil && o.OnIntelligence != nil {
		o.OnIntelligence(intel)
	}

	diffOpts := sections.DiffOptions{SignificanceRatio: o.opts.SignificanceRatio}
	current := original.Clone()

	var (
		attempts       []types.Attempt
		best           *types.Attempt
		priorFeedback  []string
		goldenFeedback []string
		lastChanged    []string
		generated      bool
	)
	modifiedSet := make(map[string]struct{})

	for k := 1; k <= o.opts.MaxAttempts; k++ {
		o.update(ctx, job, progress.AttemptStatus(k), o.attemptProgress(k), k)

		var sent, changed []string
		var ok bool
		if k == 1 {
			sent, changed, ok = o.fullPass(ctx, job, jd, intel, original, current, priorFeedback, diffOpts, log)
		} else {
			sent, changed, ok = o.refinementPass(ctx, job, jd, intel, current, priorFeedback, goldenFeedback, lastChanged, log)
		}
		if !ok {
			log.Warn("attempt skipped", zap.Int("attempt", k))
			continue
		}
		generated = true

		candidate := sections.Reconstruct(current)
		o.update(ctx, job, progress.ScoringStatus(k), o.scoringProgress(k), k)

		// The two oracles are independent; issue both concurrently.
		var scores types.QualityScores
		var golden types.GoldenRuleResult
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			scores = o.evaluator.ScoreQuality(gctx, job.ResumeText, candidate, jd)
			return nil
		})
		g.Go(func() error {
			golden = o.evaluator.CheckGoldenRules(gctx, candidate, jd)
			return nil
		})
		_ = g.Wait()

		attempt := types.Attempt{
			Number:          k,
			ATSScore:        scores.ATSScore,
			JDScore:         scores.JDScore,
			GoldenPassed:    golden.Passed,
			ATSFeedback:     scores.ATSFeedback,
			JDFeedback:      scores.JDFeedback,
			GoldenFeedback:  golden.Feedback,
			SectionsSent:    sent,
			SectionsChanged: changed,
		}
		attempts = append(attempts, attempt)
		for _, name := range changed {
			modifiedSet[name] = struct{}{}
		}
		if o.attempts != nil {
			if aerr := o.attempts.Append(ctx, job.ID, attempt); aerr != nil {
				log.Warn("failed to persist attempt", zap.Int("attempt", k), zap.Error(aerr))
			}
		}
		if o.OnAttempt != nil {
			o.OnAttempt(attempt)
		}

		// Strictly higher combined score replaces the best; ties keep the
		// earlier attempt.
		if best == nil || attempt.Combined() > best.Combined() {
			b := attempt
			best = &b
		}

		log.Info("attempt scored",
			zap.Int("attempt", k),
			zap.Int("ats_score", scores.ATSScore),
			zap.Int("jd_score", scores.JDScore),
			zap.Bool("golden_passed", golden.Passed),
			zap.Strings("sections_changed", changed))

		priorFeedback = nonEmpty(scores.ATSFeedback, scores.JDFeedback)
		goldenFeedback = append(append([]string{}, golden.Feedback...), golden.Suggestions...)
		lastChanged = changed

		if golden.Passed || attempt.Combined() >= o.opts.EarlyStopScore {
			log.Info("early termination", zap.Int("attempt", k), zap.Int("combined", attempt.Combined()))
			break
		}
	}

	if !generated {
		return Result{}, fmt.Errorf("all %d attempts failed to produce a generation", o.opts.MaxAttempts)
	}

	// Every original section must survive to the final document; reinstate
	// anything the loop lost.
	for _, name := range original.Names() {
		if !current.Has(name) {
			current.Set(name, sections.Clean(original.Get(name)))
		}
	}

	o.update(ctx, job, progress.StatusProcessing, progressProcessing, progress.AttemptUnchanged)
	final := sections.Clean(sections.Reconstruct(current))

	// Step 3 may have reintroduced untouched originals; re-check the final
	// text rather than reusing the best attempt's flag.
	finalGolden := o.evaluator.CheckGoldenRules(ctx, final, jd)

	if len(final) < o.opts.MinFinalLength {
		o.persistPlaceholder(ctx, job, log)
		o.update(ctx, job, progress.StatusError, 0, progress.AttemptUnchanged)
		terminal = true
		return Result{}, fmt.Errorf("final document too short: %d chars (minimum %d)", len(final), o.opts.MinFinalLength)
	}

	result = Result{
		FinalResume:      final,
		ATSScore:         best.ATSScore,
		JDScore:          best.JDScore,
		GoldenPassed:     finalGolden.Passed,
		ModifiedSections: sortedNames(modifiedSet),
		Attempts:         attempts,
		Best:             best,
	}

	if o.resumes != nil {
		if uerr := o.resumes.UpdateTailored(ctx, job.ID, job.OwnerID, ResumeUpdate{
			ModifiedResume:   result.FinalResume,
			ATSScore:         result.ATSScore,
			JDScore:          result.JDScore,
			GoldenPassed:     result.GoldenPassed,
			ModifiedSections: result.ModifiedSections,
			Version:          job.Version + 1,
		}); uerr != nil {
			return Result{}, fmt.Errorf("failed to persist tailored resume: %w", uerr)
		}
	}

	o.update(ctx, job, progress.StatusCompleted, progressCompleted, progress.AttemptUnchanged)
	terminal = true
	log.Info("tailoring completed",
		zap.Int("best_attempt", best.Number),
		zap.Int("combined", best.Combined()),
		zap.Int("attempts_run", len(attempts)))
	return result, nil
}

// fullPass compiles and sends the full-resume prompt, then merges every
// significantly changed section into current. Returns ok=false when the
// gateway call fails, which skips the attempt.
func (o *Orchestrator) fullPass(ctx context.Context, job Job, jd string, intel *types.JobIntelligence,
	original, current *sections.Map, priorFeedback []string, diffOpts sections.DiffOptions,
	log *zap.Logger) (sent, changed []string, ok bool) {

	prompt := prompting.CompileFull(prompting.FullPromptInput{
		ResumeText:     job.ResumeText,
		JobDescription: jd,
		Mode:           job.Mode,
		Intelligence:   intel,
		PriorFeedback:  priorFeedback,
		Version:        job.Version,
	})

	response, err := o.gateway.Generate(ctx, prompt, o.models.GetModel(llm.TierAdvanced), job.Mode.Temperature())
	if err != nil {
		log.Warn("full tailoring pass failed", zap.Error(err))
		return nil, nil, false
	}

	cleaned := sections.Clean(response)
	for name, entry := range sections.Diff(job.ResumeText, cleaned, diffOpts) {
		// A section the model dropped stays at its original content; the
		// no-section-loss invariant beats the model's opinion.
		if entry.After == "" {
			continue
		}
		current.Set(name, sections.Clean(entry.After))
		changed = append(changed, name)
	}
	sort.Strings(changed)
	return original.Names(), changed, true
}

// refinementPass targets specific sections, parses the delimited response,
// and merges only sections whose cleaned content actually differs.
func (o *Orchestrator) refinementPass(ctx context.Context, job Job, jd string, intel *types.JobIntelligence,
	current *sections.Map, priorFeedback, goldenFeedback, lastChanged []string,
	log *zap.Logger) (sent, changed []string, ok bool) {

	targets := pickSections(append(append([]string{}, priorFeedback...), goldenFeedback...),
		lastChanged, current, o.opts.HighValueSections)
	if len(targets) == 0 {
		return nil, nil, false
	}

	sectionBodies := make(map[string]string, len(targets))
	for _, name := range targets {
		sectionBodies[name] = current.Get(name)
	}

	prompt := prompting.CompileRefinement(prompting.RefinementPromptInput{
		SectionOrder:       targets,
		Sections:           sectionBodies,
		Feedback:           priorFeedback,
		GoldenRuleFeedback: goldenFeedback,
		JobDescription:     jd,
		Mode:               job.Mode,
		Intelligence:       intel,
		Version:            job.Version,
	})

	// Refinement prompts depend on mutable feedback; never cached.
	response, err := o.gateway.GenerateFresh(ctx, prompt, o.models.GetModel(llm.TierAdvanced), job.Mode.Temperature())
	if err != nil {
		log.Warn("refinement pass failed", zap.Error(err))
		return nil, nil, false
	}

	parsed, delimited := sections.ParseDelimited(response)
	if !delimited {
		// The delimiter protocol is fragile free-text parsing; fall back to
		// the same heading detection used for the original resume.
		parsed = sections.Extract(response)
		log.Warn("refinement response missing delimiters, fell back to heading extraction",
			zap.Int("sections_recovered", parsed.Len()))
	}

	targetSet := make(map[string]struct{}, len(targets))
	for _, name := range targets {
		targetSet[name] = struct{}{}
	}

	for _, name := range parsed.Names() {
		if _, wanted := targetSet[name]; !wanted {
			continue
		}
		cleaned := sections.Clean(parsed.Get(name))
		if cleaned == "" {
			continue
		}
		// Hash-guarded merge: a no-op response is not a refresh.
		if contentHash(cleaned) == contentHash(sections.Clean(current.Get(name))) {
			continue
		}
		current.Set(name, cleaned)
		changed = append(changed, name)
	}
	sort.Strings(changed)

	if parsed.Len() == 0 {
		return nil, nil, false
	}
	return targets, changed, true
}

// persistPlaceholder stores a marked, truncated copy of the original so
// downstream consumers never see an empty "success".
func (o *Orchestrator) persistPlaceholder(ctx context.Context, job Job, log *zap.Logger) {
	if o.resumes == nil {
		return
	}
	const placeholderLimit = 2000
	truncated := job.ResumeText
	if len(truncated) > placeholderLimit {
		truncated = truncated[:placeholderLimit] + "\n[truncated]"
	}
	placeholder := "Tailoring did not produce a valid document. Original resume preserved below.\n\n" + truncated

	if err := o.resumes.UpdateTailored(ctx, job.ID, job.OwnerID, ResumeUpdate{
		ModifiedResume: placeholder,
		Version:        job.Version + 1,
	}); err != nil {
		log.Warn("failed to persist placeholder document", zap.Error(err))
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sortedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
