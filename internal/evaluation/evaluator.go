// Package evaluation implements the two quality oracles: the ATS/JD scorer
// and the golden-rule checker. Both are prompts executed through the
// completion gateway; both degrade to safe fallbacks so the tailoring loop
// can always make a stop/continue decision.
package evaluation

import (
	"context"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// fallbackScore is the mid-range default used when the scoring oracle
// degrades; it keeps attempt comparison meaningful without faking quality.
const fallbackScore = 50

// evaluatorTemperature keeps oracle output consistent across attempts.
const evaluatorTemperature = 0.2

// Completer is the slice of the gateway the evaluators need.
type Completer interface {
	GenerateFresh(ctx context.Context, prompt, model string, temperature float32) (string, error)
}

// Evaluator runs both quality oracles through a completion gateway.
type Evaluator struct {
	gateway Completer
	model   string
	logger  *zap.Logger
}

// New creates an evaluator using the given model for both oracles.
func New(gateway Completer, model string, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{gateway: gateway, model: model, logger: logger}
}

// ScoreQuality asks the oracle for ATS and JD scores plus feedback. On call
// or parse failure it returns mid-range fallback scores with an explanatory
// feedback string instead of an error.
func (e *Evaluator) ScoreQuality(ctx context.Context, original, candidate, jobDescription string) types.QualityScores {
	prompt := prompts.Format(prompts.MustGet("evaluation.json", "quality_scores"), map[string]string{
		"Original":       original,
		"Candidate":      candidate,
		"JobDescription": jobDescription,
	})

	raw, err := e.gateway.GenerateFresh(ctx, prompt, e.model, evaluatorTemperature)
	if err != nil {
		e.logger.Warn("quality scoring call failed, using fallback", zap.Error(err))
		return fallbackScores("automated scoring was unavailable for this attempt")
	}

	doc := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.QualityScores, doc); err != nil {
		e.logger.Warn("quality scoring response failed validation, using fallback",
			zap.Error(err),
			zap.String("response", llm.TruncateForLog(raw, 200)))
		return fallbackScores("automated scoring returned an unreadable response")
	}

	parsed := gjson.ParseBytes(doc)
	return types.QualityScores{
		ATSScore:    clampScore(parsed.Get("ats_score").Float()),
		JDScore:     clampScore(parsed.Get("jd_score").Float()),
		ATSFeedback: parsed.Get("ats_feedback").String(),
		JDFeedback:  parsed.Get("jd_feedback").String(),
	}
}

// CheckGoldenRules evaluates the five-rule rubric. On failure it returns
// passed=false with a generic feedback entry; an oracle failure must never
// look like a pass.
func (e *Evaluator) CheckGoldenRules(ctx context.Context, candidate, jobDescription string) types.GoldenRuleResult {
	prompt := prompts.Format(prompts.MustGet("evaluation.json", "golden_rules"), map[string]string{
		"Candidate":      candidate,
		"JobDescription": jobDescription,
	})

	raw, err := e.gateway.GenerateFresh(ctx, prompt, e.model, evaluatorTemperature)
	if err != nil {
		e.logger.Warn("golden-rule check call failed", zap.Error(err))
		return fallbackGolden()
	}

	doc := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.GoldenRules, doc); err != nil {
		e.logger.Warn("golden-rule response failed validation",
			zap.Error(err),
			zap.String("response", llm.TruncateForLog(raw, 200)))
		return fallbackGolden()
	}

	parsed := gjson.ParseBytes(doc)
	result := types.GoldenRuleResult{Passed: parsed.Get("passed").Bool()}
	for _, item := range parsed.Get("feedback").Array() {
		result.Feedback = append(result.Feedback, item.String())
	}
	for _, item := range parsed.Get("suggestions").Array() {
		result.Suggestions = append(result.Suggestions, item.String())
	}
	return result
}

func fallbackScores(reason string) types.QualityScores {
	return types.QualityScores{
		ATSScore:    fallbackScore,
		JDScore:     fallbackScore,
		ATSFeedback: reason,
		JDFeedback:  reason,
	}
}

func fallbackGolden() types.GoldenRuleResult {
	return types.GoldenRuleResult{
		Passed:   false,
		Feedback: []string{"golden-rule evaluation was unavailable for this attempt"},
	}
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
