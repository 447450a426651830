// Package prompting compiles the text sent through the completion gateway
// for full first-pass tailoring and for section-targeted refinement.
package prompting

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// maxFeedbackItems bounds how much prior-pass feedback is folded into a
// prompt; only the most recent entries carry.
const maxFeedbackItems = 3

// FullPromptInput describes a full first-pass tailoring request.
type FullPromptInput struct {
	ResumeText     string
	JobDescription string
	Mode           types.TailoringMode
	Intelligence   *types.JobIntelligence
	PriorFeedback  []string
	Version        int
}

// RefinementPromptInput describes a targeted refinement request limited to
// specific sections plus prior evaluator feedback.
type RefinementPromptInput struct {
	// SectionOrder names the sections to refine, in order; Sections holds
	// their current content.
	SectionOrder       []string
	Sections           map[string]string
	Feedback           []string
	GoldenRuleFeedback []string
	JobDescription     string
	Mode               types.TailoringMode
	Intelligence       *types.JobIntelligence
	Version            int
}

func modeBlock(mode types.TailoringMode) string {
	return prompts.MustGet("tailoring.json", "mode_"+string(mode))
}

// CompileFull builds the full first-pass prompt. Deterministic given
// identical inputs, which is what makes first-pass caching valid.
func CompileFull(in FullPromptInput) string {
	var sb strings.Builder

	sb.WriteString(prompts.Format(prompts.MustGet("tailoring.json", "full_instructions"),
		map[string]string{"ModeBlock": modeBlock(in.Mode)}))
	sb.WriteString("\n\n")

	if block := intelligenceBlock(in.Intelligence); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	if block := feedbackBlock("Reviewer feedback from the previous pass:", in.PriorFeedback); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	sb.WriteString(prompts.MustGet("tailoring.json", "full_output_rules"))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Resume (version %d):\n---\n%s\n---\n\n", in.Version, in.ResumeText)
	fmt.Fprintf(&sb, "Job description:\n---\n%s\n---\n", in.JobDescription)

	return sb.String()
}

// CompileRefinement builds a refinement prompt scoped to the named sections.
// Refinement prompts depend on mutable feedback and must never be cached.
func CompileRefinement(in RefinementPromptInput) string {
	var sb strings.Builder

	sb.WriteString(prompts.Format(prompts.MustGet("tailoring.json", "refinement_instructions"),
		map[string]string{"ModeBlock": modeBlock(in.Mode)}))
	sb.WriteString("\n\n")

	if block := intelligenceBlock(in.Intelligence); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	if block := feedbackBlock("Reviewer feedback:", in.Feedback); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}
	if block := feedbackBlock("Quality-rule violations to address:", in.GoldenRuleFeedback); block != "" {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	sb.WriteString(prompts.MustGet("tailoring.json", "refinement_output_rules"))
	sb.WriteString("\n\n")

	sb.WriteString("Sections to refine:\n")
	for _, name := range in.SectionOrder {
		fmt.Fprintf(&sb, "\n### %s ###\n%s\n", name, in.Sections[name])
	}

	fmt.Fprintf(&sb, "\nJob description:\n---\n%s\n---\n", in.JobDescription)

	return sb.String()
}

// feedbackBlock renders up to the maxFeedbackItems most recent entries.
func feedbackBlock(title string, feedback []string) string {
	items := make([]string, 0, maxFeedbackItems)
	for _, f := range feedback {
		if strings.TrimSpace(f) != "" {
			items = append(items, strings.TrimSpace(f))
		}
	}
	if len(items) == 0 {
		return ""
	}
	if len(items) > maxFeedbackItems {
		items = items[len(items)-maxFeedbackItems:]
	}

	var sb strings.Builder
	sb.WriteString(title)
	for _, item := range items {
		sb.WriteString("\n- ")
		sb.WriteString(item)
	}
	return sb.String()
}

func intelligenceBlock(intel *types.JobIntelligence) string {
	if intel == nil || intel.Role == "" {
		return ""
	}
	return prompts.Format(prompts.MustGet("tailoring.json", "intelligence_block"), map[string]string{
		"Role":             intel.Role,
		"Seniority":        orUnspecified(intel.Seniority),
		"Keywords":         joinOrNone(intel.Keywords),
		"Responsibilities": joinOrNone(intel.Responsibilities),
		"Qualifications":   joinOrNone(intel.Qualifications),
	})
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none listed"
	}
	return strings.Join(items, "; ")
}
