// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobIntelligence outputs a human-readable summary of the extracted
// job intelligence.
func (p *Printer) PrintJobIntelligence(intel *types.JobIntelligence) {
	if intel == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Role:      %s\n", intel.Role))
	if intel.Seniority != "" {
		sb.WriteString(fmt.Sprintf("Seniority: %s\n", intel.Seniority))
	}

	if len(intel.Keywords) > 0 {
		sb.WriteString("\nKeywords:\n")
		count := min(len(intel.Keywords), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", intel.Keywords[i]))
		}
		if len(intel.Keywords) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(intel.Keywords)-maxItemsToShow))
		}
	}

	if len(intel.Qualifications) > 0 {
		sb.WriteString("\nQualifications:\n")
		count := min(len(intel.Qualifications), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", intel.Qualifications[i]))
		}
	}

	p.printBox("JOB INTELLIGENCE", strings.TrimRight(sb.String(), "\n"))
}

// PrintAttempt outputs the scores and section activity of one attempt.
func (p *Printer) PrintAttempt(attempt types.Attempt) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ATS Score:     %d\n", attempt.ATSScore))
	sb.WriteString(fmt.Sprintf("JD Score:      %d\n", attempt.JDScore))
	sb.WriteString(fmt.Sprintf("Combined:      %d\n", attempt.Combined()))
	sb.WriteString(fmt.Sprintf("Golden Rules:  %s\n", passFail(attempt.GoldenPassed)))

	if len(attempt.SectionsChanged) > 0 {
		sb.WriteString(fmt.Sprintf("Changed:       %s\n", strings.Join(attempt.SectionsChanged, ", ")))
	} else {
		sb.WriteString("Changed:       (none)\n")
	}

	if attempt.ATSFeedback != "" {
		sb.WriteString(fmt.Sprintf("\nATS: %s\n", attempt.ATSFeedback))
	}
	if attempt.JDFeedback != "" {
		sb.WriteString(fmt.Sprintf("JD:  %s\n", attempt.JDFeedback))
	}
	for i, fb := range attempt.GoldenFeedback {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(attempt.GoldenFeedback)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  • %s\n", fb))
	}

	p.printBox(fmt.Sprintf("ATTEMPT %d", attempt.Number), strings.TrimRight(sb.String(), "\n"))
}

// PrintSummary outputs the final outcome of a tailoring run.
func (p *Printer) PrintSummary(atsScore, jdScore, attemptsRun, bestAttempt int, goldenPassed bool, modifiedSections []string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Best Attempt:  %d of %d\n", bestAttempt, attemptsRun))
	sb.WriteString(fmt.Sprintf("ATS Score:     %d\n", atsScore))
	sb.WriteString(fmt.Sprintf("JD Score:      %d\n", jdScore))
	sb.WriteString(fmt.Sprintf("Golden Rules:  %s\n", passFail(goldenPassed)))
	if len(modifiedSections) > 0 {
		sb.WriteString(fmt.Sprintf("Modified:      %s", strings.Join(modifiedSections, ", ")))
	} else {
		sb.WriteString("Modified:      (none)")
	}

	p.printBox("TAILORING COMPLETE", sb.String())
}

func passFail(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}
