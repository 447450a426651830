package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestPrintJobIntelligence(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobIntelligence(&types.JobIntelligence{
		Role:      "Senior Backend Engineer",
		Seniority: "senior",
		Keywords:  []string{"Go", "PostgreSQL", "gRPC"},
	})
	output := buf.String()

	assert.Contains(t, output, "JOB INTELLIGENCE")
	assert.Contains(t, output, "Senior Backend Engineer")
	assert.Contains(t, output, "Go")
	assert.Contains(t, output, "gRPC")
}

func TestPrintJobIntelligence_NilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobIntelligence(nil)
	assert.Empty(t, buf.String())
}

func TestPrintAttempt(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAttempt(types.Attempt{
		Number:          2,
		ATSScore:        78,
		JDScore:         82,
		GoldenPassed:    false,
		ATSFeedback:     "Quantify impact in EXPERIENCE.",
		SectionsChanged: []string{"EXPERIENCE"},
	})
	output := buf.String()

	assert.Contains(t, output, "ATTEMPT 2")
	assert.Contains(t, output, "78")
	assert.Contains(t, output, "160")
	assert.Contains(t, output, "FAILED")
	assert.Contains(t, output, "EXPERIENCE")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(90, 88, 2, 2, true, []string{"EXPERIENCE", "SUMMARY"})
	output := buf.String()

	assert.Contains(t, output, "TAILORING COMPLETE")
	assert.Contains(t, output, "2 of 2")
	assert.Contains(t, output, "PASSED")
	assert.Contains(t, output, "EXPERIENCE, SUMMARY")
}
