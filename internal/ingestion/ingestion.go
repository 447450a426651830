// Package ingestion normalizes job description input and extracts a
// structured job intelligence summary used as prompt guidance.
package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

var htmlMarker = regexp.MustCompile(`(?i)<\s*(html|body|div|p|ul|li|br|span|h[1-6])[\s>/]`)

var blankRun = regexp.MustCompile(`\n{3,}`)

// NormalizeJobDescription converts pasted job description input to plain
// text. HTML paste is reduced to its text content with script and style
// blocks removed; plain text passes through with whitespace tidied.
func NormalizeJobDescription(input string) string {
	text := input
	if htmlMarker.MatchString(input) {
		if extracted, err := htmlToText(input); err == nil && strings.TrimSpace(extracted) != "" {
			text = extracted
		}
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func htmlToText(input string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var sb strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		sb.WriteString(sel.Text())
	})
	if sb.Len() == 0 {
		sb.WriteString(doc.Text())
	}

	// Element text runs together without separators; rebuild line structure
	// from the block-ish whitespace goquery leaves behind.
	out := sb.String()
	out = regexp.MustCompile(`[ \t]+\n`).ReplaceAllString(out, "\n")
	out = regexp.MustCompile(`\n[ \t]+`).ReplaceAllString(out, "\n")
	return out, nil
}

// Completer is the slice of the gateway intelligence extraction needs.
type Completer interface {
	Generate(ctx context.Context, prompt, model string, temperature float32) (string, error)
}

// ExtractJobIntelligence summarizes a job description into structured
// guidance (role, seniority, keywords, responsibilities, qualifications).
// Callers degrade to tailoring without intelligence on error.
func ExtractJobIntelligence(ctx context.Context, gateway Completer, model, jobDescription string) (*types.JobIntelligence, error) {
	prompt := prompts.Format(prompts.MustGet("intelligence.json", "extract"), map[string]string{
		"JobDescription": jobDescription,
	})

	raw, err := gateway.Generate(ctx, prompt, model, 0.1)
	if err != nil {
		return nil, fmt.Errorf("intelligence extraction failed: %w", err)
	}

	doc := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.JobIntelligence, doc); err != nil {
		return nil, fmt.Errorf("intelligence response invalid: %w", err)
	}

	parsed := gjson.ParseBytes(doc)
	intel := &types.JobIntelligence{
		Role:      parsed.Get("role").String(),
		Seniority: parsed.Get("seniority").String(),
	}
	for _, item := range parsed.Get("keywords").Array() {
		intel.Keywords = append(intel.Keywords, item.String())
	}
	for _, item := range parsed.Get("responsibilities").Array() {
		intel.Responsibilities = append(intel.Responsibilities, item.String())
	}
	for _, item := range parsed.Get("qualifications").Array() {
		intel.Qualifications = append(intel.Qualifications, item.String())
	}
	return intel, nil
}
