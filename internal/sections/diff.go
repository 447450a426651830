package sections

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultSignificanceRatio is the normalized edit-distance ratio beyond
// which a section change counts as significant. Carried over from the
// original tuning; not derived, so it stays configurable.
const DefaultSignificanceRatio = 0.05

// DiffEntry is a before/after pair of raw (uncleaned) section text. An empty
// Before marks an added section; an empty After marks a removed one.
type DiffEntry struct {
	Name   string
	Before string
	After  string
}

// DiffOptions tunes change-significance detection.
type DiffOptions struct {
	// SignificanceRatio is the minimum normalized Levenshtein distance
	// between normalized section bodies for a change to be recorded.
	// Zero means DefaultSignificanceRatio.
	SignificanceRatio float64
}

func (o DiffOptions) ratio() float64 {
	if o.SignificanceRatio <= 0 {
		return DefaultSignificanceRatio
	}
	return o.SignificanceRatio
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeForComparison reduces a section body to its comparable content:
// cleaned, bullet glyphs stripped, whitespace runs collapsed. Bullet-style
// and whitespace-only differences vanish under this form.
func normalizeForComparison(body string) string {
	cleaned := Clean(body)
	var sb strings.Builder
	for _, line := range strings.Split(cleaned, "\n") {
		if rest, _, ok := splitBullet(line); ok {
			line = rest
		}
		sb.WriteString(line)
		sb.WriteString(" ")
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(sb.String(), " "))
}

// Changed reports whether two section bodies differ beyond the significance
// threshold once normalized.
func Changed(before, after string, opts DiffOptions) bool {
	a := normalizeForComparison(before)
	b := normalizeForComparison(after)
	if a == b {
		return false
	}
	longer := max(len([]rune(a)), len([]rune(b)))
	if longer == 0 {
		return false
	}
	distance := levenshtein.ComputeDistance(a, b)
	return float64(distance)/float64(longer) > opts.ratio()
}

// Diff extracts sections from both texts and reports every section whose
// content changed significantly, was added, or was removed. Stored before/
// after text is the raw extracted content; cleaning is used only to decide
// significance.
func Diff(originalText, modifiedText string, opts DiffOptions) map[string]DiffEntry {
	original := Extract(originalText)
	modified := Extract(modifiedText)

	diff := make(map[string]DiffEntry)

	for _, name := range original.Names() {
		before := original.Get(name)
		if !modified.Has(name) {
			diff[name] = DiffEntry{Name: name, Before: before, After: ""}
			continue
		}
		after := modified.Get(name)
		if Changed(before, after, opts) {
			diff[name] = DiffEntry{Name: name, Before: before, After: after}
		}
	}

	for _, name := range modified.Names() {
		if !original.Has(name) {
			diff[name] = DiffEntry{Name: name, Before: "", After: modified.Get(name)}
		}
	}

	return diff
}
