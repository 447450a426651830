package sections

import (
	"regexp"
	"strings"
)

// bulletGlyphs is the recognized bullet vocabulary, in tie-break order.
var bulletGlyphs = []rune{'-', '•', '*', '○', '▪', '▫', '◦'}

// metaTagPattern matches bracketed meta-tags a model may emit around edited
// content, e.g. [MODIFIED], [SECTION: EXPERIENCE], [ORIGINAL].
var metaTagPattern = regexp.MustCompile(`(?i)\[\s*(MODIFIED|ORIGINAL|UNCHANGED|UPDATED|REVISED|TAILORED|HEADER|NOTE|START|END|SECTION\s*:?[^\]]*|END\s+SECTION)\s*\]`)

// explanationPatterns match whole lines in which the model describes the edit
// itself rather than producing resume content.
var explanationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*this section (was|has been|is) (modified|updated|revised|tailored|rewritten)`),
	regexp.MustCompile(`(?i)^\s*i('ve| have) (updated|modified|revised|tailored|rewritten|made)`),
	regexp.MustCompile(`(?i)^\s*changes made\s*:?`),
	regexp.MustCompile(`(?i)^\s*here('s| is) the (updated|modified|revised|tailored) (section|resume|content)`),
	regexp.MustCompile(`(?i)^\s*note\s*:\s*(the|this|i)`),
	regexp.MustCompile(`(?i)^\s*no changes (were )?(made|needed|required)`),
}

// Clean normalizes text that may have passed through a model: strips meta
// tags and edit commentary, unifies bullet glyphs and indentation, collapses
// blank-line runs, and trims whitespace. Clean is idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\t", "  ")
	text = metaTagPattern.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isExplanationLine(line) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " "))
	}

	kept = normalizeBullets(kept)
	kept = collapseBlankRuns(kept)

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isExplanationLine(line string) bool {
	for _, p := range explanationPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// splitBullet returns the content of a bullet line, or ok=false when the
// line does not start with a recognized glyph followed by a space.
func splitBullet(line string) (rest string, glyph rune, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if trimmed == "" {
		return "", 0, false
	}
	runes := []rune(trimmed)
	for _, g := range bulletGlyphs {
		if runes[0] == g && len(runes) > 1 && runes[1] == ' ' {
			return strings.TrimLeft(string(runes[1:]), " "), g, true
		}
	}
	return "", 0, false
}

// normalizeBullets detects the dominant bullet glyph by frequency and
// rewrites every bullet line to a two-space indent with that glyph.
func normalizeBullets(lines []string) []string {
	counts := make(map[rune]int)
	for _, line := range lines {
		if _, glyph, ok := splitBullet(line); ok {
			counts[glyph]++
		}
	}
	if len(counts) == 0 {
		return lines
	}

	dominant := bulletGlyphs[0]
	best := -1
	for _, g := range bulletGlyphs {
		if counts[g] > best {
			dominant = g
			best = counts[g]
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if rest, _, ok := splitBullet(line); ok {
			out[i] = strings.TrimRight("  "+string(dominant)+" "+rest, " ")
		} else {
			out[i] = line
		}
	}
	return out
}

// collapseBlankRuns replaces runs of 3+ blank lines with exactly one.
func collapseBlankRuns(lines []string) []string {
	out := make([]string, 0, len(lines))
	blanks := 0
	flushBlanks := func() {
		if blanks >= 3 {
			blanks = 1
		}
		for ; blanks > 0; blanks-- {
			out = append(out, "")
		}
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}
		flushBlanks()
		out = append(out, line)
	}
	flushBlanks()
	return out
}
