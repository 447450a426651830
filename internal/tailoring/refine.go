package tailoring

import (
	"crypto/sha256"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/sections"
)

// DefaultHighValueSections is the fixed fallback list of sections worth
// refining when feedback names none and no prior attempt changed any.
var DefaultHighValueSections = []string{"EXPERIENCE", "SKILLS", "SUMMARY", "EDUCATION"}

// pickSections decides which sections the next refinement attempt targets:
// sections named in evaluator feedback first, then sections changed by the
// previous attempt, then the high-value list, then everything. Only sections
// present in the current map qualify; HEADER is never refined.
//
// Substring matching of section names inside free-text feedback is a known
// weak point (a name like EDUCATION can match unrelated prose); the fallback
// chain bounds the damage of a mismatch.
func pickSections(feedback, lastChanged []string, current *sections.Map, highValue []string) []string {
	joined := strings.ToUpper(strings.Join(feedback, "\n"))

	var targets []string
	for _, name := range current.Names() {
		if name == sections.HeaderSection {
			continue
		}
		if matchesSectionName(joined, name) {
			targets = append(targets, name)
		}
	}
	if len(targets) > 0 {
		return targets
	}

	for _, name := range lastChanged {
		if name != sections.HeaderSection && current.Has(name) {
			targets = append(targets, name)
		}
	}
	if len(targets) > 0 {
		return targets
	}

	for _, name := range highValue {
		if current.Has(name) {
			targets = append(targets, name)
		}
	}
	if len(targets) > 0 {
		return targets
	}

	for _, name := range current.Names() {
		if name != sections.HeaderSection {
			targets = append(targets, name)
		}
	}
	return targets
}

// matchesSectionName reports whether text mentions name on word boundaries.
func matchesSectionName(text, name string) bool {
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return pattern.MatchString(text)
}

// contentHash fingerprints cleaned section content for merge guarding.
func contentHash(body string) [32]byte {
	return sha256.Sum256([]byte(body))
}
