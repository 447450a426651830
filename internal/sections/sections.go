// Package sections implements the section model for resume text: splitting a
// resume into named sections, cleaning model output, diffing two versions,
// and reconstructing a canonical document.
package sections

import "strings"

// HeaderSection is the sentinel name for content preceding the first
// recognized heading. It is rendered without a visible heading label.
const HeaderSection = "HEADER"

// headingVocabulary is the fixed set of recognized resume headings. A line is
// a heading if, after trimming and stripping a trailing colon, it equals one
// of these case-insensitively.
var headingVocabulary = []string{
	"SUMMARY",
	"PROFESSIONAL SUMMARY",
	"OBJECTIVE",
	"PROFILE",
	"EXPERIENCE",
	"WORK EXPERIENCE",
	"PROFESSIONAL EXPERIENCE",
	"EMPLOYMENT HISTORY",
	"PROJECTS",
	"SKILLS",
	"TECHNICAL SKILLS",
	"CORE COMPETENCIES",
	"EDUCATION",
	"CERTIFICATIONS",
	"LICENSES",
	"AWARDS",
	"HONORS",
	"PUBLICATIONS",
	"LANGUAGES",
	"VOLUNTEER EXPERIENCE",
	"INTERESTS",
	"REFERENCES",
}

// priorityOrder defines canonical reassembly order: HEADER first, then
// summary-like sections, experience, projects, skills, education, and the
// remaining credentials. Names absent from this table are appended after all
// known names in first-seen order.
var priorityOrder = append([]string{HeaderSection}, headingVocabulary...)

var priorityIndex = func() map[string]int {
	idx := make(map[string]int, len(priorityOrder))
	for i, name := range priorityOrder {
		idx[name] = i
	}
	return idx
}()

var headingSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(headingVocabulary))
	for _, name := range headingVocabulary {
		set[name] = struct{}{}
	}
	return set
}()

// KnownHeadings returns the heading vocabulary in priority order.
func KnownHeadings() []string {
	out := make([]string, len(headingVocabulary))
	copy(out, headingVocabulary)
	return out
}

// Map is an ordered mapping from canonical section name to body text. Keys
// are unique; insertion order is preserved for names outside the priority
// table.
type Map struct {
	names  []string
	bodies map[string]string
}

// NewMap returns an empty section map.
func NewMap() *Map {
	return &Map{bodies: make(map[string]string)}
}

// Set stores body under name, preserving the position of an existing key.
func (m *Map) Set(name, body string) {
	if _, ok := m.bodies[name]; !ok {
		m.names = append(m.names, name)
	}
	m.bodies[name] = body
}

// Get returns the body for name, or the empty string if absent.
func (m *Map) Get(name string) string {
	return m.bodies[name]
}

// Has reports whether name is present.
func (m *Map) Has(name string) bool {
	_, ok := m.bodies[name]
	return ok
}

// Names returns the section names in insertion order.
func (m *Map) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of sections.
func (m *Map) Len() int {
	return len(m.names)
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	c := NewMap()
	for _, name := range m.names {
		c.Set(name, m.bodies[name])
	}
	return c
}

// matchHeading reports whether a trimmed line is a recognized heading and
// returns its canonical (uppercase) name.
func matchHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimSuffix(trimmed, ":")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return "", false
	}
	upper := strings.ToUpper(trimmed)
	if _, ok := headingSet[upper]; ok {
		return upper, true
	}
	return "", false
}

// Extract splits text into named sections in a single linear pass. Content
// before the first recognized heading is stored under HeaderSection.
// Sections whose trimmed content is empty are dropped.
func Extract(text string) *Map {
	m := NewMap()
	current := HeaderSection
	var buf []string

	flush := func() {
		body := strings.TrimRight(strings.Join(buf, "\n"), " \t\n")
		if strings.TrimSpace(body) != "" {
			// A heading that appears twice accumulates; content must not be lost.
			if existing := m.Get(current); existing != "" {
				body = existing + "\n" + body
			}
			m.Set(current, body)
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if name, ok := matchHeading(line); ok {
			flush()
			current = name
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return m
}
