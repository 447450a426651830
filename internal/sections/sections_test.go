package sections

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
jane@example.com | (555) 123-4567

SUMMARY
Backend engineer with 8 years of experience building distributed systems.

EXPERIENCE
Acme Corp - Senior Engineer
- Built Go microservices processing 1M+ requests/day
- Led migration from monolith to event-driven architecture

EDUCATION
B.S. Computer Science, State University
`

func TestExtract_RecognizesHeadings(t *testing.T) {
	m := Extract(sampleResume)

	require.Equal(t, []string{"HEADER", "SUMMARY", "EXPERIENCE", "EDUCATION"}, m.Names())
	assert.Contains(t, m.Get("HEADER"), "Jane Doe")
	assert.Contains(t, m.Get("SUMMARY"), "Backend engineer")
	assert.Contains(t, m.Get("EXPERIENCE"), "Acme Corp")
	assert.Contains(t, m.Get("EDUCATION"), "State University")
}

func TestExtract_HeadingVariants(t *testing.T) {
	tests := []struct {
		name    string
		heading string
		want    string
	}{
		{"plain", "EXPERIENCE", "EXPERIENCE"},
		{"lowercase", "experience", "EXPERIENCE"},
		{"mixed case", "Experience", "EXPERIENCE"},
		{"trailing colon", "Experience:", "EXPERIENCE"},
		{"surrounding whitespace", "  EXPERIENCE  ", "EXPERIENCE"},
		{"multi word", "Work Experience", "WORK EXPERIENCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract(tt.heading + "\nsome content\n")
			assert.True(t, m.Has(tt.want), "expected section %q, got %v", tt.want, m.Names())
		})
	}
}

func TestExtract_NoHeadings(t *testing.T) {
	m := Extract("just a paragraph of text\nwith no headings at all")
	require.Equal(t, []string{"HEADER"}, m.Names())
}

func TestExtract_DropsEmptySections(t *testing.T) {
	m := Extract("SUMMARY\n\n\nEXPERIENCE\nreal content\n")
	assert.False(t, m.Has("SUMMARY"))
	assert.True(t, m.Has("EXPERIENCE"))
}

func TestExtract_RepeatedHeadingAccumulates(t *testing.T) {
	m := Extract("SKILLS\nGo\nEXPERIENCE\nAcme\nSKILLS\nKubernetes\n")
	assert.Contains(t, m.Get("SKILLS"), "Go")
	assert.Contains(t, m.Get("SKILLS"), "Kubernetes")
}

func TestExtract_ContentLineResemblingHeadingInSentence(t *testing.T) {
	// A heading match requires the whole trimmed line to equal a vocabulary
	// entry; prose mentioning a heading word stays in the current section.
	m := Extract("SUMMARY\nMy experience includes Go and Kubernetes.\n")
	require.Equal(t, []string{"SUMMARY"}, m.Names())
}

func TestReconstruct_RoundTripPreservesCleanedContent(t *testing.T) {
	m := Extract(sampleResume)
	doc := Reconstruct(m)

	round := Extract(doc)
	require.ElementsMatch(t, m.Names(), round.Names())
	for _, name := range m.Names() {
		assert.Equal(t, Clean(m.Get(name)), round.Get(name), "section %s", name)
	}
}

func TestReconstruct_PriorityOrdering(t *testing.T) {
	m := NewMap()
	m.Set("EDUCATION", "B.S. Computer Science")
	m.Set("EXPERIENCE", "Acme Corp")
	m.Set("HEADER", "Jane Doe")
	m.Set("SUMMARY", "Backend engineer")

	doc := Reconstruct(m)

	header := strings.Index(doc, "Jane Doe")
	summary := strings.Index(doc, "SUMMARY")
	experience := strings.Index(doc, "EXPERIENCE")
	education := strings.Index(doc, "EDUCATION")
	assert.Less(t, header, summary)
	assert.Less(t, summary, experience)
	assert.Less(t, experience, education)
}

func TestReconstruct_HeaderHasNoLabel(t *testing.T) {
	m := NewMap()
	m.Set("HEADER", "Jane Doe\njane@example.com")
	m.Set("SUMMARY", "Engineer.")

	doc := Reconstruct(m)
	assert.NotContains(t, doc, "HEADER")
	assert.True(t, strings.HasPrefix(doc, "Jane Doe"))
}

func TestReconstruct_UnknownSectionsAppendedInEncounterOrder(t *testing.T) {
	m := NewMap()
	m.Set("HOBBIES AND TRAVEL", "Hiking")
	m.Set("EXPERIENCE", "Acme Corp")
	m.Set("SIDE QUESTS", "Maintainer of things")

	doc := Reconstruct(m)
	exp := strings.Index(doc, "EXPERIENCE")
	hobbies := strings.Index(doc, "HOBBIES AND TRAVEL")
	side := strings.Index(doc, "SIDE QUESTS")
	assert.Less(t, exp, hobbies)
	assert.Less(t, hobbies, side)
}

func TestReconstruct_NeverDropsKeys(t *testing.T) {
	m := NewMap()
	m.Set("EXPERIENCE", "Acme Corp")
	m.Set("SKILLS", "   ") // cleans to empty but must still appear

	doc := Reconstruct(m)
	assert.Contains(t, doc, "EXPERIENCE")
	assert.Contains(t, doc, "SKILLS")
}

func TestParseDelimited(t *testing.T) {
	response := "### EXPERIENCE ###\nAcme Corp - Staff Engineer\n- Shipped things\n### SKILLS ###\nGo, Kubernetes\n"

	m, ok := ParseDelimited(response)
	require.True(t, ok)
	require.Equal(t, []string{"EXPERIENCE", "SKILLS"}, m.Names())
	assert.Contains(t, m.Get("EXPERIENCE"), "Staff Engineer")
	assert.Equal(t, "Go, Kubernetes", m.Get("SKILLS"))
}

func TestParseDelimited_LowercaseNamesCanonicalized(t *testing.T) {
	m, ok := ParseDelimited("### experience ###\ncontent here\n")
	require.True(t, ok)
	assert.True(t, m.Has("EXPERIENCE"))
}

func TestParseDelimited_NoDelimiters(t *testing.T) {
	_, ok := ParseDelimited("EXPERIENCE\njust a plain resume body\n")
	assert.False(t, ok)
}

func TestParseDelimited_EmptyBodiesSkipped(t *testing.T) {
	_, ok := ParseDelimited("### EXPERIENCE ###\n\n")
	assert.False(t, ok)
}

func TestMap_CloneIsIndependent(t *testing.T) {
	m := NewMap()
	m.Set("SUMMARY", "original")

	c := m.Clone()
	c.Set("SUMMARY", "changed")
	c.Set("SKILLS", "Go")

	assert.Equal(t, "original", m.Get("SUMMARY"))
	assert.False(t, m.Has("SKILLS"))
}
