package sections

import (
	"regexp"
	"sort"
	"strings"
)

// Reconstruct renders a section map as a canonical document: every body
// cleaned, sections ordered by the priority table (unknown names appended in
// encounter order), HEADER rendered without a heading label, sections joined
// with a blank line. Reconstruct never drops a key present in its input.
func Reconstruct(m *Map) string {
	names := orderNames(m)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		body := Clean(m.Get(name))
		if name == HeaderSection {
			if body != "" {
				parts = append(parts, body)
			}
			continue
		}
		if body == "" {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+"\n"+body)
	}

	return strings.Join(parts, "\n\n")
}

// orderNames sorts map keys by priority-table position; names outside the
// table keep their relative encounter order after all known names.
func orderNames(m *Map) []string {
	names := m.Names()
	encounter := make(map[string]int, len(names))
	for i, name := range names {
		encounter[name] = i
	}
	sort.SliceStable(names, func(i, j int) bool {
		pi, iKnown := priorityIndex[names[i]]
		pj, jKnown := priorityIndex[names[j]]
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return encounter[names[i]] < encounter[names[j]]
		}
	})
	return names
}

// delimiterPattern matches the "### NAME ###" wire format the refinement
// prompt requires for returned sections.
var delimiterPattern = regexp.MustCompile(`###\s*([^#\n]+?)\s*###`)

// ParseDelimited parses a refinement response in the "### NAME ### body"
// wire format into a section map. Section names are canonicalized to
// uppercase. Returns ok=false when no delimiter is present; callers should
// then fall back to heading-based extraction of the raw response.
func ParseDelimited(response string) (*Map, bool) {
	matches := delimiterPattern.FindAllStringSubmatchIndex(response, -1)
	if len(matches) == 0 {
		return nil, false
	}

	m := NewMap()
	for i, match := range matches {
		name := strings.ToUpper(strings.TrimSpace(response[match[2]:match[3]]))
		if name == "" {
			continue
		}
		start := match[1]
		end := len(response)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(response[start:end])
		if body == "" {
			continue
		}
		m.Set(name, body)
	}

	if m.Len() == 0 {
		return nil, false
	}
	return m, true
}
