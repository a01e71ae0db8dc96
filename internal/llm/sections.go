package llm

import (
	"strings"
)

// Headers the classification and document-content prompts instruct the
// model to emit.
const (
	HeaderCaseType     = "CASE TYPE:"
	HeaderCaseDetails  = "CASE DETAILS:"
	HeaderQuestions    = "QUESTIONS:"
	HeaderCaseSummary  = "CASE SUMMARY:"
	HeaderKeyFacts     = "KEY FACTS:"
	HeaderLegalIssues  = "LEGAL ISSUES:"
	HeaderReliefSought = "RELIEF SOUGHT:"
	HeaderNextSteps    = "NEXT STEPS:"
)

// Section is one header-delimited block of a model response. Items holds
// dash-prefixed bullet lines; Text holds everything else, joined.
type Section struct {
	Header string
	Text   string
	Items  []string
}

// ParseSections splits a model response into header-delimited sections.
// A line matching one of headers (case-insensitive, content may follow on
// the same line) opens a new section; lines before the first header are
// discarded. Bullet lines ("- " or "• ") become Items, the rest joins
// into Text.
func ParseSections(response string, headers []string) []Section {
	var sections []Section
	var current *Section
	var textLines []string

	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(textLines, "\n"))
			sections = append(sections, *current)
		}
		textLines = nil
	}

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if header, rest, ok := matchHeader(trimmed, headers); ok {
			flush()
			current = &Section{Header: header}
			if rest != "" {
				if item, isBullet := stripBullet(rest); isBullet {
					current.Items = append(current.Items, item)
				} else {
					textLines = append(textLines, rest)
				}
			}
			continue
		}

		if current == nil {
			continue
		}

		if item, isBullet := stripBullet(trimmed); isBullet {
			current.Items = append(current.Items, item)
			continue
		}
		textLines = append(textLines, trimmed)
	}
	flush()

	return sections
}

// FindSection returns the first section with the given header.
func FindSection(sections []Section, header string) (Section, bool) {
	for _, s := range sections {
		if strings.EqualFold(s.Header, header) {
			return s, true
		}
	}
	return Section{}, false
}

// matchHeader checks whether a line opens one of the known sections and
// returns the canonical header plus any content after it.
func matchHeader(line string, headers []string) (string, string, bool) {
	upper := strings.ToUpper(line)
	for _, h := range headers {
		if strings.HasPrefix(upper, h) {
			rest := strings.TrimSpace(line[len(h):])
			return h, rest, true
		}
	}
	return "", "", false
}

func stripBullet(line string) (string, bool) {
	for _, prefix := range []string{"- ", "• ", "* "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	// A bare dash bullet with no content still counts as a bullet line
	// but contributes nothing.
	if line == "-" {
		return "", true
	}
	return "", false
}
