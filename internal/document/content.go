package document

import (
	"github.com/YadurajManu/bolonyay-server/internal/llm"
)

// Content is the structured document content assembled from the model's
// free-text response plus the extracted form fields.
type Content struct {
	CaseSummary  string
	KeyFacts     []string
	LegalIssues  []string
	ReliefSought []string
	NextSteps    []string
	Fields       ExtractedFields
}

var contentHeaders = []string{
	llm.HeaderCaseSummary,
	llm.HeaderKeyFacts,
	llm.HeaderLegalIssues,
	llm.HeaderReliefSought,
	llm.HeaderNextSteps,
}

// ParseContent builds Content from a section-formatted model response.
// Sections the model omits stay empty here; the composition step
// substitutes boilerplate so no rendered section is ever blank.
func ParseContent(response string, fields ExtractedFields) Content {
	content := Content{Fields: fields}

	sections := llm.ParseSections(response, contentHeaders)

	if s, ok := llm.FindSection(sections, llm.HeaderCaseSummary); ok {
		content.CaseSummary = s.Text
		if content.CaseSummary == "" && len(s.Items) > 0 {
			content.CaseSummary = s.Items[0]
		}
	}
	if s, ok := llm.FindSection(sections, llm.HeaderKeyFacts); ok {
		content.KeyFacts = s.Items
	}
	if s, ok := llm.FindSection(sections, llm.HeaderLegalIssues); ok {
		content.LegalIssues = s.Items
	}
	if s, ok := llm.FindSection(sections, llm.HeaderReliefSought); ok {
		content.ReliefSought = s.Items
	}
	if s, ok := llm.FindSection(sections, llm.HeaderNextSteps); ok {
		content.NextSteps = s.Items
	}

	return content
}
