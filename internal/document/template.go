package document

import (
	"strings"
)

// Template is a named legal-document layout variant.
type Template string

const (
	TemplateCivil    Template = "civil"
	TemplateCriminal Template = "criminal"
	TemplateFamily   Template = "family"
	TemplateConsumer Template = "consumer"
	TemplateLabor    Template = "labor"
	TemplateWrit     Template = "writ"
)

// templateKeywords maps domain keywords to templates. Order matters:
// the first matching group wins.
var templateKeywords = []struct {
	template Template
	words    []string
}{
	{TemplateCriminal, []string{"criminal", "fir", "fraud"}},
	{TemplateFamily, []string{"family", "divorce", "custody"}},
	{TemplateConsumer, []string{"consumer", "service", "product"}},
	{TemplateLabor, []string{"labor", "employment", "salary"}},
	{TemplateWrit, []string{"writ", "constitutional", "government"}},
	{TemplateCivil, []string{"civil", "property", "contract"}},
}

// SelectTemplate picks a template by scanning the case-type label for
// domain keywords. Total and deterministic: every input maps to exactly
// one template, with civil as the default.
func SelectTemplate(caseType string) Template {
	lower := strings.ToLower(caseType)
	for _, group := range templateKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				return group.template
			}
		}
	}
	return TemplateCivil
}

// Title returns the document heading for a template.
func (t Template) Title() string {
	switch t {
	case TemplateCriminal:
		return "CRIMINAL COMPLAINT"
	case TemplateFamily:
		return "FAMILY PETITION"
	case TemplateConsumer:
		return "CONSUMER COMPLAINT"
	case TemplateLabor:
		return "LABOUR DISPUTE APPLICATION"
	case TemplateWrit:
		return "WRIT PETITION"
	}
	return "CIVIL SUIT"
}

// Court returns the forum line printed under the heading.
func (t Template) Court() string {
	switch t {
	case TemplateCriminal:
		return "IN THE COURT OF THE JUDICIAL MAGISTRATE"
	case TemplateFamily:
		return "IN THE FAMILY COURT"
	case TemplateConsumer:
		return "BEFORE THE DISTRICT CONSUMER DISPUTES REDRESSAL COMMISSION"
	case TemplateLabor:
		return "BEFORE THE LABOUR COURT"
	case TemplateWrit:
		return "IN THE HIGH COURT OF JUDICATURE"
	}
	return "IN THE COURT OF THE CIVIL JUDGE"
}

// PartyLabels returns the labels for the two parties. Criminal matters
// use COMPLAINANT and ACCUSED; everything else uses PETITIONER and
// RESPONDENT.
func PartyLabels(caseType string) (string, string) {
	if SelectTemplate(caseType) == TemplateCriminal {
		return "COMPLAINANT", "ACCUSED"
	}
	return "PETITIONER", "RESPONDENT"
}

// Category returns the upper-case case category used in party headings,
// e.g. "CRIMINAL" for a criminal matter.
func Category(caseType string) string {
	return strings.ToUpper(string(SelectTemplate(caseType)))
}
