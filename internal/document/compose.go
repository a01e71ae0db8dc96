package document

import (
	"fmt"

	"github.com/YadurajManu/bolonyay-server/internal/database"
)

// bodySection is one logical block of the document body: a numbered
// heading followed by bullet lines.
type bodySection struct {
	Title   string
	Bullets []string
}

// Canned boilerplate used when the model produced nothing for a section.
// Guarantees every generated document carries non-empty legal text even
// when content generation degraded.
var (
	defaultSummary = "The present matter arises out of the facts stated by the " +
		"petitioner during the filing conversation, which disclose a cause of " +
		"action requiring adjudication by this Hon'ble Court."

	defaultFacts = []string{
		"The petitioner approached this forum seeking redressal of grievances stated in the filing conversation.",
		"The facts narrated by the petitioner disclose a subsisting dispute between the parties.",
		"The petitioner has no other efficacious remedy available.",
	}

	defaultIssues = []string{
		"Whether the respondent is liable for the acts complained of.",
		"Whether the petitioner is entitled to the relief sought.",
	}

	defaultRelief = []string{
		"Pass appropriate orders granting relief to the petitioner.",
		"Award costs of these proceedings.",
		"Pass any other order this Hon'ble Court deems fit in the interest of justice.",
	}

	defaultCause = []string{
		"The cause of action arose when the events described in the facts above took place.",
		"The cause of action is continuing and subsists as on the date of filing.",
	}
)

// orBulletDefaults returns items, or the default set when items is empty.
func orBulletDefaults(items, defaults []string) []string {
	if len(items) == 0 {
		return defaults
	}
	return items
}

// composeBody builds the ordered body sections for a case. Section order
// is fixed: summary, facts, cause of action, grounds, relief,
// declaration.
func composeBody(record *database.CaseRecord, content Content) []bodySection {
	fields := content.Fields

	summary := content.CaseSummary
	if summary == "" {
		summary = defaultSummary
	}

	facts := orBulletDefaults(content.KeyFacts, defaultFacts)

	cause := []string{}
	if fields.Incident.Description != PlaceholderDescription {
		cause = append(cause, fmt.Sprintf(
			"On %s at %s, at %s, the following took place: %s",
			fields.Incident.Date, fields.Incident.Time,
			fields.Incident.Place, fields.Incident.Description,
		))
	}
	cause = append(cause, defaultCause...)

	grounds := orBulletDefaults(content.LegalIssues, defaultIssues)

	relief := orBulletDefaults(content.ReliefSought, defaultRelief)
	if fields.Amounts.Damages != PlaceholderAmount {
		relief = append(relief, fmt.Sprintf("Award damages of %s to the petitioner.", fields.Amounts.Damages))
	}

	sections := []bodySection{
		{Title: "BRIEF SUMMARY OF THE CASE", Bullets: []string{summary}},
		{Title: "STATEMENT OF FACTS", Bullets: facts},
		{Title: "CAUSE OF ACTION", Bullets: cause},
		{Title: "GROUNDS", Bullets: grounds},
		{Title: "RELIEF SOUGHT", Bullets: relief},
	}

	if len(fields.Witnesses) > 0 {
		sections = append(sections, bodySection{Title: "LIST OF WITNESSES", Bullets: fields.Witnesses})
	}
	if len(fields.UrgentFactors) > 0 {
		sections = append(sections, bodySection{Title: "GROUNDS OF URGENCY", Bullets: fields.UrgentFactors})
	}

	sections = append(sections, bodySection{
		Title: "DECLARATION",
		Bullets: []string{
			"The petitioner declares that the contents of this filing are true and correct to the best of their knowledge and belief.",
			"No part of this filing is false and nothing material has been concealed therefrom.",
		},
	})

	return sections
}

// partyLines renders one party block for the parties section.
func partyLines(label string, p PartyInfo) []string {
	lines := []string{
		fmt.Sprintf("%s: %s", label, p.Name),
		fmt.Sprintf("Age: %s, Occupation: %s", p.Age, p.Occupation),
		fmt.Sprintf("Address: %s", p.Address),
		fmt.Sprintf("Phone: %s", p.Phone),
	}
	if p.Relationship != "" {
		lines = append(lines, fmt.Sprintf("Relationship to petitioner: %s", p.Relationship))
	}
	return lines
}
