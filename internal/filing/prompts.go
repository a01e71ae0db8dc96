package filing

import (
	"fmt"
	"strings"
)

// All higher-level model behavior is prompt construction over the single
// completion primitive; the prompts live with their call sites here.

const classifySystemPrompt = `You are a legal assistant for Indian citizens filing court cases. ` +
	`Given a citizen's statement, classify the case and prepare filing questions. ` +
	`Respond in exactly this format:

CASE TYPE: <one short label, e.g. "Criminal Case - Cheating and Fraud">
CASE DETAILS: <two or three sentences describing the matter>
QUESTIONS:
- <question 1>
- <question 2>
- <further questions, at most eight, each collecting one fact needed for the filing>`

const extractSystemPrompt = `You are a legal form-filling assistant. From the case details and ` +
	`the question/answer pairs, extract structured fields. Respond with only a JSON object in ` +
	`this shape, using empty strings for anything not mentioned:

{
  "petitioner": {"name": "", "age": "", "occupation": "", "address": "", "phone": ""},
  "respondent": {"name": "", "age": "", "occupation": "", "address": "", "phone": "", "relationship": ""},
  "incident": {"date": "", "time": "", "place": "", "description": ""},
  "amounts": {"damages": "", "expenses": ""},
  "witnesses": [],
  "urgentFactors": []
}`

const contentSystemPrompt = `You are a legal drafting assistant for Indian court filings. ` +
	`From the case details and answers, draft document content. Respond in exactly this format:

CASE SUMMARY: <one paragraph>
KEY FACTS:
- <fact>
LEGAL ISSUES:
- <issue>
RELIEF SOUGHT:
- <relief>
NEXT STEPS:
- <step>`

func classifyUserPrompt(statement string) string {
	return fmt.Sprintf("Citizen's statement:\n%s", statement)
}

// qaTranscript renders index-aligned question/answer pairs. Unanswered
// questions appear with an empty answer rather than being dropped.
func qaTranscript(questions, responses []string) string {
	var b strings.Builder
	for i, q := range questions {
		answer := ""
		if i < len(responses) {
			answer = responses[i]
		}
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", i+1, q, i+1, answer)
	}
	return b.String()
}

func extractUserPrompt(caseType, caseDetails string, questions, responses []string) string {
	return fmt.Sprintf("Case type: %s\nCase details: %s\n\nConversation:\n%s",
		caseType, caseDetails, qaTranscript(questions, responses))
}

func contentUserPrompt(caseType, caseDetails, summary string, questions, responses []string) string {
	return fmt.Sprintf("Case type: %s\nCase details: %s\nStatement: %s\n\nConversation:\n%s",
		caseType, caseDetails, summary, qaTranscript(questions, responses))
}
