package document

import (
	"encoding/json"
	"strings"
)

// Placeholder strings substituted when extraction cannot find a value.
// Fields are never left empty so rendering stays deterministic.
const (
	PlaceholderName         = "Name to be filled"
	PlaceholderAge          = "Age to be filled"
	PlaceholderOccupation   = "Occupation to be filled"
	PlaceholderAddress      = "Address to be filled"
	PlaceholderPhone        = "Phone to be filled"
	PlaceholderRelationship = "Relationship to be filled"
	PlaceholderDate         = "Date to be filled"
	PlaceholderTime         = "Time to be filled"
	PlaceholderPlace        = "Place to be filled"
	PlaceholderDescription  = "Description to be filled"
	PlaceholderAmount       = "Amount to be filled"
)

// PartyInfo describes one party to the case.
type PartyInfo struct {
	Name         string `json:"name"`
	Age          string `json:"age"`
	Occupation   string `json:"occupation"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// IncidentInfo describes the incident at the center of the case.
type IncidentInfo struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Place       string `json:"place"`
	Description string `json:"description"`
}

// AmountInfo holds claimed monetary amounts.
type AmountInfo struct {
	Damages  string `json:"damages"`
	Expenses string `json:"expenses"`
}

// ExtractedFields is the structured form data pulled out of the filing
// conversation. Every field carries either an extracted value or its
// placeholder; none are ever empty.
type ExtractedFields struct {
	Petitioner    PartyInfo    `json:"petitioner"`
	Respondent    PartyInfo    `json:"respondent"`
	Incident      IncidentInfo `json:"incident"`
	Amounts       AmountInfo   `json:"amounts"`
	Witnesses     []string     `json:"witnesses"`
	UrgentFactors []string     `json:"urgentFactors"`
}

// DefaultExtractedFields returns a fully placeholder-filled record.
func DefaultExtractedFields() ExtractedFields {
	return ExtractedFields{
		Petitioner: PartyInfo{
			Name:       PlaceholderName,
			Age:        PlaceholderAge,
			Occupation: PlaceholderOccupation,
			Address:    PlaceholderAddress,
			Phone:      PlaceholderPhone,
		},
		Respondent: PartyInfo{
			Name:         PlaceholderName,
			Age:          PlaceholderAge,
			Occupation:   PlaceholderOccupation,
			Address:      PlaceholderAddress,
			Phone:        PlaceholderPhone,
			Relationship: PlaceholderRelationship,
		},
		Incident: IncidentInfo{
			Date:        PlaceholderDate,
			Time:        PlaceholderTime,
			Place:       PlaceholderPlace,
			Description: PlaceholderDescription,
		},
		Amounts: AmountInfo{
			Damages:  PlaceholderAmount,
			Expenses: PlaceholderAmount,
		},
		Witnesses:     []string{},
		UrgentFactors: []string{},
	}
}

// DecodeExtractedFields parses the extraction model's JSON response.
// The form-extraction path never propagates a parse failure: a response
// that cannot be decoded yields the all-placeholder record, and any
// individual missing field keeps its placeholder.
func DecodeExtractedFields(raw string) ExtractedFields {
	fields := DefaultExtractedFields()

	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return fields
	}

	var decoded ExtractedFields
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return fields
	}

	mergeParty(&fields.Petitioner, decoded.Petitioner)
	mergeParty(&fields.Respondent, decoded.Respondent)
	mergeStr(&fields.Incident.Date, decoded.Incident.Date)
	mergeStr(&fields.Incident.Time, decoded.Incident.Time)
	mergeStr(&fields.Incident.Place, decoded.Incident.Place)
	mergeStr(&fields.Incident.Description, decoded.Incident.Description)
	mergeStr(&fields.Amounts.Damages, decoded.Amounts.Damages)
	mergeStr(&fields.Amounts.Expenses, decoded.Amounts.Expenses)
	if len(decoded.Witnesses) > 0 {
		fields.Witnesses = decoded.Witnesses
	}
	if len(decoded.UrgentFactors) > 0 {
		fields.UrgentFactors = decoded.UrgentFactors
	}

	return fields
}

func mergeParty(dst *PartyInfo, src PartyInfo) {
	mergeStr(&dst.Name, src.Name)
	mergeStr(&dst.Age, src.Age)
	mergeStr(&dst.Occupation, src.Occupation)
	mergeStr(&dst.Address, src.Address)
	mergeStr(&dst.Phone, src.Phone)
	if dst.Relationship != "" {
		mergeStr(&dst.Relationship, src.Relationship)
	}
}

func mergeStr(dst *string, src string) {
	if strings.TrimSpace(src) != "" {
		*dst = strings.TrimSpace(src)
	}
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON in one.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
