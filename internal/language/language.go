package language

import (
	"context"
	"fmt"
	"strings"
)

// Language is one of the five languages the filing pipeline supports.
type Language string

const (
	Hindi    Language = "hindi"
	Gujarati Language = "gujarati"
	English  Language = "english"
	Urdu     Language = "urdu"
	Marathi  Language = "marathi"
)

// BhashiniCode returns the ISO 639-1 code used by the speech pipeline.
func (l Language) BhashiniCode() string {
	switch l {
	case Hindi:
		return "hi"
	case Gujarati:
		return "gu"
	case English:
		return "en"
	case Urdu:
		return "ur"
	case Marathi:
		return "mr"
	}
	return "hi"
}

// normalize maps a raw label to a supported language. Known abbreviations
// and canonical names both resolve; ok is false for anything else.
func normalize(raw string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hi", "hin", "hindi":
		return Hindi, true
	case "gu", "guj", "gujarati":
		return Gujarati, true
	case "en", "eng", "english":
		return English, true
	case "ur", "urd", "urdu":
		return Urdu, true
	case "mr", "mar", "marathi":
		return Marathi, true
	}
	return "", false
}

// Validate maps a raw label from a detection model to a supported
// language, defaulting unrecognized input to Hindi. Validation sits after
// a detector that already saw real speech, so the dominant input language
// is the safer fallback here. Idempotent over its own output.
func Validate(raw string) Language {
	if lang, ok := normalize(raw); ok {
		return lang
	}
	return Hindi
}

// Completer is the single LLM primitive the detector needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// Detector identifies the language of free text through the LLM gateway.
type Detector struct {
	llm Completer
}

func NewDetector(llm Completer) *Detector {
	return &Detector{llm: llm}
}

const detectSystemPrompt = "You are a language identification system. " +
	"Identify the language of the user's text. Respond with exactly one " +
	"word: hindi, gujarati, english, urdu, or marathi. No punctuation."

// DetectFromText identifies the language of text, defaulting unrecognized
// answers to English. Unlike Validate, this path is reached for typed or
// already-romanized input, where Latin script is the common case. Keep the
// two defaults distinct.
func (d *Detector) DetectFromText(ctx context.Context, text string) (Language, error) {
	if strings.TrimSpace(text) == "" {
		return English, nil
	}

	resp, err := d.llm.Complete(ctx, detectSystemPrompt, text, 10, 0.0)
	if err != nil {
		return "", fmt.Errorf("language detection: %w", err)
	}

	if lang, ok := normalize(resp); ok {
		return lang, nil
	}
	return English, nil
}
