package translate

import "context"

// Translator turns extracted text into the configured target language.
type Translator interface {
	Translate(ctx context.Context, text string) (Result, error)
}

// Result of a translation. DetectedSourceLanguage is informational only.
type Result struct {
	Text                   string
	DetectedSourceLanguage string
}
