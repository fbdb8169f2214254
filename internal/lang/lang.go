package lang

import (
	"errors"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector names the language a piece of text is written in.
type Detector struct {
	detector lingua.LanguageDetector
}

// ErrSingleLanguage is returned when one language is passed, lingua needs
// at least two to choose between.
var ErrSingleLanguage = errors.New("language detection needs at least two languages")

// NewDetector builds a detector for the given languages, or for all of them
// when none are passed. Low accuracy mode keeps the loaded models small,
// translation input only needs a hint.
func NewDetector(languages ...lingua.Language) (*Detector, error) {
	b := lingua.NewLanguageDetectorBuilder()

	var builder lingua.LanguageDetectorBuilder
	switch len(languages) {
	case 0:
		builder = b.FromAllLanguages()
	case 1:
		return nil, ErrSingleLanguage
	default:
		builder = b.FromLanguages(languages...)
	}

	return &Detector{detector: builder.WithLowAccuracyMode().Build()}, nil
}

// Detect returns the English name of the language, ok is false when lingua
// can't tell.
func (d *Detector) Detect(text string) (name string, ok bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}

	return displayName(language), true
}

// displayName turns lingua's ENGLISH style names into English.
func displayName(l lingua.Language) string {
	s := strings.ToLower(l.String())
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
