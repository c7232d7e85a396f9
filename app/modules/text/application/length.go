package textservice

import (
	"fmt"
	"strings"
)

// LengthClass selects how much text a prompt asks for.
type LengthClass string

const (
	LengthShort  LengthClass = "short"
	LengthMedium LengthClass = "medium"
	LengthLarge  LengthClass = "large"

	DefaultLengthClass = LengthShort
)

// ParseLengthClass maps a query value onto a LengthClass.
func ParseLengthClass(s string) (LengthClass, bool) {
	switch c := LengthClass(strings.ToLower(strings.TrimSpace(s))); c {
	case LengthShort, LengthMedium, LengthLarge:
		return c, true
	default:
		return "", false
	}
}

type band struct{ min, max int }

type promptTemplate struct {
	lines        band
	wordsPerLine band
}

var templates = map[LengthClass]promptTemplate{
	LengthShort:  {lines: band{1, 4}, wordsPerLine: band{8, 12}},
	LengthMedium: {lines: band{4, 7}, wordsPerLine: band{10, 14}},
	LengthLarge:  {lines: band{8, 12}, wordsPerLine: band{10, 15}},
}

// Prompt returns the generation prompt for class; unknown classes use the default.
func Prompt(class LengthClass) string {
	t, ok := templates[class]
	if !ok {
		t = templates[DefaultLengthClass]
	}
	return fmt.Sprintf(
		"Generate an English text suitable for a typing test. "+
			"It should be a single coherent, self-contained paragraph, between %d and %d lines long, "+
			"with roughly %d to %d words per line. "+
			"IMPORTANT: Respond ONLY with the generated text itself, without any introduction, "+
			"explanation, commentary, or formatting like quotes.",
		t.lines.min, t.lines.max, t.wordsPerLine.min, t.wordsPerLine.max,
	)
}
