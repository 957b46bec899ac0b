package casing

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// space is the word boundary every style reacts to.
const space = " "

// Replacement describes how the text around an insertion should be
// rewritten. Start and End are byte offsets relative to the insertion
// point; the span [Start, End) is replaced with Text.
type Replacement struct {
	Start int
	End   int
	Text  string
}

// Wide reports whether the replacement reaches before the inserted text.
func (r Replacement) Wide() bool {
	return r.Start < 0
}

// TransformFunc maps a raw input character, given the raw character typed
// before it, to the replacement for the just-inserted text.
type TransformFunc func(input, previous string) Replacement

// rules is indexed by Style; its length pins every style to a rule.
var rules = [styleCount]TransformFunc{
	StyleBase:  identity,
	StyleCamel: camel,
	StyleUpper: separated("_", upper),
	StyleKebab: separated("-", lower),
	StyleSnake: separated("_", lower),
	StyleDot:   separated(".", nil),
}

// Rule returns the transform for a style. Unknown styles get the identity
// transform.
func Rule(s Style) TransformFunc {
	if !s.Valid() {
		return identity
	}
	return rules[s]
}

// Transform applies the rule of style s to one input character.
func Transform(s Style, input, previous string) Replacement {
	return Rule(s)(input, previous)
}

// Separator returns the character a style substitutes for a space.
// The second result is false for styles that do not substitute.
func Separator(s Style) (string, bool) {
	switch s {
	case StyleUpper, StyleSnake:
		return "_", true
	case StyleKebab:
		return "-", true
	case StyleDot:
		return ".", true
	default:
		return "", false
	}
}

func replaceInput(input, text string) Replacement {
	return Replacement{Start: 0, End: len(input), Text: text}
}

func identity(input, _ string) Replacement {
	return replaceInput(input, input)
}

// separated builds a rule that maps a space to sep and every other input
// through letter (nil leaves it unchanged).
func separated(sep string, letter func(string) string) TransformFunc {
	return func(input, _ string) Replacement {
		if input == space {
			return replaceInput(input, sep)
		}
		if letter == nil {
			return replaceInput(input, input)
		}
		return replaceInput(input, letter(input))
	}
}

// camel leaves input alone except for a single ASCII letter typed right
// after a space: the space and the letter collapse into the uppercase letter.
func camel(input, previous string) Replacement {
	if previous == space && isASCIILetter(input) {
		return Replacement{Start: -len(space), End: len(input), Text: upper(input)}
	}
	return replaceInput(input, input)
}

// Casers keep state, so a fresh one is built per call.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func isASCIILetter(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
