package casing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// ErrUnknownStyle is returned when a style name cannot be resolved.
var ErrUnknownStyle = errors.New("unknown case style")

// Style identifies an identifier naming convention.
type Style uint8

const (
	// StyleBase passes input through untouched.
	StyleBase Style = iota
	// StyleCamel joins words by capitalizing the letter after a space.
	StyleCamel
	// StyleUpper uppercases letters and separates words with underscores.
	StyleUpper
	// StyleKebab lowercases letters and separates words with hyphens.
	StyleKebab
	// StyleSnake lowercases letters and separates words with underscores.
	StyleSnake
	// StyleDot keeps letters and separates words with dots.
	StyleDot

	styleCount
)

// String returns the conventional spelling of the style name.
func (s Style) String() string {
	switch s {
	case StyleBase:
		return "base case"
	case StyleCamel:
		return "camelCase"
	case StyleUpper:
		return "UPPER_CASE"
	case StyleKebab:
		return "kebab-case"
	case StyleSnake:
		return "snake_case"
	case StyleDot:
		return "dot.case"
	default:
		return fmt.Sprintf("Style(%d)", uint8(s))
	}
}

// Description returns the human-readable hint shown in the style menu.
func (s Style) Description() string {
	switch s {
	case StyleBase:
		return "Stop converting and type text as-is"
	case StyleCamel:
		return "Commonly used in JavaScript for variables and functions"
	case StyleUpper:
		return "Commonly used for constants and configuration keys"
	case StyleKebab:
		return "Commonly used in URLs, file names and IDs"
	case StyleSnake:
		return "Commonly used in Python for variable and function names"
	case StyleDot:
		return "Commonly used in file extensions and package names"
	default:
		return ""
	}
}

// CommandID returns the ID of the command that starts a session in this style.
func (s Style) CommandID() string {
	return CommandPrefix + s.key()
}

// Valid reports whether s is one of the defined styles.
func (s Style) Valid() bool {
	return s < styleCount
}

// key is the short lowercase name used in command IDs and lenient parsing.
func (s Style) key() string {
	switch s {
	case StyleBase:
		return "base"
	case StyleCamel:
		return "camel"
	case StyleUpper:
		return "upper"
	case StyleKebab:
		return "kebab"
	case StyleSnake:
		return "snake"
	case StyleDot:
		return "dot"
	default:
		return ""
	}
}

// CommandPrefix is the namespace of the per-style commands.
const CommandPrefix = "case."

// Styles returns every style in menu order.
func Styles() []Style {
	return []Style{StyleUpper, StyleKebab, StyleCamel, StyleSnake, StyleDot, StyleBase}
}

// aliases maps normalized names to styles.
var aliases = map[string]Style{
	"base":      StyleBase,
	"none":      StyleBase,
	"camel":     StyleCamel,
	"upper":     StyleUpper,
	"screaming": StyleUpper,
	"uppercase": StyleUpper,
	"constant":  StyleUpper,
	"kebab":     StyleKebab,
	"snake":     StyleSnake,
	"dot":       StyleDot,
}

// ParseStyle resolves a style from a name. It accepts the conventional
// spellings ("snake_case", "UPPER_CASE", "dot.case"), short names ("snake"),
// command IDs ("case.snake") and any mix of word separators or casing
// ("Snake Case", "snakeCase", "SNAKE-CASE").
func ParseStyle(name string) (Style, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return StyleBase, fmt.Errorf("%w: empty name", ErrUnknownStyle)
	}
	n = strings.TrimPrefix(n, CommandPrefix)
	n = strings.ReplaceAll(n, ".", " ")
	n = strcase.ToSnake(n)
	n = strings.TrimSuffix(n, "_case")

	if s, ok := aliases[n]; ok {
		return s, nil
	}
	return StyleBase, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}
