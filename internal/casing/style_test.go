package casing

import (
	"errors"
	"testing"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name string
		want Style
	}{
		{"camelCase", StyleCamel},
		{"camel", StyleCamel},
		{"Camel Case", StyleCamel},
		{"UPPER_CASE", StyleUpper},
		{"SCREAMING_CASE", StyleUpper},
		{"UPPERCASE", StyleUpper},
		{"kebab-case", StyleKebab},
		{"KEBAB-CASE", StyleKebab},
		{"snake_case", StyleSnake},
		{"snakeCase", StyleSnake},
		{"  snake ", StyleSnake},
		{"dot.case", StyleDot},
		{"base case", StyleBase},
		{"base", StyleBase},
		{"case.kebab", StyleKebab},
		{"case.base", StyleBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStyle(tt.name)
			if err != nil {
				t.Fatalf("ParseStyle(%q) failed: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseStyle(%q): expected %s, got %s", tt.name, tt.want, got)
			}
		})
	}
}

func TestParseStyleUnknown(t *testing.T) {
	for _, name := range []string{"", "   ", "pascal", "title case", "case"} {
		_, err := ParseStyle(name)
		if !errors.Is(err, ErrUnknownStyle) {
			t.Errorf("ParseStyle(%q): expected ErrUnknownStyle, got %v", name, err)
		}
	}
}

func TestStyleRoundTrip(t *testing.T) {
	for _, s := range Styles() {
		got, err := ParseStyle(s.String())
		if err != nil {
			t.Fatalf("ParseStyle(%q) failed: %v", s.String(), err)
		}
		if got != s {
			t.Errorf("expected %s, got %s", s, got)
		}

		got, err = ParseStyle(s.CommandID())
		if err != nil || got != s {
			t.Errorf("command ID %q: expected %s, got %s (%v)", s.CommandID(), s, got, err)
		}
	}
}

func TestStylesMenu(t *testing.T) {
	styles := Styles()
	if len(styles) != int(styleCount) {
		t.Fatalf("expected %d styles, got %d", styleCount, len(styles))
	}

	seen := make(map[Style]bool)
	for _, s := range styles {
		if seen[s] {
			t.Errorf("duplicate style %s", s)
		}
		seen[s] = true
		if s.Description() == "" {
			t.Errorf("style %s has no description", s)
		}
		if !s.Valid() {
			t.Errorf("style %s should be valid", s)
		}
	}

	if Style(99).Valid() {
		t.Error("Style(99) should not be valid")
	}
}
