package casing

import (
	"strings"
	"testing"
)

// sampleInputs covers letters, digits, punctuation and non-ASCII text.
var sampleInputs = []string{"a", "Z", "m", "7", " ", "=", "_", "-", ".", "é", "ß", "\t", "\n", "?"}

var samplePrevious = []string{"", " ", "a", "B", "_", "="}

func TestBaseCaseIsIdentity(t *testing.T) {
	for _, in := range sampleInputs {
		for _, prev := range samplePrevious {
			r := Transform(StyleBase, in, prev)
			if r.Text != in || r.Start != 0 || r.End != len(in) {
				t.Errorf("base(%q, %q): expected identity, got %+v", in, prev, r)
			}
		}
	}
}

func TestSeparatorSubstitution(t *testing.T) {
	tests := []struct {
		style Style
		sep   string
	}{
		{StyleUpper, "_"},
		{StyleKebab, "-"},
		{StyleSnake, "_"},
		{StyleDot, "."},
	}

	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			for _, prev := range samplePrevious {
				r := Transform(tt.style, " ", prev)
				if r.Text != tt.sep {
					t.Errorf("space after %q: expected %q, got %q", prev, tt.sep, r.Text)
				}
				if r.Start != 0 || r.End != 1 {
					t.Errorf("space after %q: expected span [0,1), got [%d,%d)", prev, r.Start, r.End)
				}
			}

			sep, ok := Separator(tt.style)
			if !ok || sep != tt.sep {
				t.Errorf("Separator: expected %q, got %q (ok=%v)", tt.sep, sep, ok)
			}
		})
	}
}

func TestSeparatorNotDefined(t *testing.T) {
	for _, s := range []Style{StyleBase, StyleCamel} {
		if _, ok := Separator(s); ok {
			t.Errorf("%s should not have a separator", s)
		}
	}
}

func TestCaseNormalization(t *testing.T) {
	letters := []string{"a", "b", "q", "z", "A", "M", "Z", "é", "É"}

	for _, c := range letters {
		for _, prev := range samplePrevious {
			if got := Transform(StyleUpper, c, prev).Text; got != strings.ToUpper(c) {
				t.Errorf("UPPER_CASE(%q): expected %q, got %q", c, strings.ToUpper(c), got)
			}
			if got := Transform(StyleKebab, c, prev).Text; got != strings.ToLower(c) {
				t.Errorf("kebab-case(%q): expected %q, got %q", c, strings.ToLower(c), got)
			}
			if got := Transform(StyleSnake, c, prev).Text; got != strings.ToLower(c) {
				t.Errorf("snake_case(%q): expected %q, got %q", c, strings.ToLower(c), got)
			}
			if got := Transform(StyleDot, c, prev).Text; got != c {
				t.Errorf("dot.case(%q): expected unchanged, got %q", c, got)
			}
		}
	}
}

func TestCamelBoundaryRewrite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		previous string
		want     Replacement
	}{
		{"lower after space", "w", " ", Replacement{Start: -1, End: 1, Text: "W"}},
		{"upper after space", "Q", " ", Replacement{Start: -1, End: 1, Text: "Q"}},
		{"letter after letter", "w", "o", Replacement{Start: 0, End: 1, Text: "w"}},
		{"letter at start", "h", "", Replacement{Start: 0, End: 1, Text: "h"}},
		{"digit after space", "4", " ", Replacement{Start: 0, End: 1, Text: "4"}},
		{"non-ascii after space", "é", " ", Replacement{Start: 0, End: len("é"), Text: "é"}},
		{"space after letter", " ", "o", Replacement{Start: 0, End: 1, Text: " "}},
		{"space after space", " ", " ", Replacement{Start: 0, End: 1, Text: " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(StyleCamel, tt.input, tt.previous)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if got.Wide() != (tt.want.Start < 0) {
				t.Errorf("Wide() mismatch for %+v", got)
			}
		})
	}
}

func TestOnlyCamelIsWide(t *testing.T) {
	for _, s := range Styles() {
		if s == StyleCamel {
			continue
		}
		for _, in := range sampleInputs {
			if Transform(s, in, " ").Wide() {
				t.Errorf("%s(%q) should replace only the inserted text", s, in)
			}
		}
	}
}

func TestRuleUnknownStyle(t *testing.T) {
	r := Transform(Style(200), "a", " ")
	if r.Text != "a" || r.Wide() {
		t.Errorf("unknown style should fall back to identity, got %+v", r)
	}
}

func TestEveryStyleHasRule(t *testing.T) {
	for s := Style(0); s < styleCount; s++ {
		if rules[s] == nil {
			t.Errorf("style %s has no rule", s)
		}
	}
}
