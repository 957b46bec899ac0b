package palette

import (
	"unicode/utf8"
)

// Picker is the state of an open palette overlay. It is not safe for
// concurrent use; the UI goroutine owns it.
type Picker struct {
	palette  *Palette
	category string
	query    string
	results  []SearchResult
	selected int
}

// Category returns the category the picker is restricted to, or "".
func (pk *Picker) Category() string { return pk.category }

// Query returns the current search text.
func (pk *Picker) Query() string { return pk.query }

// Results returns the commands matching the query.
func (pk *Picker) Results() []SearchResult { return pk.results }

// Selected returns the index of the highlighted result, -1 when there are
// no results.
func (pk *Picker) Selected() int {
	if len(pk.results) == 0 {
		return -1
	}
	return pk.selected
}

// Type appends r to the query.
func (pk *Picker) Type(r rune) {
	pk.SetQuery(pk.query + string(r))
}

// Backspace removes the last character of the query.
func (pk *Picker) Backspace() {
	if pk.query == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(pk.query)
	pk.SetQuery(pk.query[:len(pk.query)-size])
}

// SetQuery replaces the query and resets the selection.
func (pk *Picker) SetQuery(q string) {
	pk.query = q
	pk.refresh()
}

// Next moves the selection down, wrapping around.
func (pk *Picker) Next() { pk.move(1) }

// Previous moves the selection up, wrapping around.
func (pk *Picker) Previous() { pk.move(-1) }

func (pk *Picker) move(step int) {
	n := len(pk.results)
	if n == 0 {
		return
	}
	pk.selected = ((pk.selected+step)%n + n) % n
}

// Current returns the highlighted command, or nil.
func (pk *Picker) Current() *Command {
	if i := pk.Selected(); i >= 0 {
		return pk.results[i].Command
	}
	return nil
}

// Accept runs the highlighted command through the palette and returns it.
// It returns nil with no error when nothing is highlighted.
func (pk *Picker) Accept() (*Command, error) {
	cmd := pk.Current()
	if cmd == nil {
		return nil, nil
	}
	return cmd, pk.palette.Execute(cmd.ID)
}

func (pk *Picker) refresh() {
	if pk.category == "" {
		pk.results = pk.palette.Search(pk.query, 0)
	} else {
		pk.results = pk.palette.SearchCategory(pk.category, pk.query, 0)
	}
	pk.selected = 0
}
