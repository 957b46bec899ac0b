package palette

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownCommand is returned when executing an unregistered command.
var ErrUnknownCommand = errors.New("unknown command")

// Palette provides searchable access to commands.
type Palette struct {
	mu       sync.RWMutex
	commands map[string]*entry
	seq      int
	history  *History
	filter   *Filter

	// onChange callbacks are called when commands are added/removed.
	onChange []func()
}

type entry struct {
	cmd   *Command
	order int
}

// New creates a new command palette.
func New() *Palette {
	return NewWithHistory(100)
}

// NewWithHistory creates a palette with a custom history size.
func NewWithHistory(historySize int) *Palette {
	return &Palette{
		commands: make(map[string]*entry),
		history:  NewHistory(historySize),
		filter:   NewFilter(),
	}
}

// Register adds a command to the palette.
// If a command with the same ID exists, it is replaced in place.
func (p *Palette) Register(cmd *Command) error {
	if cmd == nil {
		return errors.New("command cannot be nil")
	}
	if cmd.ID == "" {
		return errors.New("command ID cannot be empty")
	}
	if cmd.Title == "" {
		return fmt.Errorf("command %q: title cannot be empty", cmd.ID)
	}

	p.mu.Lock()
	if e, ok := p.commands[cmd.ID]; ok {
		e.cmd = cmd
	} else {
		p.seq++
		p.commands[cmd.ID] = &entry{cmd: cmd, order: p.seq}
	}
	p.mu.Unlock()

	p.notifyChange()
	return nil
}

// RegisterAll adds multiple commands to the palette.
func (p *Palette) RegisterAll(commands []*Command) error {
	for _, cmd := range commands {
		if err := p.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes a command from the palette.
func (p *Palette) Unregister(id string) bool {
	p.mu.Lock()
	_, exists := p.commands[id]
	delete(p.commands, id)
	p.mu.Unlock()

	if exists {
		p.notifyChange()
	}
	return exists
}

// UnregisterBySource removes all commands from a specific source.
func (p *Palette) UnregisterBySource(source string) int {
	p.mu.Lock()
	count := 0
	for id, e := range p.commands {
		if e.cmd.Source == source {
			delete(p.commands, id)
			count++
		}
	}
	p.mu.Unlock()

	if count > 0 {
		p.notifyChange()
	}
	return count
}

// Get retrieves a command by ID.
func (p *Palette) Get(id string) *Command {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e, ok := p.commands[id]; ok {
		return e.cmd
	}
	return nil
}

// SetKeybinding updates the shortcut shown next to a command.
func (p *Palette) SetKeybinding(id, keys string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.commands[id]
	if !ok {
		return false
	}
	cmd := *e.cmd
	cmd.Keybinding = keys
	e.cmd = &cmd
	return true
}

// All returns all registered commands in registration order.
func (p *Palette) All() []*Command {
	return p.collect(func(*Command) bool { return true })
}

// CommandsByCategory returns the commands of a category in registration
// order.
func (p *Palette) CommandsByCategory(category string) []*Command {
	return p.collect(func(c *Command) bool { return c.Category == category })
}

func (p *Palette) collect(keep func(*Command) bool) []*Command {
	p.mu.RLock()
	entries := make([]*entry, 0, len(p.commands))
	for _, e := range p.commands {
		if keep(e.cmd) {
			entries = append(entries, e)
		}
	}
	p.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
	out := make([]*Command, len(entries))
	for i, e := range entries {
		out[i] = e.cmd
	}
	return out
}

// Count returns the number of registered commands.
func (p *Palette) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.commands)
}

// Search finds commands matching the query across every category.
// Recently executed commands rank higher.
func (p *Palette) Search(query string, limit int) []SearchResult {
	return p.search(p.All(), query, limit, true)
}

// SearchCategory finds commands of one category matching the query.
// An empty query keeps registration order.
func (p *Palette) SearchCategory(category, query string, limit int) []SearchResult {
	return p.search(p.CommandsByCategory(category), query, limit, false)
}

func (p *Palette) search(commands []*Command, query string, limit int, byHistory bool) []SearchResult {
	p.mu.RLock()
	filter := p.filter
	p.mu.RUnlock()

	results := filter.Search(commands, query)
	if byHistory {
		for i := range results {
			if pos := p.history.Position(results[i].Command.ID); pos >= 0 {
				results[i].Score += 100 - pos
			}
		}
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Execute runs a command by ID.
// History is only updated after successful execution.
func (p *Palette) Execute(id string) error {
	cmd := p.Get(id)
	if cmd == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	if err := cmd.Execute(); err != nil {
		return err
	}
	p.history.Add(id)
	return nil
}

// History returns the command history.
func (p *Palette) History() *History {
	return p.history
}

// Categories returns all unique command categories.
func (p *Palette) Categories() []string {
	return Categories(p.All())
}

// OnChange registers a callback for command list changes.
// Callbacks run without the palette lock held and must not call OnChange.
func (p *Palette) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

func (p *Palette) notifyChange() {
	p.mu.RLock()
	callbacks := make([]func(), len(p.onChange))
	copy(callbacks, p.onChange)
	p.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}

// SetFilter sets a custom filter for searching.
func (p *Palette) SetFilter(filter *Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = filter
}

// Open returns a picker over every command, or over one category when
// category is not empty.
func (p *Palette) Open(category string) *Picker {
	pk := &Picker{palette: p, category: category}
	pk.refresh()
	return pk
}
