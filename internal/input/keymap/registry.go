package keymap

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/keycase/internal/input/key"
)

// ErrKeymapNotFound is returned when removing a keymap that is not registered.
var ErrKeymapNotFound = errors.New("keymap not found")

// Registry manages all keymaps and provides lookup.
type Registry struct {
	mu      sync.RWMutex
	keymaps map[string]*parsedKeymap
	seq     int
}

type parsedKeymap struct {
	*Keymap
	order    int
	bindings map[string]Binding // canonical key -> binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{keymaps: make(map[string]*parsedKeymap)}
}

// Register adds a keymap, replacing any keymap with the same name.
// Within a keymap a later binding for the same key wins.
func (r *Registry) Register(km *Keymap) error {
	if km == nil || km.Name == "" {
		return errors.New("keymap must have a name")
	}
	parsed := &parsedKeymap{
		Keymap:   km.Clone(),
		bindings: make(map[string]Binding, len(km.Bindings)),
	}
	for _, b := range km.Bindings {
		ev, err := key.Parse(b.Keys)
		if err != nil {
			return fmt.Errorf("keymap %q: binding %q: %w", km.Name, b.Keys, err)
		}
		parsed.bindings[ev.String()] = b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	parsed.order = r.seq
	r.keymaps[km.Name] = parsed
	return nil
}

// Bind adds a single binding to the named keymap, creating the keymap at
// priority if it does not exist.
func (r *Registry) Bind(name string, priority int, b Binding) error {
	ev, err := key.Parse(b.Keys)
	if err != nil {
		return fmt.Errorf("binding %q: %w", b.Keys, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	km, ok := r.keymaps[name]
	if !ok {
		r.seq++
		km = &parsedKeymap{
			Keymap:   NewKeymap(name).WithPriority(priority).WithSource(name),
			order:    r.seq,
			bindings: make(map[string]Binding),
		}
		r.keymaps[name] = km
	}
	km.Bindings = append(km.Bindings, b)
	km.bindings[ev.String()] = b
	return nil
}

// Unregister removes a keymap by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keymaps[name]; !ok {
		return ErrKeymapNotFound
	}
	delete(r.keymaps, name)
	return nil
}

// Get returns a copy of the named keymap.
func (r *Registry) Get(name string) (*Keymap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	km, ok := r.keymaps[name]
	if !ok {
		return nil, false
	}
	return km.Keymap.Clone(), true
}

// Lookup finds the binding for a key event. Unbound and masked keys report
// false.
func (r *Registry) Lookup(ev key.Event) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.lookupLocked(ev.Normalize().String())
	if !ok || b.IsUnbind() {
		return Binding{}, false
	}
	return b, true
}

func (r *Registry) lookupLocked(canonical string) (Binding, bool) {
	var (
		best  *parsedKeymap
		found Binding
	)
	for _, km := range r.keymaps {
		b, ok := km.bindings[canonical]
		if !ok {
			continue
		}
		if best == nil || km.Priority > best.Priority ||
			(km.Priority == best.Priority && km.order > best.order) {
			best, found = km, b
		}
	}
	return found, best != nil
}

// KeysFor returns the canonical key that currently runs action, for display
// next to a command. When several keys do, the shortest spec wins.
func (r *Registry) KeysFor(action string) (string, bool) {
	var keys []string
	for _, b := range r.Effective() {
		if b.Action == action {
			keys = append(keys, b.Keys)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys[0], true
}

// Effective returns the binding every bound key resolves to, with Keys in
// canonical form, sorted by key.
func (r *Registry) Effective() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []Binding
	for _, km := range r.keymaps {
		for canonical := range km.bindings {
			if _, ok := seen[canonical]; ok {
				continue
			}
			seen[canonical] = struct{}{}
			b, _ := r.lookupLocked(canonical)
			if b.IsUnbind() {
				continue
			}
			b.Keys = canonical
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keys < out[j].Keys })
	return out
}

// Keymaps returns the registered keymap names from lowest to highest
// precedence.
func (r *Registry) Keymaps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kms := make([]*parsedKeymap, 0, len(r.keymaps))
	for _, km := range r.keymaps {
		kms = append(kms, km)
	}
	sort.Slice(kms, func(i, j int) bool {
		if kms[i].Priority != kms[j].Priority {
			return kms[i].Priority < kms[j].Priority
		}
		return kms[i].order < kms[j].order
	})
	names := make([]string, len(kms))
	for i, km := range kms {
		names[i] = km.Name
	}
	return names
}
