package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ScopeGlobal bindings apply in every scope unless the scope binds the same
// key itself.
const ScopeGlobal = "global"

// Binding maps keys to an action within one scope.
type Binding[A any] struct {
	Action A
	Keys   []string
	Help   string
}

// KeyMap resolves key presses to actions according to the active scope.
// The scope comes from the latest rendered Frame, so the mapping always
// matches what is on screen.
type KeyMap[A any] struct {
	bindingsByScope map[string][]*Binding[A]
	indexByScope    map[string]map[string]*Binding[A]
	textByScope     map[string]func(text string) A
}

// NewKeyMap returns an empty key map with no scopes registered.
func NewKeyMap[A any]() *KeyMap[A] {
	return &KeyMap[A]{
		bindingsByScope: make(map[string][]*Binding[A]),
		indexByScope:    make(map[string]map[string]*Binding[A]),
		textByScope:     make(map[string]func(string) A),
	}
}

// Bind registers action for keys in scope. Keys already bound in the scope
// keep their first binding.
func (k *KeyMap[A]) Bind(scope string, action A, keys []string, help string) {
	scope = strings.TrimSpace(scope)
	norm := normalizeKeyList(keys)
	if scope == "" || len(norm) == 0 {
		return
	}
	if _, ok := k.indexByScope[scope]; !ok {
		k.indexByScope[scope] = make(map[string]*Binding[A])
	}
	if k.scopeHasAnyKey(scope, norm) {
		return
	}
	b := &Binding[A]{Action: action, Keys: norm, Help: help}
	k.bindingsByScope[scope] = append(k.bindingsByScope[scope], b)
	for _, name := range norm {
		k.indexByScope[scope][name] = b
	}
}

// TextInput routes typed characters in scope to fn instead of the global
// bindings, so that "q" can be typed into a search box.
func (k *KeyMap[A]) TextInput(scope string, fn func(text string) A) {
	k.textByScope[scope] = fn
}

// Resolve maps msg to an action. Lookup order is the scope's bindings, the
// scope's text input, then the global bindings.
func (k *KeyMap[A]) Resolve(msg tea.KeyMsg, scope string) (A, bool) {
	name := normalizeKeyName(msg.String())
	if b := k.lookupInScope(name, scope); b != nil {
		return b.Action, true
	}
	if fn, ok := k.textByScope[scope]; ok {
		switch msg.Type {
		case tea.KeyRunes:
			if !msg.Alt {
				return fn(string(msg.Runes)), true
			}
		case tea.KeySpace:
			return fn(" "), true
		}
	}
	if scope != ScopeGlobal {
		if b := k.lookupInScope(name, ScopeGlobal); b != nil {
			return b.Action, true
		}
	}
	var zero A
	return zero, false
}

// Bindings returns the bindings of scope in registration order.
func (k *KeyMap[A]) Bindings(scope string) []Binding[A] {
	items := k.bindingsByScope[scope]
	out := make([]Binding[A], 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// HelpBindings lists the help entries visible in scope: the scope's own
// bindings followed by global bindings it does not shadow.
func (k *KeyMap[A]) HelpBindings(scope string) []key.Binding {
	var out []key.Binding
	add := func(b *Binding[A], label string) {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(label, b.Help)))
	}
	for _, b := range k.bindingsByScope[scope] {
		add(b, b.Keys[0])
	}
	if scope == ScopeGlobal {
		return out
	}
	_, typing := k.textByScope[scope]
	for _, b := range k.bindingsByScope[ScopeGlobal] {
		for _, name := range b.Keys {
			if k.lookupInScope(name, scope) == nil && !(typing && len([]rune(name)) == 1) {
				add(b, name)
				break
			}
		}
	}
	return out
}

func (k *KeyMap[A]) lookupInScope(keyName, scope string) *Binding[A] {
	if scope == "" || keyName == "" {
		return nil
	}
	return k.indexByScope[scope][keyName]
}

func (k *KeyMap[A]) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := k.indexByScope[scope]
	for _, name := range keys {
		if _, exists := lookup[name]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		ch := trimmed[0]
		if ch >= 'A' && ch <= 'Z' {
			// keep case so "G" and "g" can differ
			return trimmed
		}
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}
