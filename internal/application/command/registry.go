// Package command resolves message text against a statically-built registry
// of module → command → overload entries and invokes the matched handler.
// The registry is constructed once at startup; there is no reflection.
package command

import (
	"context"

	"github.com/MerrickKing/walrusbot/internal/gateway"
)

// HandlerFunc executes a resolved command with validated, type-converted
// arguments.
type HandlerFunc func(ctx context.Context, inv *Invocation) error

// Invocation is a resolved command call.
type Invocation struct {
	Message gateway.Message
	args    []any
}

// Int returns the argument at position i as an int. Panics on a kind
// mismatch, which would be a registration bug, not an input error.
func (inv *Invocation) Int(i int) int { return inv.args[i].(int) }

// String returns the argument at position i as a string. Remainder
// arguments are returned verbatim, whitespace intact.
func (inv *Invocation) String(i int) string { return inv.args[i].(string) }

// Overload is one arity/signature variant of a command.
type Overload struct {
	Args    []ArgSpec
	Handler HandlerFunc
}

// Command is a named entry within a module.
type Command struct {
	Name      string
	Guards    []Guard
	Overloads []Overload
}

// Module groups commands under a shared path segment and shared guards.
type Module struct {
	Name     string
	Guards   []Guard
	Commands []Command
}

// Registry is the static command graph. Built once at startup, read-only
// afterwards, so concurrent resolution needs no locking.
type Registry struct {
	modules map[string]*moduleEntry
}

type moduleEntry struct {
	guards   []Guard
	commands map[string]*Command
}

func NewRegistry(modules ...Module) *Registry {
	r := &Registry{modules: make(map[string]*moduleEntry)}
	for _, m := range modules {
		entry := &moduleEntry{guards: m.Guards, commands: make(map[string]*Command)}
		for i := range m.Commands {
			c := m.Commands[i]
			entry.commands[c.Name] = &c
		}
		r.modules[m.Name] = entry
	}
	return r
}

// lookup finds the command for a module/command path pair.
func (r *Registry) lookup(module, cmd string) (*moduleEntry, *Command, bool) {
	me, ok := r.modules[module]
	if !ok {
		return nil, nil, false
	}
	c, ok := me.commands[cmd]
	if !ok {
		return nil, nil, false
	}
	return me, c, true
}
