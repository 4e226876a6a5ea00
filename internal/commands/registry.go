package commands

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// DuplicatePolicy selects what Registry.Add does when a name is taken.
type DuplicatePolicy int

const (
	// FailOnDuplicate returns ErrCommandExists.
	FailOnDuplicate DuplicatePolicy = iota
	// SkipDuplicate leaves the registry unchanged and returns nil.
	SkipDuplicate
)

// Registry maps names and aliases to commands. The Bot has one at the top
// and every Command has one for its subcommands.
type Registry struct {
	mu       sync.RWMutex
	owner    Node
	byName   map[string]*Command
	byInvoke map[string]*Command
}

// NewRegistry creates a standalone registry with no owner.
func NewRegistry() *Registry {
	return newRegistry(nil)
}

func newRegistry(owner Node) *Registry {
	return &Registry{
		owner:    owner,
		byName:   make(map[string]*Command),
		byInvoke: make(map[string]*Command),
	}
}

// Add registers cmd under its name and aliases.
func (r *Registry) Add(cmd *Command, policy DuplicatePolicy) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidHandler)
	}
	if r.contains(cmd) {
		return fmt.Errorf("commands: %s cannot contain itself", cmd.name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range cmd.Invocations() {
		if _, taken := r.byInvoke[name]; taken {
			if policy == SkipDuplicate {
				return nil
			}
			return fmt.Errorf("%w: %s", ErrCommandExists, name)
		}
	}

	cmd.mu.Lock()
	defer cmd.mu.Unlock()
	if cmd.parent != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, cmd.name)
	}
	cmd.parent = r

	r.byName[cmd.name] = cmd
	for _, name := range cmd.Invocations() {
		r.byInvoke[name] = cmd
	}
	return nil
}

// contains reports whether cmd is r's owner or one of its ancestors.
func (r *Registry) contains(cmd *Command) bool {
	for n := r.owner; n != nil; n = n.Parent() {
		if c, ok := n.(*Command); ok && c == cmd {
			return true
		}
	}
	return false
}

// Remove unregisters the command with the given canonical name, along
// with all of its aliases. Aliases are not accepted here.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	delete(r.byName, name)
	for _, inv := range cmd.Invocations() {
		if r.byInvoke[inv] == cmd {
			delete(r.byInvoke, inv)
		}
	}

	cmd.mu.Lock()
	cmd.parent = nil
	cmd.mu.Unlock()
	return nil
}

// Resolve looks up a canonical name or alias.
func (r *Registry) Resolve(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byInvoke[name]
	return cmd, ok
}

// Get looks up a canonical name only.
func (r *Registry) Get(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Commands returns the registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	out := make([]*Command, 0, len(r.byName))
	for _, cmd := range r.byName {
		out = append(out, cmd)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Names returns the canonical names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of canonical commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Owner returns the Bot or Command holding this registry.
func (r *Registry) Owner() Node { return r.owner }

// TopLevel walks from the registry's owner to the root.
func (r *Registry) TopLevel() Node { return TopLevel(r.owner) }
