package commands

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Module is a named group of top-level commands that can be loaded and
// unloaded together
type Module struct {
	Name        string
	Description string
	Commands    []*Command
}

// RegisterModule adds m to the catalog used by LoadModuleByName and
// ReloadModule. It does not load anything.
func (b *Bot) RegisterModule(m Module) {
	b.modMu.Lock()
	defer b.modMu.Unlock()
	b.catalog[m.Name] = m
}

// Modules returns the catalog names sorted
func (b *Bot) Modules() []string {
	b.modMu.Lock()
	defer b.modMu.Unlock()
	names := make([]string, 0, len(b.catalog))
	for name := range b.catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadedModules returns the names of loaded modules sorted
func (b *Bot) LoadedModules() []string {
	b.modMu.Lock()
	defer b.modMu.Unlock()
	names := make([]string, 0, len(b.loaded))
	for name := range b.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsLoaded reports whether a module with that name is loaded
func (b *Bot) IsLoaded(name string) bool {
	b.modMu.Lock()
	defer b.modMu.Unlock()
	_, ok := b.loaded[name]
	return ok
}

// LoadModule registers every command of m that does not already belong to
// a registry. If one fails, the commands added by this call are removed
// again and the error is returned.
func (b *Bot) LoadModule(m Module, policy DuplicatePolicy) error {
	b.modMu.Lock()
	defer b.modMu.Unlock()
	if _, ok := b.catalog[m.Name]; !ok {
		b.catalog[m.Name] = m
	}

	b.treeMu.Lock()
	defer b.treeMu.Unlock()
	return b.loadLocked(m, policy)
}

// LoadModuleByName loads a module from the catalog
func (b *Bot) LoadModuleByName(name string) error {
	b.modMu.Lock()
	defer b.modMu.Unlock()

	m, ok := b.catalog[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	b.treeMu.Lock()
	defer b.treeMu.Unlock()
	return b.loadLocked(m, FailOnDuplicate)
}

// UnloadModule removes every command the module contributed
func (b *Bot) UnloadModule(name string) error {
	b.modMu.Lock()
	defer b.modMu.Unlock()

	b.treeMu.Lock()
	defer b.treeMu.Unlock()
	return b.unloadLocked(name)
}

// ReloadModule unloads the module if loaded and loads it again from the
// catalog with cleared cooldowns
func (b *Bot) ReloadModule(name string) error {
	b.modMu.Lock()
	defer b.modMu.Unlock()

	m, ok := b.catalog[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	b.treeMu.Lock()
	defer b.treeMu.Unlock()

	if err := b.unloadLocked(name); err != nil && !errors.Is(err, ErrModuleNotFound) {
		return err
	}
	for _, cmd := range m.Commands {
		if cmd != nil {
			cmd.resetCooldowns()
		}
	}
	return b.loadLocked(m, FailOnDuplicate)
}

// loadLocked requires modMu and treeMu
func (b *Bot) loadLocked(m Module, policy DuplicatePolicy) error {
	var added []*Command
	for _, cmd := range m.Commands {
		if cmd == nil || cmd.Registered() {
			continue
		}
		if err := b.registry.Add(cmd, policy); err != nil {
			for _, c := range added {
				_ = b.registry.Remove(c.name)
			}
			return fmt.Errorf("loading module %s: %w", m.Name, err)
		}
		if cmd.Registered() {
			added = append(added, cmd)
		}
	}

	b.loaded[m.Name] = append(b.loaded[m.Name], added...)
	b.logger.Info("module loaded", "module", m.Name, "commands", len(added))
	return nil
}

// unloadLocked requires modMu and treeMu
func (b *Bot) unloadLocked(name string) error {
	cmds, ok := b.loaded[name]
	if !ok {
		return fmt.Errorf("%w: %s is not loaded", ErrModuleNotFound, name)
	}
	for _, cmd := range cmds {
		if current, ok := b.registry.Get(cmd.name); ok && current == cmd {
			_ = b.registry.Remove(cmd.name)
		}
	}
	delete(b.loaded, name)
	b.logger.Info("module unloaded", "module", name, "commands", len(cmds))
	return nil
}

// ModuleOf returns the loaded module that contributed the named command
func (b *Bot) ModuleOf(command string) (string, bool) {
	b.modMu.Lock()
	defer b.modMu.Unlock()
	for name, cmds := range b.loaded {
		if slices.ContainsFunc(cmds, func(c *Command) bool { return c.name == command }) {
			return name, true
		}
	}
	return "", false
}
