package command

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/mwantia/vcat/data"
	"gitlab.com/tozd/go/errors"
)

// ErrUnknownCommand is returned when no command is registered under a name.
var ErrUnknownCommand = errors.Base("command not found")

// Manager handles command registration, parsing, and execution
type Manager struct {
	mu   sync.RWMutex
	api  API
	cmds map[string]Command
}

func NewManager(api API) *Manager {
	return &Manager{
		api:  api,
		cmds: make(map[string]Command),
	}
}

// Register registers a command
func (cm *Manager) Register(cmds ...Command) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for _, cmd := range cmds {
		if cmd == nil {
			return errors.Errorf("%w: command cannot be nil", data.ErrInvalid)
		}

		name := cmd.Name()
		if name == "" {
			return errors.Errorf("%w: command name cannot be empty", data.ErrInvalid)
		}

		if _, exists := cm.cmds[name]; exists {
			return errors.Errorf("%w: command already registered: %s", data.ErrExist, name)
		}

		cm.cmds[name] = cmd
	}
	return nil
}

// Unregister removes a registered command
func (cm *Manager) Unregister(name string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.cmds[name]; !exists {
		return errors.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	delete(cm.cmds, name)
	return nil
}

// Get returns a command by name
func (cm *Manager) Get(name string) (Command, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.getUnsafe(name)
}

func (cm *Manager) getUnsafe(name string) (Command, error) {
	cmd, exists := cm.cmds[name]
	if !exists {
		return nil, errors.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// List returns all registered commands sorted by name
func (cm *Manager) List() []Command {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	commands := make([]Command, 0, len(cm.cmds))
	for _, cmd := range cm.cmds {
		commands = append(commands, cmd)
	}

	slices.SortFunc(commands, func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return commands
}

// Execute parses and executes a command, writing its output to w
func (cm *Manager) Execute(ctx context.Context, w io.Writer, args ...string) (int, error) {
	if len(args) == 0 {
		return ExitUsage, errors.Errorf("%w: no command specified", data.ErrInvalid)
	}

	cmd, err := cm.Get(args[0])
	if err != nil {
		return ExitUsage, err
	}

	parsedArgs, err := NewParser(cmd.GetFlags()).Parse(args[1:])
	if err != nil {
		return ExitUsage, errors.Errorf("parse error: %w", err)
	}

	return cmd.Execute(ctx, cm.api, parsedArgs, w)
}

// Help writes the usage of every registered command to w
func (cm *Manager) Help(w io.Writer) {
	for _, cmd := range cm.List() {
		fmt.Fprintf(w, "  %-36s %s\n", cmd.Usage(), cmd.Description())
	}
}

// UsageError reports a command invoked with the wrong arguments.
func UsageError(cmd Command) error {
	return errors.Errorf("%w: usage: %s", data.ErrInvalid, cmd.Usage())
}
