// Package config loads the client environment file and opens the catalog it
// describes.
package config

import (
	"os"
	"path"
	"path/filepath"

	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/log"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvEnvironmentFile = "VCAT_ENVIRONMENT_FILE"
	EnvHome            = "VCAT_HOME"
	EnvZone            = "VCAT_ZONE"
	EnvUser            = "VCAT_USER"
)

// Environment describes the catalog a client connects to and the account
// it acts as. Files may be written as JSON or YAML.
type Environment struct {
	Zone string `json:"zone" yaml:"zone"`
	User string `json:"user" yaml:"user"`

	// Explicit home collection; derived from zone and user if empty
	Home string `json:"home,omitempty" yaml:"home,omitempty"`

	// Soft delete into /<zone>/trash; enabled unless set to false
	Trash *bool `json:"trash,omitempty" yaml:"trash,omitempty"`

	Store     StoreConfig      `json:"store" yaml:"store"`
	Resources []ResourceConfig `json:"resources" yaml:"resources"`
	Log       LogConfig        `json:"log" yaml:"log"`
}

// StoreConfig selects the registered catalog store type and its options.
type StoreConfig struct {
	Driver  string            `json:"driver" yaml:"driver"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// ResourceConfig selects a registered replica resource type.
type ResourceConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Driver  string            `json:"driver" yaml:"driver"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

type LogConfig struct {
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	JSON    bool   `json:"json,omitempty" yaml:"json,omitempty"`
	NoColor bool   `json:"no_color,omitempty" yaml:"no_color,omitempty"`
}

// DefaultDirectory returns ~/.vcat, where the default environment file and
// the default local catalog live.
func DefaultDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vcat"
	}
	return filepath.Join(home, ".vcat")
}

// DefaultEnvironment keeps the catalog in a SQLite file and the replicas in
// a local directory below dir.
func DefaultEnvironment(dir string) *Environment {
	return &Environment{
		Zone: "tempZone",
		User: "rods",
		Store: StoreConfig{
			Driver:  "sqlite",
			Options: map[string]string{"path": filepath.Join(dir, "catalog.db")},
		},
		Resources: []ResourceConfig{
			{
				Name:    "demoResc",
				Driver:  "local",
				Options: map[string]string{"path": filepath.Join(dir, "replicas")},
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the environment file. The file is taken from file, then from
// $VCAT_ENVIRONMENT_FILE, then from ~/.vcat/environment.json. Only an
// explicitly named file must exist; otherwise the defaults are used.
// $VCAT_HOME, $VCAT_ZONE and $VCAT_USER override the file.
func Load(file string) (*Environment, error) {
	return LoadWithLookup(file, os.LookupEnv)
}

// LoadWithLookup is Load with a custom environment lookup.
func LoadWithLookup(file string, lookup func(string) (string, bool)) (*Environment, error) {
	dir := DefaultDirectory()

	required := file != ""
	if !required {
		if value, ok := lookup(EnvEnvironmentFile); ok && value != "" {
			file, required = value, true
		}
	}
	if file == "" {
		file = filepath.Join(dir, "environment.json")
	}

	env, err := readEnvironment(file)
	switch {
	case err == nil:
	case !required && errors.Is(err, os.ErrNotExist):
		env = &Environment{}
	default:
		return nil, err
	}

	env.applyDefaults(DefaultEnvironment(dir))
	env.applyOverrides(lookup)

	if err := env.Validate(); err != nil {
		return nil, errors.Errorf("invalid environment '%s': %w", file, err)
	}
	return env, nil
}

// Parse decodes an environment from JSON or YAML content.
func Parse(content []byte) (*Environment, error) {
	env := &Environment{}
	if err := yaml.Unmarshal(content, env); err != nil {
		return nil, errors.Errorf("%w: %w", data.ErrInvalid, err)
	}
	return env, nil
}

func readEnvironment(file string) (*Environment, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Errorf("reading environment file: %w", err)
	}

	env, err := Parse(content)
	if err != nil {
		return nil, errors.Errorf("parsing environment file '%s': %w", file, err)
	}
	return env, nil
}

func (e *Environment) applyDefaults(defaults *Environment) {
	if e.Zone == "" {
		e.Zone = defaults.Zone
	}
	if e.User == "" {
		e.User = defaults.User
	}
	if e.Store.Driver == "" {
		e.Store = defaults.Store
	}
	if len(e.Resources) == 0 {
		e.Resources = defaults.Resources
	}
	if e.Log.Level == "" {
		e.Log.Level = defaults.Log.Level
	}
}

func (e *Environment) applyOverrides(lookup func(string) (string, bool)) {
	if value, ok := lookup(EnvHome); ok && value != "" {
		e.Home = value
	}
	if value, ok := lookup(EnvZone); ok && value != "" {
		e.Zone = value
	}
	if value, ok := lookup(EnvUser); ok && value != "" {
		e.User = value
	}
}

// Validate checks that the environment can be opened.
func (e *Environment) Validate() error {
	if e.Home != "" && !path.IsAbs(e.Home) {
		return errors.Errorf("%w: home collection '%s' must be absolute", data.ErrInvalid, e.Home)
	}
	if e.Home == "" && (e.Zone == "" || e.User == "") {
		return errors.Errorf("%w: either home or zone and user are required", data.ErrInvalid)
	}
	if e.Store.Driver == "" {
		return errors.Errorf("%w: store driver is required", data.ErrInvalid)
	}

	names := make(map[string]struct{}, len(e.Resources))
	for _, resource := range e.Resources {
		if resource.Name == "" || resource.Driver == "" {
			return errors.Errorf("%w: resources need a name and a driver", data.ErrInvalid)
		}
		if _, exists := names[resource.Name]; exists {
			return errors.Errorf("%w: duplicate resource '%s'", data.ErrInvalid, resource.Name)
		}
		names[resource.Name] = struct{}{}
	}

	if _, err := log.Parse(e.Log.Level); err != nil {
		return err
	}
	return nil
}

// HomeCollection returns the explicit home or /<zone>/home/<user>.
func (e *Environment) HomeCollection() string {
	if e.Home != "" {
		return path.Clean(e.Home)
	}
	return path.Join("/", e.Zone, "home", e.User)
}

// TrashEnabled reports whether removals without force are soft deletes.
func (e *Environment) TrashEnabled() bool {
	return e.Trash == nil || *e.Trash
}

// Logger builds the logger described by the log section.
func (e *Environment) Logger(name string) *log.Logger {
	level, _ := log.Parse(e.Log.Level)

	logger := log.NewLogger(name, level, e.Log.File, false)
	logger.JSON = e.Log.JSON
	logger.NoColor = e.Log.NoColor
	return logger
}
