package command

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// Flag value types understood by the parser.
const (
	FlagString      = "string"
	FlagBool        = "bool"
	FlagInt         = "int"
	FlagStringSlice = "stringSlice"
)

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "type"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "t")
	Type        string `json:"type"`              // "string", "bool", "int", "stringSlice"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
}

// NewFlagSet builds a flag set keyed by the long flag names.
func NewFlagSet(flags ...*CommandFlag) *CommandFlagSet {
	set := &CommandFlagSet{Flags: make(map[string]*CommandFlag, len(flags))}
	for _, flag := range flags {
		set.Flags[flag.Name] = flag
	}
	return set
}

func (a *CommandArgs) Bool(name string) bool {
	value, _ := a.Flags[name].(bool)
	return value
}

func (a *CommandArgs) String(name string) string {
	value, _ := a.Flags[name].(string)
	return value
}

func (a *CommandArgs) Int(name string) int64 {
	value, _ := a.Flags[name].(int64)
	return value
}

func (a *CommandArgs) Strings(name string) []string {
	value, _ := a.Flags[name].([]string)
	return value
}
