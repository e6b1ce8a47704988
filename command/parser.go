package command

import (
	"strconv"
	"strings"

	"github.com/mwantia/vcat/data"
	"gitlab.com/tozd/go/errors"
)

// Parser parses user-defined arguments into flags
type Parser struct {
	flagSet *CommandFlagSet
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = NewFlagSet()
	}
	return &Parser{
		flagSet: flagSet,
	}
}

func (cp *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Args:  make([]string, 0),
		Flags: make(map[string]any),
		Raw:   raw,
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[flagName] = flag.Default
		}
	}

	longToName := make(map[string]string)
	shortToName := make(map[string]string)
	for flagName, flag := range cp.flagSet.Flags {
		longToName[flag.Name] = flagName
		if flag.Short != "" {
			shortToName[flag.Short] = flagName
		}
	}

	// Slices start empty on first use so defaults are replaced, not extended
	seen := make(map[string]bool)
	set := func(flagName, value string) error {
		flag := cp.flagSet.Flags[flagName]
		if flag.Type == FlagStringSlice {
			var values []string
			if seen[flagName] {
				values = args.Flags[flagName].([]string)
			}
			args.Flags[flagName] = append(values, value)
			seen[flagName] = true
			return nil
		}

		coerced, err := coerce(value, flag.Type)
		if err != nil {
			return errors.Errorf("%w: flag %s: %w", data.ErrInvalid, flag.Name, err)
		}
		args.Flags[flagName] = coerced
		return nil
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			args.Args = append(args.Args, raw[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "--") {
			key, value, hasValue := parseLongFlag(arg)
			flagName, exists := longToName[key]
			if !exists {
				return nil, errors.Errorf("%w: unknown flag: --%s", data.ErrInvalid, key)
			}

			flag := cp.flagSet.Flags[flagName]
			switch {
			case flag.Type == FlagBool:
				args.Flags[flagName] = true
			case hasValue:
				if err := set(flagName, value); err != nil {
					return nil, err
				}
			case i+1 < len(raw):
				if err := set(flagName, raw[i+1]); err != nil {
					return nil, err
				}
				i++
			default:
				return nil, errors.Errorf("%w: flag --%s requires a value", data.ErrInvalid, key)
			}
			continue
		}

		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			shortFlags := arg[1:]

			for j, shortChar := range shortFlags {
				shortStr := string(shortChar)
				flagName, exists := shortToName[shortStr]
				if !exists {
					return nil, errors.Errorf("%w: unknown flag: -%s", data.ErrInvalid, shortStr)
				}

				flag := cp.flagSet.Flags[flagName]
				if flag.Type == FlagBool {
					args.Flags[flagName] = true
					continue
				}

				var value string
				if j+1 < len(shortFlags) {
					value = shortFlags[j+1:]
				} else if i+1 < len(raw) {
					value = raw[i+1]
					i++
				} else {
					return nil, errors.Errorf("%w: flag -%s requires a value", data.ErrInvalid, shortStr)
				}

				if err := set(flagName, value); err != nil {
					return nil, err
				}
				break
			}
			continue
		}

		args.Args = append(args.Args, arg)
	}

	for flagName, flag := range cp.flagSet.Flags {
		if flag.Required {
			if _, ok := args.Flags[flagName]; !ok {
				if flag.Short != "" {
					return nil, errors.Errorf("%w: required flag: -%s / --%s", data.ErrInvalid, flag.Short, flag.Name)
				}
				return nil, errors.Errorf("%w: required flag: --%s", data.ErrInvalid, flag.Name)
			}
		}
	}

	return args, nil
}

func parseLongFlag(arg string) (key, value string, hasValue bool) {
	arg = strings.TrimPrefix(arg, "--")
	if idx := strings.Index(arg, "="); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

func coerce(value string, typeStr string) (any, error) {
	switch typeStr {
	case FlagInt:
		return strconv.ParseInt(value, 10, 64)
	case FlagBool:
		return value == "true" || value == "1" || value == "yes", nil
	default:
		return value, nil
	}
}
