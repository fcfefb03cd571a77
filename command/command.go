package command

import (
	"fmt"

	"github.com/kbukum/gokv/errors"
)

// Shape classifies a command by how its result is consumed.
type Shape int

const (
	// PointLookup reads or writes a single value.
	PointLookup Shape = iota
	// Batch returns a whole collection at once.
	Batch
	// Streaming pushes elements to a sink and returns a count.
	Streaming
	// CursorContinuation is one step of a scan sequence.
	CursorContinuation
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case PointLookup:
		return "point_lookup"
	case Batch:
		return "batch"
	case Streaming:
		return "streaming"
	case CursorContinuation:
		return "cursor_continuation"
	default:
		return "unknown"
	}
}

type keying int

const (
	// inferred derives the keying from Key and Keys; it is the zero value
	// of a literal Command.
	inferred keying = iota
	keyless
	singleKey
	multiKey
)

// Command is a store command descriptor. The constructors fix how keys are
// rendered; a literal Command uses Keys when set, otherwise Key when set,
// otherwise no key.
type Command struct {
	Name string
	// Subcommand, when set, follows Name on the wire, as in OBJECT ENCODING.
	Subcommand string
	Key        string
	Keys       []string
	Args       []any
	Shape      Shape

	keying keying
}

// Keyed builds a command addressing one key.
func Keyed(name, key string, shape Shape, args ...any) Command {
	return Command{Name: name, Key: key, Args: args, Shape: shape, keying: singleKey}
}

// MultiKey builds a command addressing one or more keys.
func MultiKey(name string, keys []string, shape Shape, args ...any) Command {
	return Command{Name: name, Keys: keys, Args: args, Shape: shape, keying: multiKey}
}

// Keyless builds a command that addresses no key.
func Keyless(name string, shape Shape, args ...any) Command {
	return Command{Name: name, Args: args, Shape: shape, keying: keyless}
}

// WithSubcommand returns a copy of c with sub set.
func (c Command) WithSubcommand(sub string) Command {
	c.Subcommand = sub
	return c
}

// Validate checks the identifying arguments before dispatch.
func (c Command) Validate() error {
	if c.Name == "" {
		return errors.MissingField("command")
	}
	switch c.mode() {
	case singleKey:
		if c.Key == "" {
			return errors.MissingField("key").WithDetail("command", c.Name)
		}
	case multiKey:
		if len(c.Keys) == 0 {
			return errors.MissingField("keys").WithDetail("command", c.Name)
		}
		for i, k := range c.Keys {
			if k == "" {
				return errors.InvalidInput("keys", fmt.Sprintf("key %d is empty", i)).WithDetail("command", c.Name)
			}
		}
	}
	return nil
}

// Argv renders the command as [name, subcommand, key..., args...].
func (c Command) Argv() []any {
	argv := make([]any, 0, 3+len(c.Keys)+len(c.Args))
	argv = append(argv, c.Name)
	if c.Subcommand != "" {
		argv = append(argv, c.Subcommand)
	}
	switch c.mode() {
	case singleKey:
		argv = append(argv, c.Key)
	case multiKey:
		for _, k := range c.Keys {
			argv = append(argv, k)
		}
	}
	return append(argv, c.Args...)
}

// OperationName names the command in logs, spans and metrics.
func (c Command) OperationName() string {
	if c.Subcommand != "" {
		return c.Name + " " + c.Subcommand
	}
	return c.Name
}

// LogKey returns the key to log: the single key, the first of several, or "".
func (c Command) LogKey() string {
	if c.mode() == singleKey {
		return c.Key
	}
	if len(c.Keys) > 0 {
		return c.Keys[0]
	}
	return ""
}

func (c Command) mode() keying {
	if c.keying != inferred {
		return c.keying
	}
	switch {
	case len(c.Keys) > 0:
		return multiKey
	case c.Key != "":
		return singleKey
	default:
		return keyless
	}
}
