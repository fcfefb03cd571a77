package scan

import (
	"strconv"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/validation"
)

// Args holds the options recognized by scan commands. A nil *Args means no
// options.
type Args struct {
	// Match restricts results to elements matching a glob-style pattern.
	Match string `json:"match" validate:"omitempty,glob"`
	// Count is the batch size hint. Zero leaves it to the store.
	Count int64 `json:"count" validate:"gte=0"`
	// Type restricts key-space SCAN to keys of one type.
	Type string `json:"type" validate:"omitempty,oneof=string list set zset hash stream"`
}

// Validate checks the options against the command they are sent with.
// Type is only recognized by the key-space SCAN.
func (a *Args) Validate(command string) error {
	if a == nil {
		return nil
	}
	if err := validation.Validate(a); err != nil {
		return err
	}
	if a.Type != "" && command != "SCAN" {
		return errors.InvalidInput("type", "only recognized by SCAN, not "+command)
	}
	return nil
}

// WithDefaultCount returns a copy of a with Count set to n when unset.
func (a *Args) WithDefaultCount(n int64) *Args {
	if n <= 0 {
		return a
	}
	var out Args
	if a != nil {
		out = *a
	}
	if out.Count == 0 {
		out.Count = n
	}
	return &out
}

// Argv renders the options as command arguments.
func (a *Args) Argv() []any {
	if a == nil {
		return nil
	}
	var argv []any
	if a.Match != "" {
		argv = append(argv, "MATCH", a.Match)
	}
	if a.Count > 0 {
		argv = append(argv, "COUNT", strconv.FormatInt(a.Count, 10))
	}
	if a.Type != "" {
		argv = append(argv, "TYPE", a.Type)
	}
	return argv
}
