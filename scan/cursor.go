package scan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/gokv/errors"
)

// InitialToken is the token that starts a scan sequence and, when returned
// by the store, marks the sequence finished.
const InitialToken = "0"

type origin struct {
	command string
	key     string
}

func (o origin) known() bool { return o.command != "" }

func (o origin) String() string {
	if o.key == "" {
		return o.command
	}
	return o.command + " " + o.key
}

// Cursor is the resumption point of a scan sequence. Cursors are values;
// every step returns a new one.
type Cursor struct {
	token    string
	finished bool
	origin   origin
	sequence uuid.UUID
}

// Initial returns the cursor that starts a new sequence.
func Initial() Cursor {
	return Cursor{token: InitialToken}
}

// Resume rebuilds a cursor from a token obtained earlier, for example one
// persisted between process runs. Its origin is unknown, so only the store
// can reject it.
func Resume(token string) Cursor {
	if token == "" {
		return Initial()
	}
	return Cursor{token: token}
}

// Advance returns the cursor following c for a store reply carrying token.
// The result is finished iff token is InitialToken. command and key record
// which sequence the cursor belongs to.
func (c Cursor) Advance(token, command, key string) Cursor {
	seq := c.sequence
	if seq == uuid.Nil {
		seq = uuid.New()
	}
	return Cursor{
		token:    token,
		finished: token == InitialToken,
		origin:   origin{command: command, key: key},
		sequence: seq,
	}
}

// Token returns the opaque token to send to the store.
func (c Cursor) Token() string {
	if c.token == "" {
		return InitialToken
	}
	return c.token
}

// Finished reports whether the sequence is exhausted.
func (c Cursor) Finished() bool { return c.finished }

// IsInitial reports whether c starts a new sequence.
func (c Cursor) IsInitial() bool {
	return !c.finished && c.Token() == InitialToken
}

// Sequence identifies the scan sequence c belongs to; it is uuid.Nil until
// the first step returns.
func (c Cursor) Sequence() uuid.UUID { return c.sequence }

// String formats the cursor for logs.
func (c Cursor) String() string {
	if c.finished {
		return fmt.Sprintf("%s(finished)", c.Token())
	}
	return c.Token()
}

// Check validates c as the continuation cursor of command on key.
// A fresh cursor always passes. A finished cursor, or one produced by a
// different command or key, is INVALID_CURSOR. Anything else is left for
// the store to judge.
func Check(c Cursor, command, key string) error {
	if c.IsInitial() {
		return nil
	}
	if c.finished {
		return errors.InvalidCursor("cursor is finished; start a new scan").
			WithDetail("cursor", c.Token())
	}
	want := origin{command: command, key: key}
	if c.origin.known() && c.origin != want {
		return errors.InvalidCursor(fmt.Sprintf("cursor belongs to %s, not %s", c.origin, want)).
			WithDetail("cursor", c.Token())
	}
	return nil
}
