package kv

import (
	"strconv"
	"time"

	"github.com/kbukum/gokv/errors"
)

// RestoreArgs are the options of Restore. A nil *RestoreArgs restores
// without expiry.
type RestoreArgs struct {
	// TTL is the time to live, or an absolute Unix time in milliseconds
	// when AbsTTL is set. Zero means no expiry.
	TTL     time.Duration
	Replace bool
	AbsTTL  bool
}

func (a *RestoreArgs) ttlMillis() int64 {
	if a == nil {
		return 0
	}
	return a.TTL.Milliseconds()
}

func (a *RestoreArgs) argv() []any {
	if a == nil {
		return nil
	}
	var argv []any
	if a.Replace {
		argv = append(argv, "REPLACE")
	}
	if a.AbsTTL {
		argv = append(argv, "ABSTTL")
	}
	return argv
}

// SortArgs are the options of Sort and SortStore. A nil *SortArgs sorts
// numerically ascending.
type SortArgs struct {
	By     string
	Offset int64
	// Count limits the result; zero with a positive Offset returns the rest.
	Count int64
	Get   []string
	Desc  bool
	Alpha bool
}

func (a *SortArgs) validate() error {
	if a == nil {
		return nil
	}
	if a.Offset < 0 {
		return errors.InvalidInput("offset", "must not be negative")
	}
	if a.Count < 0 {
		return errors.InvalidInput("count", "must not be negative")
	}
	return nil
}

func (a *SortArgs) argv() []any {
	if a == nil {
		return nil
	}
	var argv []any
	if a.By != "" {
		argv = append(argv, "BY", a.By)
	}
	if a.Offset > 0 || a.Count > 0 {
		// A zero count with an offset means everything after the offset.
		count := a.Count
		if count == 0 {
			count = -1
		}
		argv = append(argv, "LIMIT", strconv.FormatInt(a.Offset, 10), strconv.FormatInt(count, 10))
	}
	for _, g := range a.Get {
		argv = append(argv, "GET", g)
	}
	if a.Desc {
		argv = append(argv, "DESC")
	}
	if a.Alpha {
		argv = append(argv, "ALPHA")
	}
	return argv
}
