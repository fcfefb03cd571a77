package kv

import (
	"context"
	"strconv"
	"time"

	"github.com/kbukum/gokv/command"
	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/stream"
)

// TTL and PTTL report these instead of a duration.
const (
	// NoExpiry is returned for a key without a time to live.
	NoExpiry time.Duration = -1
	// KeyMissing is returned for a key that does not exist.
	KeyMissing time.Duration = -2
)

// Del removes keys and returns how many existed.
func (c *Commands) Del(ctx context.Context, keys ...string) (int64, error) {
	return call(ctx, c, command.MultiKey("DEL", keys, command.Batch), command.AsInt64)
}

// Unlink removes keys without blocking the server on reclamation.
func (c *Commands) Unlink(ctx context.Context, keys ...string) (int64, error) {
	return call(ctx, c, command.MultiKey("UNLINK", keys, command.Batch), command.AsInt64)
}

// Dump returns the serialized value of key.
func (c *Commands) Dump(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := call(ctx, c, command.Keyed("DUMP", key, command.PointLookup), func(r command.Reply) ([]byte, error) {
		if r.IsNil() {
			return nil, nil
		}
		return command.AsBytes(r)
	})
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

// Exists returns how many of keys exist. A key named twice counts twice.
func (c *Commands) Exists(ctx context.Context, keys ...string) (int64, error) {
	return call(ctx, c, command.MultiKey("EXISTS", keys, command.Batch), command.AsInt64)
}

// Expire sets a time to live in seconds. ttl below one second is rejected;
// the store would delete the key instead.
func (c *Commands) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := checkTTL(ttl, time.Second); err != nil {
		return false, err
	}
	return call(ctx, c, command.Keyed("EXPIRE", key, command.PointLookup, formatInt(int64(ttl/time.Second))), command.AsBool)
}

// ExpireAt expires key at t, with second precision.
func (c *Commands) ExpireAt(ctx context.Context, key string, t time.Time) (bool, error) {
	return call(ctx, c, command.Keyed("EXPIREAT", key, command.PointLookup, formatInt(t.Unix())), command.AsBool)
}

// PExpire sets a time to live in milliseconds. ttl below one millisecond is
// rejected.
func (c *Commands) PExpire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := checkTTL(ttl, time.Millisecond); err != nil {
		return false, err
	}
	return call(ctx, c, command.Keyed("PEXPIRE", key, command.PointLookup, formatInt(ttl.Milliseconds())), command.AsBool)
}

// checkTTL rejects a ttl that truncates to zero or below at unit precision.
func checkTTL(ttl, unit time.Duration) error {
	if ttl < unit {
		return errors.InvalidInput("ttl", "must be at least "+unit.String()).WithDetail("ttl", ttl.String())
	}
	return nil
}

// PExpireAt expires key at t, with millisecond precision.
func (c *Commands) PExpireAt(ctx context.Context, key string, t time.Time) (bool, error) {
	return call(ctx, c, command.Keyed("PEXPIREAT", key, command.PointLookup, formatInt(t.UnixMilli())), command.AsBool)
}

// Persist removes the time to live of key.
func (c *Commands) Persist(ctx context.Context, key string) (bool, error) {
	return call(ctx, c, command.Keyed("PERSIST", key, command.PointLookup), command.AsBool)
}

// TTL returns the remaining time to live, NoExpiry or KeyMissing.
func (c *Commands) TTL(ctx context.Context, key string) (time.Duration, error) {
	return call(ctx, c, command.Keyed("TTL", key, command.PointLookup), durationOf(time.Second))
}

// PTTL is TTL with millisecond precision.
func (c *Commands) PTTL(ctx context.Context, key string) (time.Duration, error) {
	return call(ctx, c, command.Keyed("PTTL", key, command.PointLookup), durationOf(time.Millisecond))
}

// Keys returns every key matching pattern.
func (c *Commands) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := requireKey("pattern", pattern); err != nil {
		return nil, err
	}
	return call(ctx, c, command.Keyless("KEYS", command.Batch, pattern), command.AsStrings)
}

// KeysStream delivers every key matching pattern to sink.
func (c *Commands) KeysStream(ctx context.Context, sink stream.Sink[string], pattern string) (int64, error) {
	if err := requireKey("pattern", pattern); err != nil {
		return 0, err
	}
	return streamCall(ctx, c, command.Keyless("KEYS", command.Streaming, pattern), command.AsStrings, sink)
}

// Move moves key to another logical database.
func (c *Commands) Move(ctx context.Context, key string, db int) (bool, error) {
	if db < 0 {
		return false, errors.InvalidInput("db", "must not be negative")
	}
	return call(ctx, c, command.Keyed("MOVE", key, command.PointLookup, strconv.Itoa(db)), command.AsBool)
}

// ObjectEncoding returns the internal encoding of the value at key.
func (c *Commands) ObjectEncoding(ctx context.Context, key string) (string, bool, error) {
	cmd := command.Keyed("OBJECT", key, command.PointLookup).WithSubcommand("ENCODING")
	v, err := call(ctx, c, cmd, command.AsOptionalString)
	if err != nil {
		return "", false, err
	}
	s, ok := optional(v)
	return s, ok, nil
}

// ObjectIdleTime returns how long key has not been accessed.
func (c *Commands) ObjectIdleTime(ctx context.Context, key string) (time.Duration, error) {
	return objectInt(ctx, c, "IDLETIME", key, time.Second)
}

// ObjectRefCount returns the reference count of the value at key.
func (c *Commands) ObjectRefCount(ctx context.Context, key string) (int64, error) {
	d, err := objectInt(ctx, c, "REFCOUNT", key, 1)
	return int64(d), err
}

// RandomKey returns a random key, or found=false on an empty database.
func (c *Commands) RandomKey(ctx context.Context) (string, bool, error) {
	v, err := call(ctx, c, command.Keyless("RANDOMKEY", command.PointLookup), command.AsOptionalString)
	if err != nil {
		return "", false, err
	}
	s, ok := optional(v)
	return s, ok, nil
}

// Rename renames key to newKey, overwriting newKey.
func (c *Commands) Rename(ctx context.Context, key, newKey string) error {
	if err := requireKey("new_key", newKey); err != nil {
		return err
	}
	_, err := call(ctx, c, command.Keyed("RENAME", key, command.PointLookup, newKey), command.AsOK)
	return err
}

// RenameNX renames key only if newKey does not exist.
func (c *Commands) RenameNX(ctx context.Context, key, newKey string) (bool, error) {
	if err := requireKey("new_key", newKey); err != nil {
		return false, err
	}
	return call(ctx, c, command.Keyed("RENAMENX", key, command.PointLookup, newKey), command.AsBool)
}

// Restore creates key from a Dump payload.
func (c *Commands) Restore(ctx context.Context, key string, payload []byte, args *RestoreArgs) error {
	if len(payload) == 0 {
		return errors.MissingField("payload")
	}
	if args.ttlMillis() < 0 {
		return errors.InvalidInput("ttl", "must not be negative")
	}
	argv := append([]any{formatInt(args.ttlMillis()), string(payload)}, args.argv()...)
	_, err := call(ctx, c, command.Keyed("RESTORE", key, command.PointLookup, argv...), command.AsOK)
	return err
}

// Sort returns the sorted elements of the list, set or sorted set at key.
func (c *Commands) Sort(ctx context.Context, key string, args *SortArgs) ([]string, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}
	return call(ctx, c, command.Keyed("SORT", key, command.Batch, args.argv()...), command.AsStrings)
}

// SortStream delivers the sorted elements to sink.
func (c *Commands) SortStream(ctx context.Context, sink stream.Sink[string], key string, args *SortArgs) (int64, error) {
	if err := args.validate(); err != nil {
		return 0, err
	}
	return streamCall(ctx, c, command.Keyed("SORT", key, command.Streaming, args.argv()...), command.AsStrings, sink)
}

// SortStore sorts key into dest and returns the number of stored elements.
func (c *Commands) SortStore(ctx context.Context, key, dest string, args *SortArgs) (int64, error) {
	if err := requireKey("dest", dest); err != nil {
		return 0, err
	}
	if err := args.validate(); err != nil {
		return 0, err
	}
	argv := append(args.argv(), "STORE", dest)
	return call(ctx, c, command.Keyed("SORT", key, command.PointLookup, argv...), command.AsInt64)
}

// Touch updates the access time of keys and returns how many exist.
func (c *Commands) Touch(ctx context.Context, keys ...string) (int64, error) {
	return call(ctx, c, command.MultiKey("TOUCH", keys, command.Batch), command.AsInt64)
}

// Type returns the type of the value at key, "none" if it is missing.
func (c *Commands) Type(ctx context.Context, key string) (string, error) {
	return call(ctx, c, command.Keyed("TYPE", key, command.PointLookup), command.AsString)
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

// durationOf decodes an integer reply in unit, keeping the negative
// NoExpiry and KeyMissing markers as they are.
func durationOf(unit time.Duration) func(command.Reply) (time.Duration, error) {
	return func(r command.Reply) (time.Duration, error) {
		n, err := command.AsInt64(r)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return time.Duration(n), nil
		}
		return time.Duration(n) * unit, nil
	}
}

func objectInt(ctx context.Context, c *Commands, sub, key string, unit time.Duration) (time.Duration, error) {
	type result struct {
		n     int64
		found bool
	}
	cmd := command.Keyed("OBJECT", key, command.PointLookup).WithSubcommand(sub)
	res, err := call(ctx, c, cmd, func(r command.Reply) (result, error) {
		if r.IsNil() {
			return result{}, nil
		}
		n, err := command.AsInt64(r)
		return result{n: n, found: true}, err
	})
	if err != nil {
		return 0, err
	}
	if !res.found {
		return 0, errors.NotFound("key", key)
	}
	return time.Duration(res.n) * unit, nil
}
