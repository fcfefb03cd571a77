package kv

import (
	"context"
	"sort"
	"strconv"

	"github.com/kbukum/gokv/command"
	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/scan"
	"github.com/kbukum/gokv/stream"
)

// HDel removes fields from the hash at key and returns how many existed.
func (c *Commands) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	if err := requireFields(fields); err != nil {
		return 0, err
	}
	return call(ctx, c, command.Keyed("HDEL", key, command.PointLookup, stringArgs(fields)...), command.AsInt64)
}

// HExists reports whether field is present in the hash at key.
func (c *Commands) HExists(ctx context.Context, key, field string) (bool, error) {
	if err := requireKey("field", field); err != nil {
		return false, err
	}
	return call(ctx, c, command.Keyed("HEXISTS", key, command.PointLookup, field), command.AsBool)
}

// HGet returns the value of field. found is false when the key or field is
// missing.
func (c *Commands) HGet(ctx context.Context, key, field string) (value string, found bool, err error) {
	if err := requireKey("field", field); err != nil {
		return "", false, err
	}
	v, err := call(ctx, c, command.Keyed("HGET", key, command.PointLookup, field), command.AsOptionalString)
	if err != nil {
		return "", false, err
	}
	value, found = optional(v)
	return value, found, nil
}

// HIncrBy adds incr to the integer value of field.
func (c *Commands) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	if err := requireKey("field", field); err != nil {
		return 0, err
	}
	return call(ctx, c, command.Keyed("HINCRBY", key, command.PointLookup, field, strconv.FormatInt(incr, 10)), command.AsInt64)
}

// HIncrByFloat adds incr to the float value of field.
func (c *Commands) HIncrByFloat(ctx context.Context, key, field string, incr float64) (float64, error) {
	if err := requireKey("field", field); err != nil {
		return 0, err
	}
	return call(ctx, c, command.Keyed("HINCRBYFLOAT", key, command.PointLookup, field,
		strconv.FormatFloat(incr, 'f', -1, 64)), command.AsFloat64)
}

// HGetAll returns the whole hash at key.
func (c *Commands) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return call(ctx, c, command.Keyed("HGETALL", key, command.Batch), func(r command.Reply) (map[string]string, error) {
		pairs, err := command.AsPairs(r)
		if err != nil {
			return nil, err
		}
		return scan.MapPage{Entries: pairs}.Map(), nil
	})
}

// HGetAllStream delivers every field/value pair of the hash to sink.
func (c *Commands) HGetAllStream(ctx context.Context, sink stream.Sink[scan.KeyValue], key string) (int64, error) {
	return streamCall(ctx, c, command.Keyed("HGETALL", key, command.Streaming), command.AsPairs, sink)
}

// HKeys returns the field names of the hash.
func (c *Commands) HKeys(ctx context.Context, key string) ([]string, error) {
	return call(ctx, c, command.Keyed("HKEYS", key, command.Batch), command.AsStrings)
}

// HKeysStream delivers the field names of the hash to sink.
func (c *Commands) HKeysStream(ctx context.Context, sink stream.Sink[string], key string) (int64, error) {
	return streamCall(ctx, c, command.Keyed("HKEYS", key, command.Streaming), command.AsStrings, sink)
}

// HLen returns the number of fields in the hash.
func (c *Commands) HLen(ctx context.Context, key string) (int64, error) {
	return call(ctx, c, command.Keyed("HLEN", key, command.PointLookup), command.AsInt64)
}

// HMGet returns the values of fields, in order. Missing fields are not Valid.
func (c *Commands) HMGet(ctx context.Context, key string, fields ...string) ([]command.OptionalString, error) {
	if err := requireFields(fields); err != nil {
		return nil, err
	}
	return call(ctx, c, command.Keyed("HMGET", key, command.Batch, stringArgs(fields)...), command.AsOptionalStrings)
}

// HMGetStream delivers the values of fields to sink, in order.
func (c *Commands) HMGetStream(ctx context.Context, sink stream.Sink[command.OptionalString], key string, fields ...string) (int64, error) {
	if err := requireFields(fields); err != nil {
		return 0, err
	}
	return streamCall(ctx, c, command.Keyed("HMGET", key, command.Streaming, stringArgs(fields)...), command.AsOptionalStrings, sink)
}

// HMSet sets several fields at once.
func (c *Commands) HMSet(ctx context.Context, key string, values map[string]string) error {
	args, err := pairArgs(values)
	if err != nil {
		return err
	}
	_, err = call(ctx, c, command.Keyed("HMSET", key, command.PointLookup, args...), command.AsOK)
	return err
}

// HSet sets several fields and returns how many were newly created.
func (c *Commands) HSet(ctx context.Context, key string, values map[string]string) (int64, error) {
	args, err := pairArgs(values)
	if err != nil {
		return 0, err
	}
	return call(ctx, c, command.Keyed("HSET", key, command.PointLookup, args...), command.AsInt64)
}

// HSetField sets one field and reports whether it was newly created.
func (c *Commands) HSetField(ctx context.Context, key, field, value string) (bool, error) {
	if err := requireKey("field", field); err != nil {
		return false, err
	}
	return call(ctx, c, command.Keyed("HSET", key, command.PointLookup, field, value), command.AsBool)
}

// HSetNX sets field only if it does not exist.
func (c *Commands) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	if err := requireKey("field", field); err != nil {
		return false, err
	}
	return call(ctx, c, command.Keyed("HSETNX", key, command.PointLookup, field, value), command.AsBool)
}

// HStrLen returns the length of the value of field.
func (c *Commands) HStrLen(ctx context.Context, key, field string) (int64, error) {
	if err := requireKey("field", field); err != nil {
		return 0, err
	}
	return call(ctx, c, command.Keyed("HSTRLEN", key, command.PointLookup, field), command.AsInt64)
}

// HVals returns the values of the hash.
func (c *Commands) HVals(ctx context.Context, key string) ([]string, error) {
	return call(ctx, c, command.Keyed("HVALS", key, command.Batch), command.AsStrings)
}

// HValsStream delivers the values of the hash to sink.
func (c *Commands) HValsStream(ctx context.Context, sink stream.Sink[string], key string) (int64, error) {
	return streamCall(ctx, c, command.Keyed("HVALS", key, command.Streaming), command.AsStrings, sink)
}

// pairArgs renders values as field/value arguments sorted by field.
func pairArgs(values map[string]string) ([]any, error) {
	if len(values) == 0 {
		return nil, errors.MissingField("values")
	}
	fields := make([]string, 0, len(values))
	for f := range values {
		if f == "" {
			return nil, errors.InvalidInput("values", "must not contain empty field names")
		}
		fields = append(fields, f)
	}
	sort.Strings(fields)
	args := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		args = append(args, f, values[f])
	}
	return args, nil
}
