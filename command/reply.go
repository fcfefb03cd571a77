package command

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/scan"
)

// Reply is a decoded store reply: nil, int64, float64, bool, string,
// []byte, []any or map[any]any, depending on the reply and protocol.
type Reply struct {
	// Command is the name of the command that produced the reply.
	Command string
	Value   any
}

// NewReply wraps v as the reply to command.
func NewReply(command string, v any) Reply {
	return Reply{Command: command, Value: v}
}

// IsNil reports a nil reply (missing key or field).
func (r Reply) IsNil() bool { return r.Value == nil }

// OptionalString is a string that may be absent, as in HMGET replies.
type OptionalString struct {
	Value string
	Valid bool
}

func (r Reply) mismatch(want string) error {
	return errors.RemoteProtocol(r.Command, fmt.Sprintf("expected %s reply, got %T", want, r.Value))
}

// AsInt64 decodes an integer reply.
func AsInt64(r Reply) (int64, error) {
	switch v := r.Value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, r.mismatch("integer")
	}
}

// AsBool decodes an integer 0/1 reply, or a RESP3 boolean.
func AsBool(r Reply) (bool, error) {
	switch v := r.Value.(type) {
	case bool:
		return v, nil
	case int64:
		if v != 0 && v != 1 {
			return false, errors.RemoteProtocol(r.Command, fmt.Sprintf("expected 0 or 1, got %d", v))
		}
		return v == 1, nil
	default:
		return false, r.mismatch("boolean")
	}
}

// AsFloat64 decodes a double reply or a bulk string holding a float.
func AsFloat64(r Reply) (float64, error) {
	switch v := r.Value.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errors.RemoteProtocol(r.Command, "reply is not a float").WithCause(err)
		}
		return f, nil
	default:
		return 0, r.mismatch("float")
	}
}

// AsString decodes a simple or bulk string reply.
func AsString(r Reply) (string, error) {
	switch v := r.Value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", r.mismatch("string")
	}
}

// AsOK accepts the simple string OK.
func AsOK(r Reply) (struct{}, error) {
	s, err := AsString(r)
	if err != nil {
		return struct{}{}, err
	}
	if s != "OK" {
		return struct{}{}, errors.RemoteProtocol(r.Command, fmt.Sprintf("expected OK, got %q", s))
	}
	return struct{}{}, nil
}

// AsOptionalString decodes a string reply that may be nil.
func AsOptionalString(r Reply) (OptionalString, error) {
	if r.IsNil() {
		return OptionalString{}, nil
	}
	s, err := AsString(r)
	if err != nil {
		return OptionalString{}, err
	}
	return OptionalString{Value: s, Valid: true}, nil
}

// AsBytes decodes a bulk string reply as raw bytes.
func AsBytes(r Reply) ([]byte, error) {
	switch v := r.Value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, r.mismatch("bulk string")
	}
}

func (r Reply) array() ([]any, error) {
	switch v := r.Value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	default:
		return nil, r.mismatch("array")
	}
}

// AsStrings decodes an array of strings. Nil elements decode as "".
func AsStrings(r Reply) ([]string, error) {
	arr, err := r.array()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(arr))
	for i, el := range arr {
		if el == nil {
			out = append(out, "")
			continue
		}
		s, err := AsString(Reply{Command: r.Command, Value: el})
		if err != nil {
			return nil, errors.RemoteProtocol(r.Command, fmt.Sprintf("element %d: %T is not a string", i, el))
		}
		out = append(out, s)
	}
	return out, nil
}

// AsOptionalStrings decodes an array whose elements may be nil.
func AsOptionalStrings(r Reply) ([]OptionalString, error) {
	arr, err := r.array()
	if err != nil {
		return nil, err
	}
	out := make([]OptionalString, 0, len(arr))
	for _, el := range arr {
		v, err := AsOptionalString(Reply{Command: r.Command, Value: el})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AsPairs decodes a flat field/value array, or a RESP3 map, into pairs.
// Array order is kept; map entries are sorted by field.
func AsPairs(r Reply) ([]scan.KeyValue, error) {
	if m, ok := r.Value.(map[any]any); ok {
		out := make([]scan.KeyValue, 0, len(m))
		for k, v := range m {
			ks, err1 := AsString(Reply{Command: r.Command, Value: k})
			vs, err2 := AsString(Reply{Command: r.Command, Value: v})
			if err1 != nil || err2 != nil {
				return nil, errors.RemoteProtocol(r.Command, "map entry is not a string pair")
			}
			out = append(out, scan.KeyValue{Key: ks, Value: vs})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		return out, nil
	}

	flat, err := AsStrings(r)
	if err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, errors.RemoteProtocol(r.Command, fmt.Sprintf("odd number of elements (%d) in field/value reply", len(flat)))
	}
	out := make([]scan.KeyValue, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		out = append(out, scan.KeyValue{Key: flat[i], Value: flat[i+1]})
	}
	return out, nil
}

// AsScan splits a scan reply into the next cursor token and the element
// array, returned as a Reply for AsStrings or AsPairs.
func AsScan(r Reply) (string, Reply, error) {
	arr, ok := r.Value.([]any)
	if !ok || len(arr) != 2 {
		return "", Reply{}, r.mismatch("two-element scan")
	}
	token, err := AsString(Reply{Command: r.Command, Value: arr[0]})
	if err != nil {
		return "", Reply{}, errors.RemoteProtocol(r.Command, "scan cursor is not a string")
	}
	if token == "" {
		return "", Reply{}, errors.RemoteProtocol(r.Command, "empty scan cursor")
	}
	return token, Reply{Command: r.Command, Value: arr[1]}, nil
}
