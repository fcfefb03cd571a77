package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/scan"
)

func TestScalarDecoders(t *testing.T) {
	if v, err := AsInt64(NewReply("HLEN", int64(3))); err != nil || v != 3 {
		t.Errorf("AsInt64: %d, %v", v, err)
	}
	if v, err := AsBool(NewReply("HEXISTS", int64(1))); err != nil || !v {
		t.Errorf("AsBool: %v, %v", v, err)
	}
	if v, err := AsBool(NewReply("HEXISTS", true)); err != nil || !v {
		t.Errorf("AsBool resp3: %v, %v", v, err)
	}
	if v, err := AsFloat64(NewReply("HINCRBYFLOAT", "10.5")); err != nil || v != 10.5 {
		t.Errorf("AsFloat64: %v, %v", v, err)
	}
	if v, err := AsFloat64(NewReply("HINCRBYFLOAT", 2.5)); err != nil || v != 2.5 {
		t.Errorf("AsFloat64 resp3: %v, %v", v, err)
	}
	if v, err := AsBytes(NewReply("DUMP", "\x00\x01")); err != nil || len(v) != 2 {
		t.Errorf("AsBytes: %v, %v", v, err)
	}
	if _, err := AsOK(NewReply("RENAME", "OK")); err != nil {
		t.Errorf("AsOK: %v", err)
	}
}

func TestOptionalString(t *testing.T) {
	v, err := AsOptionalString(NewReply("HGET", nil))
	if err != nil || v.Valid {
		t.Fatalf("nil reply should be absent, got %+v, %v", v, err)
	}
	v, err = AsOptionalString(NewReply("HGET", "x"))
	if err != nil || !v.Valid || v.Value != "x" {
		t.Fatalf("expected x, got %+v, %v", v, err)
	}
}

func TestDecoderMismatch(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"int from string", func() error { _, err := AsInt64(NewReply("HLEN", "3")); return err }},
		{"bool out of range", func() error { _, err := AsBool(NewReply("HEXISTS", int64(2))); return err }},
		{"float garbage", func() error { _, err := AsFloat64(NewReply("HINCRBYFLOAT", "abc")); return err }},
		{"string from int", func() error { _, err := AsString(NewReply("TYPE", int64(1))); return err }},
		{"not OK", func() error { _, err := AsOK(NewReply("RENAME", "QUEUED")); return err }},
		{"strings from int", func() error { _, err := AsStrings(NewReply("HKEYS", int64(1))); return err }},
		{"odd pairs", func() error { _, err := AsPairs(NewReply("HGETALL", []any{"a", "1", "b"})); return err }},
		{"scan not pair", func() error { _, _, err := AsScan(NewReply("HSCAN", []any{"0"})); return err }},
		{"scan cursor int", func() error { _, _, err := AsScan(NewReply("HSCAN", []any{int64(0), []any{}})); return err }},
		{"scan empty cursor", func() error { _, _, err := AsScan(NewReply("HSCAN", []any{"", []any{}})); return err }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn()
			if !errors.IsRemoteProtocol(err) {
				t.Fatalf("expected REMOTE_PROTOCOL_ERROR, got %v", err)
			}
		})
	}
}

func TestAsStrings(t *testing.T) {
	got, err := AsStrings(NewReply("SORT", []any{"a", nil, []byte("c")}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "", "c"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got, err = AsStrings(NewReply("KEYS", nil))
	if err != nil || len(got) != 0 {
		t.Errorf("nil array should decode empty, got %v, %v", got, err)
	}
}

func TestAsOptionalStrings(t *testing.T) {
	got, err := AsOptionalStrings(NewReply("HMGET", []any{"1", nil}))
	if err != nil {
		t.Fatal(err)
	}
	want := []OptionalString{{Value: "1", Valid: true}, {}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAsPairs(t *testing.T) {
	want := []scan.KeyValue{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}

	got, err := AsPairs(NewReply("HGETALL", []any{"a", "1", "b", "2"}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resp2 mismatch (-want +got):\n%s", diff)
	}

	got, err = AsPairs(NewReply("HGETALL", map[any]any{"b": "2", "a": "1"}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resp3 mismatch (-want +got):\n%s", diff)
	}
}

func TestAsScan(t *testing.T) {
	token, elems, err := AsScan(NewReply("HSCAN", []any{"17", []any{"a", "1"}}))
	if err != nil {
		t.Fatal(err)
	}
	if token != "17" {
		t.Errorf("expected token 17, got %q", token)
	}
	pairs, err := AsPairs(elems)
	if err != nil || len(pairs) != 1 || pairs[0].Key != "a" {
		t.Errorf("unexpected elements %v, %v", pairs, err)
	}
	if elems.Command != "HSCAN" {
		t.Errorf("elements reply should keep command name, got %q", elems.Command)
	}
}
