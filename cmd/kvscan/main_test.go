package main

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	redistest "github.com/kbukum/gokv/redis/testutil"
	"github.com/kbukum/gokv/resilience"
	"github.com/kbukum/gokv/scan"
	"github.com/kbukum/gokv/testutil"
)

func startStore(t *testing.T) *redistest.Component {
	t.Helper()
	store := redistest.NewComponent()
	testutil.T(t).Setup(store)
	return store
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	ctx := testutil.Context(t, 10*time.Second)
	var stdout, stderr bytes.Buffer
	code := run(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	sort.Strings(lines)
	return lines
}

func TestKeys(t *testing.T) {
	store := startStore(t)
	for _, k := range []string{"user:1", "user:2", "order:1"} {
		store.Server().Set(k, "x")
	}

	code, out, stderr := runCLI(t, "keys", "--addr", store.Server().Addr(), "--match", "user:*", "--count", "1")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if diff := cmp.Diff([]string{"user:1", "user:2"}, sortedLines(out)); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestHScan(t *testing.T) {
	store := startStore(t)
	store.Server().HSet("h1", "a", "1", "b", "2")
	store.Server().HSet("h2", "c", "3")

	code, out, stderr := runCLI(t, "hscan", "h1", "--addr", store.Server().Addr())
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if diff := cmp.Diff([]string{"a\t1", "b\t2"}, sortedLines(out)); diff != "" {
		t.Errorf("single hash mismatch (-want +got):\n%s", diff)
	}

	code, out, stderr = runCLI(t, "hscan", "h1", "h2", "--addr", store.Server().Addr())
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	want := []string{"h1\ta\t1", "h1\tb\t2", "h2\tc\t3"}
	if diff := cmp.Diff(want, sortedLines(out)); diff != "" {
		t.Errorf("multi hash mismatch (-want +got):\n%s", diff)
	}
}

func TestHGet(t *testing.T) {
	store := startStore(t)
	store.Server().HSet("h", "a", "1")

	code, out, _ := runCLI(t, "hget", "h", "a", "--addr", store.Server().Addr())
	if code != 0 || out != "1\n" {
		t.Fatalf("expected value 1, got exit %d output %q", code, out)
	}

	code, _, stderr := runCLI(t, "hget", "h", "zz", "--addr", store.Server().Addr())
	if code != 3 {
		t.Fatalf("expected exit 3 for a missing field, got %d: %s", code, stderr)
	}
}

func TestArgumentErrors(t *testing.T) {
	store := startStore(t)
	addr := store.Server().Addr()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"nope"}, 2},
		{"bad flag", []string{"keys", "--bogus"}, 2},
		{"hscan without key", []string{"hscan", "--addr", addr}, 2},
		{"cursor with many keys", []string{"hscan", "a", "b", "--cursor", "7", "--addr", addr}, 2},
		{"hget arity", []string{"hget", "only-key", "--addr", addr}, 2},
		{"type on hscan", []string{"hscan", "h", "--type", "hash", "--addr", addr}, 2},
		{"help", []string{"help"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, stderr := runCLI(t, tt.args...); code != tt.want {
				t.Fatalf("expected exit %d, got %d: %s", tt.want, code, stderr)
			}
		})
	}
}

func TestDrive_RetriesFromLastGoodCursor(t *testing.T) {
	mid := scan.Initial().Advance("5", "SCAN", "")
	end := mid.Advance(scan.InitialToken, "SCAN", "")

	var calls []string
	failed := false
	step := func(_ context.Context, c scan.Cursor) (scan.StreamPage, error) {
		calls = append(calls, c.Token())
		switch {
		case c.IsInitial():
			return scan.StreamPage{Count: 2, Cursor: mid}, nil
		case !failed:
			failed = true
			return scan.StreamPage{}, errors.ConnectionFailed("redis")
		default:
			return scan.StreamPage{Count: 1, Cursor: end}, nil
		}
	}

	retry := resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	cursor, n, err := drive(context.Background(), retry, logger.Nop(), scan.Initial(), step)
	if err != nil {
		t.Fatalf("drive failed: %v", err)
	}
	if !cursor.Finished() || n != 3 {
		t.Fatalf("expected finished cursor and 3 elements, got %v and %d", cursor, n)
	}
	if diff := cmp.Diff([]string{"0", "5", "5"}, calls); diff != "" {
		t.Errorf("step cursors mismatch (-want +got):\n%s", diff)
	}
}

func TestDrive_StopsOnFinalError(t *testing.T) {
	mid := scan.Initial().Advance("9", "HSCAN", "h")
	step := func(_ context.Context, c scan.Cursor) (scan.StreamPage, error) {
		if c.IsInitial() {
			return scan.StreamPage{Count: 1, Cursor: mid}, nil
		}
		return scan.StreamPage{}, errors.RemoteProtocol("HSCAN", "WRONGTYPE")
	}

	retry := resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}
	cursor, _, err := drive(context.Background(), retry, logger.Nop(), scan.Initial(), step)
	if !errors.IsRemoteProtocol(err) {
		t.Fatalf("expected remote protocol error, got %v", err)
	}
	if cursor.Token() != "9" {
		t.Fatalf("expected last good cursor 9, got %s", cursor.Token())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.MissingField("key"), 2},
		{errors.InvalidCursor("finished"), 2},
		{errors.Cancelled(context.Canceled), 130},
		{errors.NotFound("field", "h/a"), 3},
		{errors.ConnectionFailed("redis"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
