package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type wireRequest struct{ argv []string }

func TestAdapt(t *testing.T) {
	backendCalls := 0
	backend := Func("wire", func(_ context.Context, in wireRequest) (string, error) {
		backendCalls++
		if in.argv[0] == "BOOM" {
			return "", errors.New("backend down")
		}
		return strings.Join(in.argv, " "), nil
	})

	codec := Codec[string, int, wireRequest, string]{
		Encode: func(_ context.Context, in string) (wireRequest, error) {
			if in == "" {
				return wireRequest{}, errors.New("empty input")
			}
			return wireRequest{argv: strings.Fields(in)}, nil
		},
		Decode: func(_ string, out string) (int, error) { return len(out), nil },
	}

	adapted := Adapt(backend, "domain", codec)
	if adapted.Name() != "domain" || !adapted.IsAvailable(context.Background()) {
		t.Fatal("unexpected name or availability")
	}

	got, err := adapted.Execute(context.Background(), "GET  key")
	if err != nil || got != len("GET key") {
		t.Fatalf("expected %d, got %d err=%v", len("GET key"), got, err)
	}

	if _, err := adapted.Execute(context.Background(), ""); err == nil || backendCalls != 1 {
		t.Fatalf("rejected input must not reach backend, err=%v calls=%d", err, backendCalls)
	}

	if _, err := adapted.Execute(context.Background(), "BOOM"); err == nil || err.Error() != "backend down" {
		t.Fatalf("backend error should pass through, got %v", err)
	}
}

func TestOperationName(t *testing.T) {
	if got := operationName(42, "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %s", got)
	}
}
