package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/gokv/errors"
)

type sampleConfig struct {
	Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
	Protocol int    `mapstructure:"protocol" validate:"oneof=2 3"`
	PoolSize int    `mapstructure:"pool_size" validate:"gte=1"`
}

func TestValidate_Valid(t *testing.T) {
	cfg := sampleConfig{Addr: "localhost:6379", Protocol: 2, PoolSize: 10}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	err := Validate(sampleConfig{Addr: "localhost", Protocol: 4})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}

	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
	for _, name := range []string{"addr", "protocol", "pool_size"} {
		if !strings.Contains(appErr.Message, name+":") {
			t.Errorf("expected message to mention %s, got %q", name, appErr.Message)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxInFlight"); got != "max_in_flight" {
		t.Errorf("expected max_in_flight, got %q", got)
	}
}

func TestValidGlob(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"", true},
		{"user:*", true},
		{"h?llo", true},
		{"h[ae]llo", true},
		{"h[^e]llo", true},
		{`literal\*`, true},
		{"h[ae", false},
		{`trailing\`, false},
		{`escaped\[`, true},
	}
	for _, tt := range tests {
		if got := ValidGlob(tt.pattern); got != tt.want {
			t.Errorf("ValidGlob(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestValidate_GlobTag(t *testing.T) {
	type query struct {
		Match string `json:"match" validate:"omitempty,glob"`
	}
	if err := Validate(query{Match: "user:[0-9]*"}); err != nil {
		t.Fatalf("expected valid pattern, got %v", err)
	}
	err := Validate(query{Match: "user:[0-9"})
	if err == nil || !strings.Contains(err.Error(), "match: must be a glob pattern") {
		t.Fatalf("expected glob error on match, got %v", err)
	}
}
