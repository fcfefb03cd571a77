package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/gokv/logger"
)

type testRedis struct {
	Addr      string `mapstructure:"addr"`
	ScanCount int64  `mapstructure:"scan_count"`
}

type testConfig struct {
	BaseConfig `mapstructure:",squash"`
	Redis      testRedis `mapstructure:"redis"`
}

type fakeFS struct {
	files    map[string]bool
	envLoads []string
	envErr   error
}

func (f *fakeFS) Exists(path string) bool { return f.files[path] }

func (f *fakeFS) LoadEnv(path string) error {
	f.envLoads = append(f.envLoads, path)
	return f.envErr
}

func (f *fakeFS) UserConfigDir() (string, error) { return "/home/u/.config", nil }

func TestBaseConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := BaseConfig{Name: "kvscan"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug log level in development, got %q", cfg.Logging.Level)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := BaseConfig{Name: "kvscan", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info log level, got %q", cfg.Logging.Level)
		}
	})
}

func TestBaseConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BaseConfig
		wantErr string
	}{
		{"valid development", BaseConfig{Name: "kvscan", Environment: "development"}, ""},
		{"valid production", BaseConfig{Name: "kvscan", Environment: "production"}, ""},
		{"missing name", BaseConfig{Environment: "production"}, "name is required"},
		{"invalid environment", BaseConfig{Name: "kvscan", Environment: "qa"}, "environment must be one of"},
		{"invalid log level", BaseConfig{Name: "kvscan", Environment: "staging", Logging: loggingWithLevel("loud")}, "logging:"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			if cfg.Logging.Level == "" {
				cfg.Logging.ApplyDefaults()
			}
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvscan.yml")
	content := `
name: kvscan
environment: staging
redis:
  addr: "localhost:6380"
  scan_count: 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := LoadConfig("kvscan", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := testRedis{Addr: "localhost:6380", ScanCount: 25}
	if diff := cmp.Diff(want, cfg.Redis); diff != "" {
		t.Errorf("redis config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Name != "kvscan" || cfg.Environment != "staging" {
		t.Errorf("unexpected base config %+v", cfg.BaseConfig)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvscan.yml")
	if err := os.WriteFile(path, []byte("name: kvscan\nredis:\n  addr: file:6379\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOKV_REDIS_ADDR", "env:6379")
	t.Setenv("GOKV_REDIS_SCAN_COUNT", "7")

	var cfg testConfig
	if err := LoadConfig("kvscan", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Redis.Addr != "env:6379" {
		t.Errorf("expected env override, got %q", cfg.Redis.Addr)
	}
	if cfg.Redis.ScanCount != 7 {
		t.Errorf("expected scan_count=7, got %d", cfg.Redis.ScanCount)
	}
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	var cfg testConfig
	fs := &fakeFS{files: map[string]bool{}}
	if err := LoadConfig("kvscan", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestLoadConfigEnvFileError(t *testing.T) {
	var cfg testConfig
	fs := &fakeFS{files: map[string]bool{"./.env": true}, envErr: fmt.Errorf("bad line")}
	err := LoadConfig("kvscan", &cfg, WithFileSystem(fs))
	if err == nil || !strings.Contains(err.Error(), "bad line") {
		t.Fatalf("expected env file error, got %v", err)
	}
}

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]bool
		opts  LoaderConfig
		want  ResolvedFiles
	}{
		{
			name:  "explicit paths win",
			files: map[string]bool{"./kvscan.yml": true, "./.env": true},
			opts:  LoaderConfig{ConfigFile: "/etc/kv.yml", EnvFile: "/etc/kv.env"},
			want:  ResolvedFiles{ConfigFile: "/etc/kv.yml", EnvFile: "/etc/kv.env"},
		},
		{
			name:  "binary named files first",
			files: map[string]bool{"./kvscan.yml": true, "./config.yml": true, "./.env.kvscan": true, "./.env": true},
			want:  ResolvedFiles{ConfigFile: "./kvscan.yml", EnvFile: "./.env.kvscan"},
		},
		{
			name:  "cmd directory",
			files: map[string]bool{"./cmd/kvscan/config.yml": true},
			want:  ResolvedFiles{ConfigFile: "./cmd/kvscan/config.yml"},
		},
		{
			name:  "user config dir",
			files: map[string]bool{"/home/u/.config/gokv/kvscan.yml": true},
			want:  ResolvedFiles{ConfigFile: "/home/u/.config/gokv/kvscan.yml"},
		},
		{
			name:  "nothing found",
			files: map[string]bool{},
			want:  ResolvedFiles{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &Resolver{FileSystem: &fakeFS{files: tc.files}}
			got := r.ResolveFiles("kvscan", tc.opts)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("resolved files mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("REDIS_SCAN_COUNT")
	for _, want := range []string{"redis_scan_count", "redis.scan.count", "redis.scan_count", "redis_scan.count"} {
		found := false
		for _, v := range got {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}

	if diff := cmp.Diff([]string{"name"}, envKeyVariants("NAME")); diff != "" {
		t.Errorf("single-part key mismatch:\n%s", diff)
	}
}

func loggingWithLevel(level string) (c logger.Config) {
	c.ApplyDefaults()
	c.Level = level
	return c
}
