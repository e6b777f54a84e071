package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		GitPath:         "registry",
		GitBranch:       "main",
		GitRepo:         "https://example.invalid/registry.git",
		DNS:             []string{"127.0.0.1:53"},
		WHOIS:           []string{"127.0.0.1:43"},
		Interval:        300 * time.Second,
		NodeName:        "node-1",
		HealthCheckPort: 8080,
		TLD:             "catmunch",
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingGitRepo(t *testing.T) {
	cfg := validConfig()
	cfg.GitRepo = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing git_repo")
	}
}

func TestValidateRejectsBadListenAddress(t *testing.T) {
	cfg := validConfig()
	cfg.DNS = []string{"not-a-host-port"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for malformed dns address")
	}
}

func TestValidateRejectsNonPositiveInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Interval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestValidateRejectsOutOfRangeHealthPort(t *testing.T) {
	cfg := validConfig()
	cfg.HealthCheckPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range health_check_port")
	}
}
