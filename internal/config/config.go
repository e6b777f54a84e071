// Package config defines the daemon's configuration surface and binds it
// to flags and environment variables via viper, mirroring every long flag
// name as its uppercased environment variable per spec.md §6.
package config

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every recognized option from spec.md §6, plus the TLD the
// expansion makes configurable per the open question in spec.md §9.
type Config struct {
	GitPath         string        `mapstructure:"git_path"`
	GitBranch       string        `mapstructure:"git_branch"`
	GitRepo         string        `mapstructure:"git_repo"`
	DNS             []string      `mapstructure:"dns"`
	WHOIS           []string      `mapstructure:"whois"`
	Interval        time.Duration `mapstructure:"interval"`
	NodeName        string        `mapstructure:"node_name"`
	HealthCheckPort int           `mapstructure:"health_check_port"`
	TLD             string        `mapstructure:"tld"`
}

// Bind registers every flag on fs and binds matching environment variables
// through v, following the "env vars mirror long option names, uppercased"
// rule from spec.md §6.
func Bind(fs *pflag.FlagSet, v *viper.Viper) {
	fs.StringP("git-path", "p", "registry", "local mirror directory for the upstream registry")
	fs.StringP("git-branch", "b", "main", "upstream branch to track")
	fs.StringP("git-repo", "u", "", "upstream git repository URL (required)")
	fs.StringSliceP("dns", "d", nil, "DNS listen addresses (host:port), may be empty to disable")
	fs.StringSliceP("whois", "w", nil, "WHOIS listen addresses (host:port)")
	fs.IntP("interval", "i", 300, "refresh period in seconds")
	fs.String("node-name", "Default Node", "identifier returned by WHOIS whoami and checked by readiness")
	fs.Int("health-check-port", 8080, "TCP port for the readiness HTTP endpoint")
	fs.String("tld", "catmunch", "private top-level label this registry is authoritative for")

	_ = v.BindPFlag("git_path", fs.Lookup("git-path"))
	_ = v.BindPFlag("git_branch", fs.Lookup("git-branch"))
	_ = v.BindPFlag("git_repo", fs.Lookup("git-repo"))
	_ = v.BindPFlag("dns", fs.Lookup("dns"))
	_ = v.BindPFlag("whois", fs.Lookup("whois"))
	_ = v.BindPFlag("interval", fs.Lookup("interval"))
	_ = v.BindPFlag("node_name", fs.Lookup("node-name"))
	_ = v.BindPFlag("health_check_port", fs.Lookup("health-check-port"))
	_ = v.BindPFlag("tld", fs.Lookup("tld"))

	v.SetEnvPrefix("")
	v.AutomaticEnv()
	for _, key := range []string{"git_path", "git_branch", "git_repo", "dns", "whois", "interval", "node_name", "health_check_port", "tld"} {
		_ = v.BindEnv(key)
	}
}

// Load reads the bound values from v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	intervalSeconds := v.GetInt64("interval")
	cfg := &Config{
		GitPath:         v.GetString("git_path"),
		GitBranch:       v.GetString("git_branch"),
		GitRepo:         v.GetString("git_repo"),
		DNS:             v.GetStringSlice("dns"),
		WHOIS:           v.GetStringSlice("whois"),
		Interval:        time.Duration(intervalSeconds) * time.Second,
		NodeName:        v.GetString("node_name"),
		HealthCheckPort: v.GetInt("health_check_port"),
		TLD:             v.GetString("tld"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required option and every address-shaped option,
// per spec.md §7's "Configuration error: fatal at startup" policy.
func (c *Config) Validate() error {
	if c.GitRepo == "" {
		return fmt.Errorf("config: git_repo is required")
	}
	if c.GitPath == "" {
		return fmt.Errorf("config: git_path must not be empty")
	}
	if c.GitBranch == "" {
		return fmt.Errorf("config: git_branch must not be empty")
	}
	if c.TLD == "" {
		return fmt.Errorf("config: tld must not be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("config: interval must be positive")
	}
	if c.HealthCheckPort <= 0 || c.HealthCheckPort > 65535 {
		return fmt.Errorf("config: health_check_port %d out of range", c.HealthCheckPort)
	}
	for _, addr := range c.DNS {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("config: invalid dns address %q: %w", addr, err)
		}
	}
	for _, addr := range c.WHOIS {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("config: invalid whois address %q: %w", addr, err)
		}
	}
	return nil
}
