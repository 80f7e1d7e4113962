// Package models defines the data structures shared across the
// checking pipeline: configuration, inputs, requests, and verdicts.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MethodMode selects how website requests are issued.
type MethodMode string

const (
	MethodGet         MethodMode = "get"
	MethodHead        MethodMode = "head"
	MethodHeadThenGet MethodMode = "head-then-get"
)

// Config is the fully-populated runtime configuration consumed by the
// pipeline. Values come from CLI flags merged over an optional YAML
// file; flags win.
type Config struct {
	Inputs []Input `yaml:"-"`
	Base   string  `yaml:"base,omitempty"`

	MaxConcurrency        int `yaml:"max_concurrency"`
	MaxConcurrencyPerHost int `yaml:"max_concurrency_per_host"`

	MaxRedirects     int           `yaml:"max_redirects"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryWaitTime    time.Duration `yaml:"-"`
	RetryWaitTimeMax time.Duration `yaml:"-"`
	Timeout          time.Duration `yaml:"-"`

	AcceptedStatusCodes []int      `yaml:"accepted_status_codes,omitempty"`
	Method              MethodMode `yaml:"method"`

	Include          []string `yaml:"include,omitempty"`
	Exclude          []string `yaml:"exclude,omitempty"`
	ExcludePrivate   bool     `yaml:"exclude_private"`
	ExcludeLinkLocal bool     `yaml:"exclude_link_local"`
	ExcludeLoopback  bool     `yaml:"exclude_loopback"`
	ExcludeMail      bool     `yaml:"exclude_mail"`
	ExcludeFile      bool     `yaml:"exclude_file"`
	ExcludePath      []string `yaml:"exclude_path,omitempty"`
	IncludeFragments bool     `yaml:"include_fragments"`
	IncludeVerbatim  bool     `yaml:"include_verbatim"`
	IncludeMail      bool     `yaml:"include_mail"`
	VerifyMailSMTP   bool     `yaml:"verify_mail_smtp"`

	Headers        map[string]string `yaml:"headers,omitempty"`
	UserAgent      string            `yaml:"user_agent"`
	CookieJarPath  string            `yaml:"cookie_jar,omitempty"`
	BasicAuth      string            `yaml:"basic_auth,omitempty"`
	GithubToken    string            `yaml:"github_token,omitempty"`
	AcceptEncoding []string          `yaml:"accept_encoding,omitempty"`

	Cache            bool          `yaml:"cache"`
	CachePath        string        `yaml:"cache_file,omitempty"`
	MaxCacheAge      time.Duration `yaml:"-"`
	MaxCacheAgeError time.Duration `yaml:"-"`

	Schemes []string `yaml:"schemes,omitempty"`

	History bool `yaml:"history"`
	Dump    bool `yaml:"-"`
}

// DefaultConfig returns the baseline configuration before any flags or
// config file are applied.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency:        128,
		MaxConcurrencyPerHost: 8,
		MaxRedirects:          5,
		MaxRetries:            3,
		RetryWaitTime:         1 * time.Second,
		RetryWaitTimeMax:      30 * time.Second,
		Timeout:               20 * time.Second,
		Method:                MethodGet,
		UserAgent:             "linkcheck/1.0",
		Schemes:               []string{"http", "https", "file", "mailto"},
		AcceptEncoding:        []string{"gzip", "deflate"},
		MaxCacheAge:           24 * time.Hour,
		MaxCacheAgeError:      1 * time.Hour,
	}
}

// LoadConfig reads a YAML config file over the defaults. Durations
// are written in Go syntax ("20s", "1h30m"); the main decode skips the
// duration fields and a second pass over the same document parses them.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var durations struct {
		RetryWaitTime    string `yaml:"retry_wait_time"`
		RetryWaitTimeMax string `yaml:"retry_wait_time_max"`
		Timeout          string `yaml:"timeout"`
		MaxCacheAge      string `yaml:"max_cache_age"`
		MaxCacheAgeError string `yaml:"max_cache_age_error"`
	}
	if err := yaml.Unmarshal(data, &durations); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	for _, field := range []struct {
		raw  string
		into *time.Duration
	}{
		{durations.RetryWaitTime, &cfg.RetryWaitTime},
		{durations.RetryWaitTimeMax, &cfg.RetryWaitTimeMax},
		{durations.Timeout, &cfg.Timeout},
		{durations.MaxCacheAge, &cfg.MaxCacheAge},
		{durations.MaxCacheAgeError, &cfg.MaxCacheAgeError},
	} {
		if field.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(field.raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid duration %q: %w", field.raw, err)
		}
		*field.into = parsed
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot start with.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("config: no inputs given")
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("config: max_concurrency must be positive")
	}
	if c.MaxConcurrencyPerHost <= 0 {
		return fmt.Errorf("config: max_concurrency_per_host must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive")
	}
	switch c.Method {
	case MethodGet, MethodHead, MethodHeadThenGet:
	default:
		return fmt.Errorf("config: unknown method %q", c.Method)
	}
	return nil
}

// AcceptedCodes returns the accepted-status set as a lookup map.
// Empty configuration means the 2xx class.
func (c *Config) AcceptedCodes() map[int]bool {
	set := make(map[int]bool, len(c.AcceptedStatusCodes))
	for _, code := range c.AcceptedStatusCodes {
		set[code] = true
	}
	return set
}
