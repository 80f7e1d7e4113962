package check

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/linkcheck/models"
)

// buildConfig merges defaults, the optional YAML config file, and CLI
// flags (highest precedence) into the runtime configuration.
func buildConfig(c *cli.Context) (*models.Config, error) {
	cfg := models.DefaultConfig()
	if c.IsSet("config") {
		loaded, err := models.LoadConfig(c.String("config"))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	for _, arg := range c.Args().Slice() {
		cfg.Inputs = append(cfg.Inputs, models.NewInput(arg))
	}

	if c.IsSet("base") {
		cfg.Base = c.String("base")
	}
	if c.IsSet("max-concurrency") {
		cfg.MaxConcurrency = c.Int("max-concurrency")
	}
	if c.IsSet("max-concurrency-per-host") {
		cfg.MaxConcurrencyPerHost = c.Int("max-concurrency-per-host")
	}
	if c.IsSet("max-redirects") {
		cfg.MaxRedirects = c.Int("max-redirects")
	}
	if c.IsSet("max-retries") {
		cfg.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-wait") {
		d, err := time.ParseDuration(c.String("retry-wait"))
		if err != nil {
			return nil, fmt.Errorf("invalid retry-wait duration: %w", err)
		}
		cfg.RetryWaitTime = d
	}
	if c.IsSet("retry-wait-max") {
		d, err := time.ParseDuration(c.String("retry-wait-max"))
		if err != nil {
			return nil, fmt.Errorf("invalid retry-wait-max duration: %w", err)
		}
		cfg.RetryWaitTimeMax = d
	}
	if c.IsSet("timeout") {
		d, err := time.ParseDuration(c.String("timeout"))
		if err != nil {
			return nil, fmt.Errorf("invalid timeout duration: %w", err)
		}
		cfg.Timeout = d
	}
	if c.IsSet("accept") {
		cfg.AcceptedStatusCodes = nil
		for _, code := range c.IntSlice("accept") {
			cfg.AcceptedStatusCodes = append(cfg.AcceptedStatusCodes, code)
		}
	}
	if c.IsSet("method") {
		cfg.Method = models.MethodMode(strings.ToLower(c.String("method")))
	}
	if c.IsSet("include") {
		cfg.Include = c.StringSlice("include")
	}
	if c.IsSet("exclude") {
		cfg.Exclude = c.StringSlice("exclude")
	}
	if c.IsSet("exclude-path") {
		cfg.ExcludePath = c.StringSlice("exclude-path")
	}
	if c.IsSet("exclude-private") {
		cfg.ExcludePrivate = c.Bool("exclude-private")
	}
	if c.IsSet("exclude-link-local") {
		cfg.ExcludeLinkLocal = c.Bool("exclude-link-local")
	}
	if c.IsSet("exclude-loopback") {
		cfg.ExcludeLoopback = c.Bool("exclude-loopback")
	}
	if c.IsSet("exclude-mail") {
		cfg.ExcludeMail = c.Bool("exclude-mail")
	}
	if c.IsSet("exclude-file") {
		cfg.ExcludeFile = c.Bool("exclude-file")
	}
	if c.IsSet("include-fragments") {
		cfg.IncludeFragments = c.Bool("include-fragments")
	}
	if c.IsSet("include-verbatim") {
		cfg.IncludeVerbatim = c.Bool("include-verbatim")
	}
	if c.IsSet("include-mail") {
		cfg.IncludeMail = c.Bool("include-mail")
	}
	if c.IsSet("verify-mail-smtp") {
		cfg.VerifyMailSMTP = c.Bool("verify-mail-smtp")
	}
	for _, header := range c.StringSlice("header") {
		name, value, found := strings.Cut(header, "=")
		if !found {
			name, value, found = strings.Cut(header, ":")
		}
		if !found {
			return nil, fmt.Errorf("invalid header %q, expected name=value", header)
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("cookie-jar") {
		cfg.CookieJarPath = c.String("cookie-jar")
	}
	if c.IsSet("basic-auth") {
		cfg.BasicAuth = c.String("basic-auth")
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && cfg.GithubToken == "" {
		cfg.GithubToken = token
	}
	if c.IsSet("github-token") {
		cfg.GithubToken = c.String("github-token")
	}
	if c.IsSet("cache") {
		cfg.Cache = c.Bool("cache")
	}
	if c.IsSet("cache-file") {
		cfg.CachePath = c.String("cache-file")
		cfg.Cache = true
	}
	if c.IsSet("max-cache-age") {
		d, err := time.ParseDuration(c.String("max-cache-age"))
		if err != nil {
			return nil, fmt.Errorf("invalid max-cache-age duration: %w", err)
		}
		cfg.MaxCacheAge = d
	}
	if c.IsSet("max-cache-age-error") {
		d, err := time.ParseDuration(c.String("max-cache-age-error"))
		if err != nil {
			return nil, fmt.Errorf("invalid max-cache-age-error duration: %w", err)
		}
		cfg.MaxCacheAgeError = d
	}
	if c.IsSet("scheme") {
		cfg.Schemes = c.StringSlice("scheme")
	}
	if c.IsSet("history") {
		cfg.History = c.Bool("history")
	}
	cfg.Dump = c.Bool("dump")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
