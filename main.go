package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/linkcheck/internal/cachecmd"
	"github.com/dtnitsch/linkcheck/internal/check"
	"github.com/dtnitsch/linkcheck/internal/history"
	"github.com/dtnitsch/linkcheck/pkg/help"
)

func main() {
	app := &cli.App{
		Name:  "linkcheck",
		Usage: "fast, concurrent link checker for files, directories, and websites",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "verify every link found in the given inputs",
				ArgsUsage: "<url|path|glob|-> ...",
				Flags:     checkFlags(),
				Action:    check.Action,
			},
			{
				Name:  "cache",
				Usage: "inspect or clear the persisted response cache",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "list cached verdicts",
						Flags:  cacheFlags(),
						Action: cachecmd.ShowAction,
					},
					{
						Name:   "clear",
						Usage:  "remove the cache snapshot",
						Flags:  cacheFlags(),
						Action: cachecmd.ClearAction,
					},
				},
			},
			{
				Name:  "history",
				Usage: "browse past runs recorded with --history",
				Subcommands: []*cli.Command{
					{
						Name:  "runs",
						Usage: "list past runs",
						Flags: append(historyFlags(),
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to list"},
						),
						Action: history.RunsAction,
					},
					{
						Name:      "run",
						Usage:     "show the verdicts of one run (latest when omitted)",
						ArgsUsage: "[run-id]",
						Flags: append(historyFlags(),
							&cli.BoolFlag{Name: "failed-only", Usage: "only show broken links"},
						),
						Action: history.RunAction,
					},
				},
			},
			{
				Name:  "quickstart",
				Usage: "print a machine-readable usage reference",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		log.Fatal(err)
	}
}

func checkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "YAML config file"},
		&cli.StringFlag{Name: "base", Usage: "base URL or directory for relative references"},
		&cli.IntFlag{Name: "max-concurrency", Aliases: []string{"j"}, Usage: "maximum requests in flight"},
		&cli.IntFlag{Name: "max-concurrency-per-host", Usage: "maximum requests in flight per host"},
		&cli.IntFlag{Name: "max-redirects", Usage: "redirects followed per request"},
		&cli.IntFlag{Name: "max-retries", Usage: "retries for transient failures"},
		&cli.StringFlag{Name: "retry-wait", Usage: "initial retry backoff, e.g. 1s"},
		&cli.StringFlag{Name: "retry-wait-max", Usage: "backoff ceiling, e.g. 30s"},
		&cli.StringFlag{Name: "timeout", Usage: "per-request total timeout, e.g. 20s"},
		&cli.IntSliceFlag{Name: "accept", Usage: "status codes accepted as success (default 2xx)"},
		&cli.StringFlag{Name: "method", Usage: "get, head, or head-then-get"},
		&cli.StringSliceFlag{Name: "include", Usage: "only check URLs matching these regexes"},
		&cli.StringSliceFlag{Name: "exclude", Usage: "skip URLs matching these regexes"},
		&cli.StringSliceFlag{Name: "exclude-path", Usage: "skip file paths with these prefixes"},
		&cli.BoolFlag{Name: "exclude-private", Usage: "skip private-range IP hosts"},
		&cli.BoolFlag{Name: "exclude-link-local", Usage: "skip link-local IP hosts"},
		&cli.BoolFlag{Name: "exclude-loopback", Usage: "skip loopback hosts"},
		&cli.BoolFlag{Name: "exclude-mail", Usage: "skip mailto links"},
		&cli.BoolFlag{Name: "exclude-file", Usage: "skip file:// links"},
		&cli.BoolFlag{Name: "include-fragments", Usage: "verify #fragments against page anchors"},
		&cli.BoolFlag{Name: "include-verbatim", Usage: "scan unknown file types as plaintext"},
		&cli.BoolFlag{Name: "include-mail", Usage: "check mailto addresses"},
		&cli.BoolFlag{Name: "verify-mail-smtp", Usage: "probe mail exchangers over SMTP"},
		&cli.StringSliceFlag{Name: "header", Usage: "extra request header name=value"},
		&cli.StringFlag{Name: "user-agent", Usage: "User-Agent header"},
		&cli.StringFlag{Name: "cookie-jar", Usage: "cookie file loaded and saved across runs"},
		&cli.StringFlag{Name: "basic-auth", Usage: "credentials as user:password"},
		&cli.StringFlag{Name: "github-token", Usage: "token for github.com requests", EnvVars: []string{"GITHUB_TOKEN"}},
		&cli.BoolFlag{Name: "cache", Usage: "reuse verdicts within the run"},
		&cli.StringFlag{Name: "cache-file", Usage: "CSV snapshot persisted across runs"},
		&cli.StringFlag{Name: "max-cache-age", Usage: "freshness window for cached successes"},
		&cli.StringFlag{Name: "max-cache-age-error", Usage: "freshness window for cached errors"},
		&cli.StringSliceFlag{Name: "scheme", Usage: "permitted URL schemes"},
		&cli.StringFlag{Name: "format", Value: "plain", Usage: "output format: plain or json"},
		&cli.StringFlag{Name: "fields", Usage: "comma-separated JSON field projection"},
		&cli.BoolFlag{Name: "terse", Usage: "terse JSON field names"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "also print working links"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "errors only"},
		&cli.BoolFlag{Name: "dump", Usage: "print discovered links without checking"},
		&cli.BoolFlag{Name: "no-ignore", Usage: "do not honour .gitignore files"},
		&cli.BoolFlag{Name: "hidden", Usage: "include hidden files and directories"},
		&cli.BoolFlag{Name: "history", Usage: "record verdicts in the history database"},
		&cli.StringFlag{Name: "history-db", Usage: "history database path"},
	}
}

func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "cache-file", Usage: "CSV cache snapshot path"},
	}
}

func historyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "history-db", Usage: "history database path"},
	}
}
