package check

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/linkcheck/internal/output"
	"github.com/dtnitsch/linkcheck/models"
	"github.com/dtnitsch/linkcheck/pkg/base"
	"github.com/dtnitsch/linkcheck/pkg/cache"
	"github.com/dtnitsch/linkcheck/pkg/checker"
	"github.com/dtnitsch/linkcheck/pkg/collect"
	"github.com/dtnitsch/linkcheck/pkg/db"
	"github.com/dtnitsch/linkcheck/pkg/filter"
	"github.com/dtnitsch/linkcheck/pkg/stats"
)

// Action runs the check pipeline: collect inputs, extract and
// assemble requests, verify them concurrently, aggregate, render.
func Action(c *cli.Context) error {
	logLevel := slog.LevelWarn
	if c.Bool("verbose") {
		logLevel = slog.LevelInfo
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := buildConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := filter.New(filter.Options{
		Include:          cfg.Include,
		Exclude:          cfg.Exclude,
		Schemes:          cfg.Schemes,
		ExcludePrivate:   cfg.ExcludePrivate,
		ExcludeLinkLocal: cfg.ExcludeLinkLocal,
		ExcludeLoopback:  cfg.ExcludeLoopback,
		ExcludeMail:      cfg.ExcludeMail,
		ExcludeFile:      cfg.ExcludeFile,
		ExcludePath:      cfg.ExcludePath,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	responseCache := cache.New()
	if cfg.Cache && cfg.CachePath != "" {
		if err := responseCache.Load(cfg.CachePath); err != nil {
			logger.Warn("failed to load cache, starting empty", "path", cfg.CachePath, "error", err)
		}
	}

	client, err := checker.New(cfg, f, responseCache, logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	var inputBase *base.Base
	if cfg.Base != "" {
		inputBase, err = base.New(cfg.Base)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
		}
	}

	collector := &collect.Collector{
		Base:            inputBase,
		IncludeVerbatim: cfg.IncludeVerbatim,
		UseIgnoreFiles:  !c.Bool("no-ignore"),
		SkipHidden:      !c.Bool("hidden"),
		HTTP:            client.HTTPClient(),
		Logger:          logger,
		BufferSize:      cfg.MaxConcurrency,
	}

	items := collector.Requests(ctx, cfg.Inputs)

	if cfg.Dump {
		return dump(items)
	}

	format := output.FormatPlain
	if c.String("format") == "json" {
		format = output.FormatJSON
	}
	printer := output.NewPrinter(os.Stdout, format, c.Bool("verbose"), c.String("fields"), c.Bool("terse"))

	var database *db.DB
	var runID int64
	if cfg.History {
		database, err = db.Open(c.String("history-db"))
		if err != nil {
			logger.Warn("failed to open history database, continuing without", "error", err)
		} else {
			defer database.Close()
			if runID, err = database.BeginRun(); err != nil {
				logger.Warn("failed to begin history run", "error", err)
				database = nil
			}
		}
	}

	logger.Info("starting check", "inputs", len(cfg.Inputs), "workers", cfg.MaxConcurrency)
	started := time.Now()

	responses := make(chan models.Response, cfg.MaxConcurrency)
	var wg sync.WaitGroup
	for w := 1; w <= cfg.MaxConcurrency; w++ {
		wg.Add(1)
		go worker(ctx, w, logger, client, items, responses, &wg)
	}
	go func() {
		wg.Wait()
		close(responses)
	}()

	s := stats.New()
	for resp := range responses {
		s.Record(resp)
		printer.Response(resp)
		if database != nil {
			if err := database.RecordCheck(runID, resp); err != nil {
				logger.Warn("failed to record check", "url", resp.URL, "error", err)
			}
		}
	}
	s.AddRetries(client.Retries())
	s.Finish(started)
	logger.Info("check finished", "total", s.Total, "broken", s.Failed, "duration", s.Duration)

	if database != nil {
		if err := database.FinishRun(runID, s.Total, s.Successful+s.Redirected, s.Failed, s.Excluded, s.Cached); err != nil {
			logger.Warn("failed to finish history run", "error", err)
		}
	}
	if cfg.Cache && cfg.CachePath != "" {
		if err := responseCache.Save(cfg.CachePath); err != nil {
			logger.Warn("failed to save cache", "path", cfg.CachePath, "error", err)
		}
	}
	if err := client.SaveCookies(); err != nil {
		logger.Warn("failed to save cookie jar", "error", err)
	}

	if err := printer.Finish(s); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	if s.Total == 0 {
		return cli.Exit("Error: no links found in the given inputs", 1)
	}
	if s.Broken() {
		return cli.Exit("", 2)
	}
	return nil
}

// worker drains the request stream. Assembly failures still owe the
// aggregator a response, so they are folded into InvalidUrl errors
// here rather than dropped.
func worker(ctx context.Context, id int, logger *slog.Logger, client *checker.Client, items <-chan collect.Item, responses chan<- models.Response, wg *sync.WaitGroup) {
	defer wg.Done()
	for item := range items {
		if item.Err != nil {
			// Candidate-level failures are bad URLs; item-level ones
			// (no raw text) are unreadable inputs.
			kind := models.ErrInvalidURL
			if item.RawText == "" {
				kind = models.ErrIO
			}
			responses <- models.Response{
				Source: item.Source,
				URL:    item.RawText,
				Status: models.ErrorStatus(kind, item.Err.Error()),
			}
			continue
		}
		logger.Info("checking", "worker_id", id, "url", item.Request.URI.String(), "source", item.Request.Source)
		responses <- client.Check(ctx, item.Request)
		if ctx.Err() != nil {
			// Stop issuing probes, but every remaining request still
			// gets its response so the aggregate count holds.
			for item := range items {
				if item.Err != nil {
					continue
				}
				responses <- models.NewResponse(item.Request, models.ErrorStatus(models.ErrCancelled, "check cancelled"), "")
			}
			return
		}
	}
}

// dump prints the assembled requests without checking them.
func dump(items <-chan collect.Item) error {
	broken := false
	for item := range items {
		if item.Err != nil {
			fmt.Fprintf(os.Stderr, "invalid: %s (%s)\n", item.RawText, item.Err)
			broken = true
			continue
		}
		fmt.Println(item.Request.URI.String())
	}
	if broken {
		return cli.Exit("", 2)
	}
	return nil
}
