// Package output renders responses and the final summary for humans
// and machines. The pipeline core stays format-agnostic; everything
// presentation-related lives here.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/dtnitsch/linkcheck/internal/common"
	"github.com/dtnitsch/linkcheck/models"
	"github.com/dtnitsch/linkcheck/pkg/stats"
)

// Format selects the output renderer.
type Format string

const (
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
)

var (
	okColor       = color.New(color.FgGreen)
	redirectColor = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed, color.Bold)
	mutedColor    = color.New(color.Faint)
)

// Printer streams verdicts as they arrive and renders the summary at
// the end. Safe for concurrent Response calls.
type Printer struct {
	w       io.Writer
	format  Format
	verbose bool   // also print successes and exclusions
	fields  string // optional projection for JSON records
	terse   bool

	mu        sync.Mutex
	responses []models.Response
}

// NewPrinter builds a printer. Plain mode writes one line per verdict
// immediately; JSON mode collects and emits a single document.
func NewPrinter(w io.Writer, format Format, verbose bool, fields string, terse bool) *Printer {
	return &Printer{w: w, format: format, verbose: verbose, fields: fields, terse: terse}
}

// Response renders one verdict.
func (p *Printer) Response(resp models.Response) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == FormatJSON {
		p.responses = append(p.responses, resp)
		return
	}

	status := resp.Status
	if !p.verbose && !status.IsFailure() {
		return
	}

	var c *color.Color
	switch {
	case status.IsFailure():
		c = errorColor
	case status.Kind == models.StatusRedirected || status.Kind == models.StatusCached:
		c = redirectColor
	case status.Kind == models.StatusExcluded || status.Kind == models.StatusUnsupported:
		c = mutedColor
	default:
		c = okColor
	}
	fmt.Fprintf(p.w, "%s %s %s\n", c.Sprintf("[%s]", status.String()), resp.URL, mutedColor.Sprintf("(%s)", resp.Source))
}

// summaryDoc is the JSON document shape.
type summaryDoc struct {
	Results []interface{} `json:"results"`
	Stats   *stats.Stats  `json:"stats"`
}

// Finish renders the terminal summary.
func (p *Printer) Finish(s *stats.Stats) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == FormatJSON {
		doc := summaryDoc{Stats: s, Results: make([]interface{}, 0, len(p.responses))}
		for _, resp := range p.responses {
			if p.fields == "" {
				doc.Results = append(doc.Results, resp)
				continue
			}
			doc.Results = append(doc.Results, common.FilterResultFields(resp, p.fields, p.terse))
		}
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%d total", s.Total)
	fmt.Fprintf(p.w, " | %s", okColor.Sprintf("%d OK", s.Successful+s.Redirected))
	if s.Cached > 0 {
		fmt.Fprintf(p.w, " | %s", redirectColor.Sprintf("%d cached", s.Cached))
	}
	fmt.Fprintf(p.w, " | %s", errorColor.Sprintf("%d broken", s.Failed))
	fmt.Fprintf(p.w, " | %s", mutedColor.Sprintf("%d excluded, %d unsupported", s.Excluded, s.Unsupported))
	if s.Timeouts > 0 {
		fmt.Fprintf(p.w, " | %s", errorColor.Sprintf("%d timeouts", s.Timeouts))
	}
	fmt.Fprintf(p.w, " (%.2fs", s.DurationSec)
	if s.Retries > 0 {
		fmt.Fprintf(p.w, ", %d retries", s.Retries)
	}
	fmt.Fprintln(p.w, ")")

	if len(s.Failures) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, errorColor.Sprint("Broken links:"))
		for _, resp := range s.Failures {
			fmt.Fprintf(p.w, "  %s %s %s\n", errorColor.Sprintf("[%s]", resp.Status.String()), resp.URL, mutedColor.Sprintf("(%s)", resp.Source))
		}
	}
	return nil
}
