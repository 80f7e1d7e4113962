// Package stats folds the response stream into aggregate counts and
// per-input buckets. The aggregator is the only writer; read the
// Stats value after the stream is exhausted.
package stats

import (
	"time"

	"github.com/dtnitsch/linkcheck/models"
)

// Stats is the aggregate over one run.
type Stats struct {
	Total        int `json:"total"`
	Successful   int `json:"successful"`
	Redirected   int `json:"redirected"`
	UnknownCodes int `json:"unknown_codes"`
	Timeouts     int `json:"timeouts"`
	Failed       int `json:"failed"`
	Excluded     int `json:"excluded"`
	Unsupported  int `json:"unsupported"`
	Cached       int `json:"cached"`

	Retries     int           `json:"retries"`
	Duration    time.Duration `json:"duration_ns"`
	DurationSec float64       `json:"duration_seconds"`

	// PerSource buckets every response under the input it came from.
	PerSource map[string][]models.Response `json:"per_source"`

	Failures []models.Response `json:"failures"`
	Excludes []models.Response `json:"excludes"`
}

// New returns an empty Stats value.
func New() *Stats {
	return &Stats{PerSource: make(map[string][]models.Response)}
}

// Record folds one response into the counters.
func (s *Stats) Record(resp models.Response) {
	s.Total++
	switch resp.Status.Kind {
	case models.StatusOk:
		s.Successful++
	case models.StatusRedirected:
		s.Redirected++
	case models.StatusUnknownCode:
		s.UnknownCodes++
	case models.StatusTimeout:
		s.Timeouts++
	case models.StatusError:
		s.Failed++
	case models.StatusExcluded:
		s.Excluded++
	case models.StatusUnsupported:
		s.Unsupported++
	case models.StatusCached:
		s.Cached++
		if !resp.Status.Cache.OK {
			s.Failed++
		}
	}
	if resp.Status.Kind == models.StatusError || resp.Status.Kind == models.StatusTimeout {
		s.Failures = append(s.Failures, resp)
	}
	if resp.Status.Kind == models.StatusExcluded {
		s.Excludes = append(s.Excludes, resp)
	}
	s.PerSource[resp.Source] = append(s.PerSource[resp.Source], resp)
}

// AddRetries bumps the retry counter by n.
func (s *Stats) AddRetries(n int) {
	s.Retries += n
}

// Finish stamps the total wall-clock duration.
func (s *Stats) Finish(started time.Time) {
	s.Duration = time.Since(started)
	s.DurationSec = s.Duration.Seconds()
}

// Broken reports whether any link failed.
func (s *Stats) Broken() bool {
	return s.Failed > 0 || s.Timeouts > 0
}

// Accumulate drains the response channel into a fresh Stats value.
func Accumulate(responses <-chan models.Response) *Stats {
	s := New()
	for resp := range responses {
		s.Record(resp)
	}
	return s
}
