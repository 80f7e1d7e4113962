// Package checker verifies requests. The client dispatches on a
// closed capability set (website, file, mail), applying the filter,
// the response cache, per-host concurrency permits, retries with
// backoff, and optional fragment verification.
package checker

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/dtnitsch/linkcheck/models"
	"github.com/dtnitsch/linkcheck/pkg/cache"
	"github.com/dtnitsch/linkcheck/pkg/cookies"
	"github.com/dtnitsch/linkcheck/pkg/filter"
	"github.com/dtnitsch/linkcheck/pkg/fragment"
	"github.com/dtnitsch/linkcheck/pkg/governor"
	"github.com/dtnitsch/linkcheck/pkg/quirks"
	"github.com/dtnitsch/linkcheck/pkg/secret"
)

var errTooManyRedirects = &redirectError{}

type redirectError struct{}

func (e *redirectError) Error() string { return "too many redirects" }

// Client is the capability-dispatching verifier. Build it once per
// run with New; all methods are safe for concurrent use.
type Client struct {
	cfg      *models.Config
	http     *http.Client
	filter   *filter.Filter
	cache    *cache.Cache
	governor *governor.Governor
	quirks   *quirks.Registry
	jar      *cookies.Jar
	logger   *slog.Logger

	accepted    map[int]bool
	basicAuth   *secret.BasicAuth
	githubToken secret.String

	retries atomic.Int64

	mu        sync.Mutex
	fragments map[string]*fragment.Index
	hosts     []*url.URL // sites contacted, for cookie persistence
	hostSeen  map[string]bool
}

// New assembles a client from the configuration. The filter, cache
// and governor are owned by the client and addressed by handle; there
// are no process-wide singletons.
func New(cfg *models.Config, f *filter.Filter, responseCache *cache.Cache, logger *slog.Logger) (*Client, error) {
	jar, err := cookies.New(cfg.CookieJarPath)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		filter:    f,
		cache:     responseCache,
		governor:  governor.New(cfg.MaxConcurrency, cfg.MaxConcurrencyPerHost, 0),
		quirks:    quirks.NewRegistry(),
		jar:       jar,
		logger:    logger,
		accepted:  cfg.AcceptedCodes(),
		fragments: make(map[string]*fragment.Index),
		hostSeen:  make(map[string]bool),
	}

	if cfg.BasicAuth != "" {
		auth, err := secret.ParseBasicAuth(cfg.BasicAuth)
		if err != nil {
			return nil, err
		}
		c.basicAuth = auth
	}
	c.githubToken = secret.New(cfg.GithubToken)

	// Content negotiation rides on the transport so bodies arrive
	// decoded for fragment indexing; an empty accept_encoding set
	// turns compression off entirely.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableCompression = len(cfg.AcceptEncoding) == 0

	c.http = &http.Client{
		Transport: transport,
		Jar:       jar.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > cfg.MaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
	return c, nil
}

// Retries returns the total number of retry attempts performed.
func (c *Client) Retries() int {
	return int(c.retries.Load())
}

// SaveCookies persists the jar for the hosts contacted this run.
func (c *Client) SaveCookies() error {
	c.mu.Lock()
	sites := make([]*url.URL, len(c.hosts))
	copy(sites, c.hosts)
	c.mu.Unlock()
	return c.jar.Save(sites)
}

// HTTPClient exposes the underlying transport so the collector can
// fetch remote inputs with the same redirect and cookie behaviour.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Check verifies one request and returns its terminal response.
// Per-request errors are never fatal; they are folded into the
// status. The context carries the global cancellation signal.
func (c *Client) Check(ctx context.Context, req models.Request) models.Response {
	// 1. Filter: excluded requests produce no I/O.
	if c.filter.Decide(req.URI) == filter.Exclude {
		return models.NewResponse(req, models.Excluded(), "")
	}

	// 2. Cache: a fresh hit is terminal without network I/O. A request
	// whose fragment is to be verified skips the lookup: the cache holds
	// the page's verdict, not the fragment's.
	key := req.Fingerprint()
	verifyFragment := c.cfg.IncludeFragments && req.URI.HasFragment()
	if c.cfg.Cache && !verifyFragment {
		if entry, ok := c.cache.Get(key, c.cfg.MaxCacheAge, c.cfg.MaxCacheAgeError); ok {
			return models.NewResponse(req, models.Cached(entry.Status), "")
		}
	}

	// 3. Dispatch by scheme.
	var status models.Status
	var method string
	switch {
	case req.URI.IsWebsite():
		status, method = c.checkWebsite(ctx, req)
	case req.URI.IsFile():
		status = c.checkFile(req)
	case req.URI.IsMail():
		status = c.checkMail(ctx, req)
	default:
		status = models.Unsupported(req.URI.Scheme())
	}

	// 4. Record the terminal verdict; first writer wins. A missing
	// fragment concerns this request only and is not stored under the
	// fragment-free key.
	if c.cfg.Cache && isCacheable(status) && status.Err != models.ErrFragmentMissing {
		c.cache.Put(key, status.AsCache())
	}
	return models.NewResponse(req, status, method)
}

// isCacheable keeps non-verdicts out of the persistent cache:
// exclusions and unsupported schemes are policy, not observations,
// and cached hits must not re-enter with a fresh timestamp.
func isCacheable(status models.Status) bool {
	switch status.Kind {
	case models.StatusExcluded, models.StatusUnsupported, models.StatusCached:
		return false
	case models.StatusError:
		return status.Err != models.ErrCancelled
	}
	return true
}

// rememberHost records a contacted site for cookie persistence.
func (c *Client) rememberHost(u *url.URL) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := u.Scheme + "://" + u.Host
	if c.hostSeen[key] {
		return
	}
	c.hostSeen[key] = true
	c.hosts = append(c.hosts, &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"})
}

// fragmentIndex memoises the anchor set per fetched URL.
func (c *Client) fragmentIndex(key string, build func() *fragment.Index) *fragment.Index {
	c.mu.Lock()
	if idx, ok := c.fragments[key]; ok {
		c.mu.Unlock()
		return idx
	}
	c.mu.Unlock()

	idx := build()

	c.mu.Lock()
	if existing, ok := c.fragments[key]; ok {
		idx = existing
	} else {
		c.fragments[key] = idx
	}
	c.mu.Unlock()
	return idx
}

// statusFromContext maps a context failure to its verdict: deadline
// exceeded is a timeout, explicit cancellation is surfaced as such.
func statusFromContext(ctx context.Context) models.Status {
	if ctx.Err() == context.DeadlineExceeded {
		return models.Timeout(0)
	}
	return models.ErrorStatus(models.ErrCancelled, "check cancelled")
}

// requestTimeout bounds a single request's whole state machine,
// retries included.
func (c *Client) requestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}
