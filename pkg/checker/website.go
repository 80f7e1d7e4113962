package checker

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dtnitsch/linkcheck/models"
	"github.com/dtnitsch/linkcheck/pkg/fragment"
)

// bodyReadLimit caps how much of a response body is read for
// fragment indexing.
const bodyReadLimit = 8 << 20

// retryableCodes are server codes worth another attempt.
var retryableCodes = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// attemptResult carries one attempt's outcome through the retry loop.
type attemptResult struct {
	status     models.Status
	retryable  bool
	retryAfter time.Duration
	body       []byte
	bodyType   models.FileType
}

// checkWebsite runs the website path: governor permit, method mode,
// redirect policy, retries with exponential backoff, and the optional
// fragment check. The host permit is held across backoff sleeps.
func (c *Client) checkWebsite(ctx context.Context, req models.Request) (models.Status, string) {
	ctx, cancel := c.requestTimeout(ctx)
	defer cancel()

	permit, err := c.governor.Acquire(ctx, req.URI.Host())
	if err != nil {
		return statusFromContext(ctx), ""
	}
	defer permit.Release()

	method := http.MethodGet
	if c.cfg.Method == models.MethodHead || c.cfg.Method == models.MethodHeadThenGet {
		method = http.MethodHead
	}

	wantBody := c.cfg.IncludeFragments && req.URI.HasFragment()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryWaitTime
	bo.MaxInterval = c.cfg.RetryWaitTimeMax
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.Reset()

	var result attemptResult
	for attempt := 0; ; attempt++ {
		result = c.attempt(ctx, req, method, wantBody)

		// HEAD-then-GET: servers that reject HEAD get one immediate
		// GET upgrade that does not consume the retry budget.
		if method == http.MethodHead && c.cfg.Method == models.MethodHeadThenGet && headRejected(result.status) {
			method = http.MethodGet
			result = c.attempt(ctx, req, method, wantBody)
		}

		if !result.retryable || attempt >= c.cfg.MaxRetries {
			break
		}

		wait := bo.NextBackOff()
		if result.retryAfter > 0 {
			wait = result.retryAfter
		}
		if wait > c.cfg.RetryWaitTimeMax {
			wait = c.cfg.RetryWaitTimeMax
		}
		select {
		case <-ctx.Done():
			return statusFromContext(ctx), method
		case <-time.After(wait):
		}
		c.retries.Add(1)
	}

	status := result.status
	if wantBody && status.IsSuccess() {
		status = c.verifyFragment(ctx, req, method, status, result)
	}
	return status, method
}

// headRejected reports whether the server refused the HEAD probe in a
// way a GET might survive.
func headRejected(status models.Status) bool {
	if status.Kind != models.StatusError || status.Err != models.ErrHTTPStatus {
		return false
	}
	switch status.Code {
	case http.StatusMethodNotAllowed, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// attempt issues a single request and classifies the outcome.
func (c *Client) attempt(ctx context.Context, req models.Request, method string, wantBody bool) attemptResult {
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URI.WithoutFragment().String(), nil)
	if err != nil {
		return attemptResult{status: models.ErrorStatus(models.ErrInvalidURL, err.Error())}
	}
	c.prepare(httpReq, req)

	issued := httpReq.URL.String()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return attemptResult{status: classifyNetworkError(ctx, err), retryable: isTransient(err)}
	}
	defer resp.Body.Close()

	c.rememberHost(resp.Request.URL)

	result := attemptResult{}
	if wantBody && method == http.MethodGet {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, bodyReadLimit))
		if readErr == nil {
			result.body = body
			result.bodyType = bodyFileType(resp.Header.Get("Content-Type"))
		}
	} else {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	}

	code := resp.StatusCode
	redirected := resp.Request.URL.String() != issued

	switch {
	case c.isAccepted(code):
		if redirected {
			result.status = models.Redirected(code)
		} else {
			result.status = models.Ok(code)
		}
	case retryableCodes[code]:
		result.status = models.HTTPError(code)
		result.retryable = true
		result.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	case code < 200 || code >= 600:
		result.status = models.UnknownCode(code)
	default:
		result.status = models.HTTPError(code)
	}
	return result
}

// prepare applies headers, credentials, and quirks to an outgoing
// request.
func (c *Client) prepare(httpReq *http.Request, req models.Request) {
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	for name, value := range c.cfg.Headers {
		httpReq.Header.Set(name, value)
	}
	auth := c.basicAuth
	if req.Credentials != nil {
		auth = req.Credentials
	}
	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password.Expose())
	}
	if !c.githubToken.IsEmpty() && isGithubHost(httpReq.URL.Hostname()) {
		httpReq.Header.Set("Authorization", "token "+c.githubToken.Expose())
	}
	c.quirks.Apply(httpReq)
}

func isGithubHost(host string) bool {
	host = strings.ToLower(host)
	return host == "github.com" || host == "api.github.com" ||
		strings.HasSuffix(host, ".github.com") || host == "raw.githubusercontent.com"
}

// isAccepted applies the accepted-status set; an empty set means the
// 2xx class.
func (c *Client) isAccepted(code int) bool {
	if len(c.accepted) > 0 {
		return c.accepted[code]
	}
	return code >= 200 && code < 300
}

// classifyNetworkError folds transport failures into the verdict
// taxonomy.
func classifyNetworkError(ctx context.Context, err error) models.Status {
	if ctx.Err() != nil {
		return statusFromContext(ctx)
	}
	if errors.Is(err, errTooManyRedirects) {
		return models.ErrorStatus(models.ErrTooManyRedirects, "redirect budget exhausted")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.Timeout(0)
	}
	return models.ErrorStatus(models.ErrNetwork, err.Error())
}

// isTransient reports whether a transport failure is worth retrying:
// timeouts and connection-level resets, not redirect or TLS policy
// failures.
func isTransient(err error) bool {
	if errors.Is(err, errTooManyRedirects) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "read"
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(header); err == nil {
		if wait := time.Until(when); wait > 0 {
			return wait
		}
	}
	return 0
}

// bodyFileType maps a Content-Type header onto the extractor types
// the fragment index understands.
func bodyFileType(contentType string) models.FileType {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		return models.FileTypeHTML
	case strings.Contains(contentType, "text/markdown"):
		return models.FileTypeMarkdown
	}
	return models.FileTypeUnknown
}

// verifyFragment downgrades a success to FragmentMissing when the
// fragment cannot be found in the final body. It never upgrades a
// failure. Anchors are indexed once per URL and reused across
// requests that differ only in fragment.
func (c *Client) verifyFragment(ctx context.Context, req models.Request, method string, status models.Status, result attemptResult) models.Status {
	frag := req.URI.Fragment()
	if frag == "" {
		return status
	}

	body, bodyType := result.body, result.bodyType
	if method != http.MethodGet || body == nil {
		body, bodyType = c.fetchBody(ctx, req)
	}
	if bodyType == models.FileTypeUnknown {
		// Nothing to index against; leave the verdict alone.
		return status
	}

	idx := c.fragmentIndex(req.Fingerprint(), func() *fragment.Index {
		return fragment.New(bodyType, body)
	})
	if idx.Contains(frag) {
		return status
	}
	return models.ErrorStatus(models.ErrFragmentMissing, frag)
}

// fetchBody re-issues a GET purely to obtain the document for anchor
// indexing, e.g. after a HEAD probe.
func (c *Client) fetchBody(ctx context.Context, req models.Request) ([]byte, models.FileType) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URI.WithoutFragment().String(), nil)
	if err != nil {
		return nil, models.FileTypeUnknown
	}
	c.prepare(httpReq, req)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, models.FileTypeUnknown
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, bodyReadLimit))
	if err != nil {
		return nil, models.FileTypeUnknown
	}
	return body, bodyFileType(resp.Header.Get("Content-Type"))
}
