// Package cookies builds the shared cookie jar and persists it in
// Netscape cookies.txt format between runs.
package cookies

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Jar wraps a cookiejar.Jar with load/save against a file path.
type Jar struct {
	*cookiejar.Jar
	path string
}

// New builds a jar. When path is non-empty an existing cookie file is
// loaded into it.
func New(path string) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	jar := &Jar{Jar: inner, path: path}
	if path != "" {
		if err := jar.load(); err != nil {
			return nil, err
		}
	}
	return jar, nil
}

// load reads a Netscape-format cookie file: seven tab-separated
// columns, '#' comments, blank lines ignored.
func (j *Jar) load() error {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}
		domain := strings.TrimPrefix(fields[0], ".")
		secure := strings.EqualFold(fields[3], "TRUE")
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			continue
		}
		cookie := &http.Cookie{
			Name:   fields[5],
			Value:  fields[6],
			Path:   fields[2],
			Domain: domain,
			Secure: secure,
		}
		// An expiry of 0 marks a session cookie.
		if expiry > 0 {
			cookie.Expires = time.Unix(expiry, 0)
		}
		scheme := "http"
		if secure {
			scheme = "https"
		}
		site := &url.URL{Scheme: scheme, Host: domain, Path: cookie.Path}
		j.SetCookies(site, []*http.Cookie{cookie})
	}
	return scanner.Err()
}

// Save writes the cookies observed for the given sites back to the
// cookie file. cookiejar does not expose iteration, so the caller
// passes the hosts it talked to.
func (j *Jar) Save(sites []*url.URL) error {
	if j.path == "" {
		return nil
	}
	f, err := os.Create(j.path)
	if err != nil {
		return fmt.Errorf("failed to create cookie file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# Netscape HTTP Cookie File")
	seen := make(map[string]bool)
	for _, site := range sites {
		for _, cookie := range j.Cookies(site) {
			key := site.Hostname() + "\x00" + cookie.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			secure := "FALSE"
			if site.Scheme == "https" {
				secure = "TRUE"
			}
			expiry := int64(0)
			if !cookie.Expires.IsZero() {
				expiry = cookie.Expires.Unix()
			}
			fmt.Fprintf(w, "%s\tTRUE\t/\t%s\t%d\t%s\t%s\n",
				site.Hostname(), secure, expiry, cookie.Name, cookie.Value)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	return nil
}
