// Package filter decides whether a URI is checked or excluded,
// from compiled include/exclude rules and host policies.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dtnitsch/linkcheck/pkg/uri"
)

// Verdict is the filter decision.
type Verdict int

const (
	Accept Verdict = iota
	Exclude
)

// Options carries the policy switches from the configuration.
type Options struct {
	Include          []string
	Exclude          []string
	Schemes          []string
	ExcludePrivate   bool
	ExcludeLinkLocal bool
	ExcludeLoopback  bool
	ExcludeMail      bool
	ExcludeFile      bool
	ExcludePath      []string
}

// Filter holds the compiled rule sets. Build once, share across
// workers; all methods are safe for concurrent use.
type Filter struct {
	include     []*regexp.Regexp
	exclude     []*regexp.Regexp
	schemes     map[string]bool
	excludePath []string
	opts        Options
}

// New compiles the rule sets. Invalid regexes are a configuration
// error.
func New(opts Options) (*Filter, error) {
	f := &Filter{
		schemes:     make(map[string]bool, len(opts.Schemes)),
		excludePath: opts.ExcludePath,
		opts:        opts,
	}
	for _, pattern := range opts.Include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid include pattern %q: %w", pattern, err)
		}
		f.include = append(f.include, re)
	}
	for _, pattern := range opts.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("config: invalid exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, re)
	}
	for _, scheme := range opts.Schemes {
		f.schemes[strings.ToLower(scheme)] = true
	}
	return f, nil
}

// Decide applies the rules in short-circuit order; ties favour
// exclusion.
func (f *Filter) Decide(u *uri.URI) Verdict {
	if len(f.schemes) > 0 && !f.schemes[u.Scheme()] {
		return Exclude
	}
	if u.IsMail() && f.opts.ExcludeMail {
		return Exclude
	}
	if u.IsFile() {
		if f.opts.ExcludeFile {
			return Exclude
		}
		for _, prefix := range f.excludePath {
			if strings.HasPrefix(u.Path(), prefix) {
				return Exclude
			}
		}
	}
	if f.opts.ExcludePrivate && u.IsPrivate() {
		return Exclude
	}
	if f.opts.ExcludeLinkLocal && u.IsLinkLocal() {
		return Exclude
	}
	if f.opts.ExcludeLoopback && u.IsLoopback() {
		return Exclude
	}
	if u.IsExampleDomain() {
		return Exclude
	}
	text := u.String()
	if len(f.include) > 0 && !anyMatch(f.include, text) {
		return Exclude
	}
	if anyMatch(f.exclude, text) {
		return Exclude
	}
	return Accept
}

func anyMatch(rules []*regexp.Regexp, text string) bool {
	for _, re := range rules {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
