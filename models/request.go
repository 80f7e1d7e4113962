package models

import (
	"encoding/json"

	"github.com/dtnitsch/linkcheck/pkg/secret"
	"github.com/dtnitsch/linkcheck/pkg/uri"
)

// RawURI is a candidate link as an extractor found it, with the
// element/attribute it came from so false positives can be filtered.
type RawURI struct {
	Text      string
	Element   string
	Attribute string
}

// Request pairs a checkable URI with its provenance. Two requests that
// differ only in fragment share one network verdict; the fragment is
// verified separately.
type Request struct {
	URI         *uri.URI
	Source      string
	Element     string
	Attribute   string
	Credentials *secret.BasicAuth
}

// NewRequest builds a request from an extracted candidate.
func NewRequest(u *uri.URI, source string, raw RawURI) Request {
	return Request{
		URI:       u,
		Source:    source,
		Element:   raw.Element,
		Attribute: raw.Attribute,
	}
}

// Fingerprint is the cache key: the normalized URI without its
// fragment. The request method is not part of the key.
func (r Request) Fingerprint() string {
	return r.URI.Normalized()
}

// Response is the terminal verdict for a request.
type Response struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Status Status `json:"-"`
	Method string `json:"method,omitempty"`
}

// NewResponse pairs a request with its verdict.
func NewResponse(r Request, status Status, method string) Response {
	return Response{
		Source: r.Source,
		URL:    r.URI.String(),
		Status: status,
		Method: method,
	}
}

type responseJSON struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Status string `json:"status"`
	Code   int    `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
	Method string `json:"method,omitempty"`
}

// MarshalJSON flattens the status variant into stable fields for
// machine consumers.
func (r Response) MarshalJSON() ([]byte, error) {
	out := responseJSON{
		Source: r.Source,
		URL:    r.URL,
		Status: r.Status.Label(),
		Code:   r.Status.Code,
		Detail: r.Status.Detail,
		Method: r.Method,
	}
	if r.Status.Err != "" {
		out.Error = string(r.Status.Err)
	}
	return json.Marshal(out)
}
