// Package secret wraps sensitive values so they never leak through
// logging or serialization.
package secret

import (
	"fmt"
	"strings"
)

const redacted = "*****"

// String holds a sensitive value. Its String, GoString and MarshalJSON
// implementations all redact the content; use Expose to read it.
type String struct {
	value string
}

// New wraps a raw value.
func New(value string) String {
	return String{value: value}
}

// Expose returns the underlying value.
func (s String) Expose() string {
	return s.value
}

// IsEmpty reports whether no value is set.
func (s String) IsEmpty() bool {
	return s.value == ""
}

func (s String) String() string {
	return redacted
}

func (s String) GoString() string {
	return redacted
}

// MarshalJSON always emits the redaction marker.
func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// UnmarshalYAML accepts a plain scalar from config files.
func (s *String) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	s.value = raw
	return nil
}

// BasicAuth is a username/password pair for HTTP basic auth.
type BasicAuth struct {
	Username string
	Password String
}

// ParseBasicAuth parses "username:password" credentials.
func ParseBasicAuth(raw string) (*BasicAuth, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid basic auth syntax, expected '<username>:<password>'")
	}
	if parts[0] == "" {
		return nil, fmt.Errorf("missing basic auth username")
	}
	if parts[1] == "" {
		return nil, fmt.Errorf("missing basic auth password")
	}
	return &BasicAuth{Username: parts[0], Password: New(parts[1])}, nil
}

func (b *BasicAuth) String() string {
	return b.Username + ":" + redacted
}
