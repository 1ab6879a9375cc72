package domain

import (
	"net/http"
	"strings"
)

// RedactedValue replaces the values of sensitive headers in log output.
const RedactedValue = "[REDACTED]"

var defaultSensitiveHeaders = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
}

// SensitiveHeaders is an immutable set of header names whose values must
// never be logged. The zero value redacts nothing.
type SensitiveHeaders struct {
	names map[string]struct{}
}

// DefaultSensitiveHeaders returns the set of credential-bearing headers:
// Authorization, Proxy-Authorization, Cookie and Set-Cookie.
func DefaultSensitiveHeaders() SensitiveHeaders {
	return NewSensitiveHeaders(defaultSensitiveHeaders...)
}

// NewSensitiveHeaders builds a set from header names. Matching is
// case-insensitive; blank names are ignored.
func NewSensitiveHeaders(names ...string) SensitiveHeaders {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return SensitiveHeaders{names: set}
}

// With returns a new set containing s plus names. s is left unchanged.
func (s SensitiveHeaders) With(names ...string) SensitiveHeaders {
	all := make([]string, 0, len(s.names)+len(names))
	for n := range s.names {
		all = append(all, n)
	}
	return NewSensitiveHeaders(append(all, names...)...)
}

// Contains reports whether name is sensitive, in any letter casing.
func (s SensitiveHeaders) Contains(name string) bool {
	_, ok := s.names[strings.ToLower(name)]
	return ok
}

// Len returns the number of names in the set.
func (s SensitiveHeaders) Len() int {
	return len(s.names)
}

// Redact returns a deep copy of h in which every sensitive header holds the
// single value RedactedValue. Keys keep their original casing and other
// headers are copied verbatim. h itself is never modified.
func (s SensitiveHeaders) Redact(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := h.Clone()
	for name := range out {
		if s.Contains(name) {
			out[name] = []string{RedactedValue}
		}
	}
	return out
}
