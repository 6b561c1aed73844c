// Package redact hides credentials in registry and repository URLs before
// they reach logs or error messages.
package redact

import (
	"net/url"
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces redacted content.
const RedactedPlaceholder = "[REDACTED]"

// Redactor redacts credentials with configurable options.
type Redactor struct {
	placeholder   string
	sensitiveKeys []string
	patterns      []*regexp.Regexp
}

// Option configures the redactor.
type Option func(*Redactor)

// WithPlaceholder sets a custom placeholder string.
func WithPlaceholder(placeholder string) Option {
	return func(r *Redactor) {
		r.placeholder = placeholder
	}
}

// WithSensitiveKeys adds query parameter names whose values are redacted.
func WithSensitiveKeys(keys ...string) Option {
	return func(r *Redactor) {
		for _, k := range keys {
			r.sensitiveKeys = append(r.sensitiveKeys, strings.ToLower(k))
		}
	}
}

// WithPatterns adds regex patterns for free-text redaction.
func WithPatterns(patterns ...*regexp.Regexp) Option {
	return func(r *Redactor) {
		r.patterns = append(r.patterns, patterns...)
	}
}

// New creates a Redactor.
func New(opts ...Option) *Redactor {
	r := &Redactor{
		placeholder:   RedactedPlaceholder,
		sensitiveKeys: []string{"token", "key", "secret", "password", "passwd", "auth", "signature", "sig"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_.~+/=-]{8,}`),
			regexp.MustCompile(`(?i)basic\s+[A-Za-z0-9+/=]{8,}`),
			regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RedactURL hides the password in userinfo and the values of sensitive
// query parameters. Unparseable input falls back to RedactString.
func (r *Redactor) RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return r.RedactString(raw)
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}

	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for k := range q {
			if r.isSensitiveKey(k) {
				q.Set(k, "xxxxx")
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	return strings.ReplaceAll(u.String(), "xxxxx", r.placeholder)
}

// RedactString replaces pattern matches in free text.
func (r *Redactor) RedactString(input string) string {
	out := input
	for _, p := range r.patterns {
		out = p.ReplaceAllString(out, r.placeholder)
	}
	return out
}

// RedactHeader returns the placeholder for credential-bearing headers
// and the value unchanged otherwise.
func (r *Redactor) RedactHeader(name, value string) string {
	switch strings.ToLower(name) {
	case "authorization", "proxy-authorization", "cookie", "x-api-key":
		if value == "" {
			return ""
		}
		return r.placeholder
	}
	return value
}

func (r *Redactor) isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, word := range r.sensitiveKeys {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// Default is a pre-configured redactor.
var Default = New()

// URL redacts raw with the default redactor.
func URL(raw string) string {
	return Default.RedactURL(raw)
}
