package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed by any pattern. Patterns
// are "*", an exact origin, or a scheme plus "*." wildcard host such as
// "https://*.example.com", which matches subdomains but not the bare domain.
func matchCORSOrigin(origin string, patterns []string) bool {
	o, err := url.Parse(origin)
	if err != nil || o.Host == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "*":
			return true
		case strings.EqualFold(strings.TrimSuffix(p, "/"), origin):
			return true
		case strings.Contains(p, "://*."):
			u, err := url.Parse(strings.Replace(p, "://*.", "://", 1))
			if err != nil || u.Host == "" {
				continue
			}
			if !strings.EqualFold(u.Scheme, o.Scheme) {
				continue
			}
			if strings.HasSuffix(strings.ToLower(o.Host), "."+strings.ToLower(u.Host)) {
				return true
			}
		}
	}
	return false
}
