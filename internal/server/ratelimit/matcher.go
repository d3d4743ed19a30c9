package ratelimit

import (
	"strings"
)

// Match returns the rule governing method and path, or nil when only the
// default limit applies. Exact paths win over prefixes; among prefixes the
// longest wins.
func Match(method, path string, rules []Rule) *Rule {
	var best *Rule
	for i := range rules {
		r := &rules[i]
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return r
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			if best == nil || len(r.Path) > len(best.Path) {
				best = r
			}
		}
	}
	return best
}
