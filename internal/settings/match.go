package settings

import "strings"

// HostMatches reports whether hostname falls under pattern: either exact
// equality or hostname being a subdomain of pattern ("a.b.com" matches
// "b.com" through the ".b.com" suffix). Every blacklist and override lookup
// in the system goes through this one function.
func HostMatches(hostname, pattern string) bool {
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if hostname == "" || pattern == "" {
		return false
	}
	if hostname == pattern {
		return true
	}
	return strings.HasSuffix(hostname, "."+pattern)
}

// MatchesAny reports whether hostname matches any pattern in patterns.
func MatchesAny(hostname string, patterns []string) bool {
	for _, p := range patterns {
		if HostMatches(hostname, p) {
			return true
		}
	}
	return false
}
