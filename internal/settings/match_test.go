package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostMatches(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		pattern  string
		want     bool
	}{
		{name: "exact match", hostname: "example.com", pattern: "example.com", want: true},
		{name: "subdomain matches parent", hostname: "a.b.example.com", pattern: "example.com", want: true},
		{name: "direct subdomain", hostname: "news.example.com", pattern: "example.com", want: true},
		{name: "suffix without dot does not match", hostname: "notexample.com", pattern: "example.com", want: false},
		{name: "parent does not match subdomain pattern", hostname: "example.com", pattern: "news.example.com", want: false},
		{name: "unrelated", hostname: "other.org", pattern: "example.com", want: false},
		{name: "case insensitive", hostname: "News.Example.COM", pattern: "example.com", want: true},
		{name: "localhost exact", hostname: "localhost", pattern: "localhost", want: true},
		{name: "empty hostname", hostname: "", pattern: "example.com", want: false},
		{name: "empty pattern", hostname: "example.com", pattern: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HostMatches(tt.hostname, tt.pattern))
		})
	}
}

func TestMatchesAny(t *testing.T) {
	patterns := []string{"blocked.com", "cdn.example.org"}

	assert.True(t, MatchesAny("sub.blocked.com", patterns))
	assert.True(t, MatchesAny("cdn.example.org", patterns))
	assert.False(t, MatchesAny("example.org", patterns))
	assert.False(t, MatchesAny("fine.net", nil))
}

func TestOverrideFor_UsesHostMatching(t *testing.T) {
	s := Defaults()
	size := 13.0
	s.PerSiteOverrides.Set("example.com", &SiteOverride{FontSize: &size})

	ov := s.OverrideFor("docs.example.com")
	assert.NotNil(t, ov)

	assert.Nil(t, s.OverrideFor("notexample.com"))
}
