package settings

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SiteOverrides maps domain patterns to partial records. Insertion order is
// part of the contract: the 100-entry cap keeps the first entries seen, and
// JSON round-trips preserve document order.
type SiteOverrides struct {
	om *orderedmap.OrderedMap[string, *SiteOverride]
}

// NewSiteOverrides returns an empty override map.
func NewSiteOverrides() *SiteOverrides {
	return &SiteOverrides{om: orderedmap.New[string, *SiteOverride]()}
}

// Len returns the number of entries. Safe on nil.
func (s *SiteOverrides) Len() int {
	if s == nil || s.om == nil {
		return 0
	}
	return s.om.Len()
}

// Get returns the override stored for domain.
func (s *SiteOverrides) Get(domain string) (*SiteOverride, bool) {
	if s == nil || s.om == nil {
		return nil, false
	}
	return s.om.Get(domain)
}

// Set stores an override. An existing domain keeps its position in the
// insertion order; a new domain is appended.
func (s *SiteOverrides) Set(domain string, ov *SiteOverride) {
	if s.om == nil {
		s.om = orderedmap.New[string, *SiteOverride]()
	}
	s.om.Set(domain, ov)
}

// Delete removes the entry for domain, reporting whether it existed.
func (s *SiteOverrides) Delete(domain string) bool {
	if s == nil || s.om == nil {
		return false
	}
	_, ok := s.om.Delete(domain)
	return ok
}

// Domains returns the domains in insertion order.
func (s *SiteOverrides) Domains() []string {
	if s.Len() == 0 {
		return nil
	}
	out := make([]string, 0, s.om.Len())
	for pair := s.om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (s *SiteOverrides) Range(fn func(domain string, ov *SiteOverride) bool) {
	if s == nil || s.om == nil {
		return
	}
	for pair := s.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a deep copy preserving insertion order.
func (s *SiteOverrides) Clone() *SiteOverrides {
	c := NewSiteOverrides()
	s.Range(func(domain string, ov *SiteOverride) bool {
		c.Set(domain, ov.Clone())
		return true
	})
	return c
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (s *SiteOverrides) MarshalJSON() ([]byte, error) {
	if s == nil || s.om == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.om)
}

// UnmarshalJSON reads a JSON object, recording keys in document order.
func (s *SiteOverrides) UnmarshalJSON(data []byte) error {
	s.om = orderedmap.New[string, *SiteOverride]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, s.om)
}
