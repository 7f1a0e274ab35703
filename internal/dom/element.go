package dom

import (
	"errors"
	"strings"
	"sync"

	"github.com/mxnstrexgl/cyberdark/internal/style"
)

// ErrDetached is returned when inline styles are touched on an element that
// left the document.
var ErrDetached = errors.New("element detached from document")

// prior remembers an inline property's value before an override, including
// whether the property existed at all.
type prior struct {
	value   string
	present bool
}

// Element is a structural element candidate. Selector support covers the
// forms the structural selector set uses: tag names, single classes and
// attribute equality.
type Element struct {
	mu        sync.Mutex
	tag       string
	classes   map[string]struct{}
	attrs     map[string]string
	inline    map[string]string
	originals map[string]prior
	tagged    bool
	detached  bool
}

var _ style.Element = (*Element)(nil)

// NewElement creates an element with the given tag name.
func NewElement(tag string) *Element {
	return &Element{
		tag:       strings.ToLower(tag),
		classes:   make(map[string]struct{}),
		attrs:     make(map[string]string),
		inline:    make(map[string]string),
		originals: make(map[string]prior),
	}
}

// AddClass adds a class name and returns the element for chaining.
func (e *Element) AddClass(name string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes[name] = struct{}{}
	return e
}

// SetAttr sets an attribute and returns the element for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
	return e
}

// SetInline sets an author inline style, as if written in the page markup,
// and returns the element for chaining.
func (e *Element) SetInline(prop, value string) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inline[prop] = value
	return e
}

// Detach makes further override operations fail, like an element removed
// from the document mid-pass.
func (e *Element) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
}

func (e *Element) Matches(selector string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	sel := strings.TrimSpace(selector)
	switch {
	case strings.HasPrefix(sel, "."):
		_, ok := e.classes[sel[1:]]
		return ok
	case strings.HasPrefix(sel, "[") && strings.HasSuffix(sel, "]"):
		name, want, hasValue := strings.Cut(sel[1:len(sel)-1], "=")
		got, ok := e.attrs[strings.TrimSpace(name)]
		if !ok {
			return false
		}
		if !hasValue {
			return true
		}
		return got == strings.Trim(strings.TrimSpace(want), `"'`)
	default:
		return e.tag == strings.ToLower(sel)
	}
}

func (e *Element) Overridden() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tagged
}

func (e *Element) ApplyOverrides(props map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		return ErrDetached
	}
	for prop, value := range props {
		if _, seen := e.originals[prop]; !seen {
			old, present := e.inline[prop]
			e.originals[prop] = prior{value: old, present: present}
		}
		e.inline[prop] = value
	}
	e.tagged = true
	return nil
}

func (e *Element) ClearOverrides() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached {
		return ErrDetached
	}
	for prop, pr := range e.originals {
		if pr.present {
			e.inline[prop] = pr.value
		} else {
			delete(e.inline, prop)
		}
	}
	e.originals = make(map[string]prior)
	e.tagged = false
	return nil
}

// InlineStyle returns an inline property's current value and whether it is
// set.
func (e *Element) InlineStyle(prop string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	value, ok := e.inline[prop]
	return value, ok
}
