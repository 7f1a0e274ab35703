// Package dom is an in-memory document model implementing the style
// package's ports. It mimics the parts of a real page a controller touches:
// stylesheet scopes, frames with origin rules, shadow roots, structural
// elements and mutation delivery. The preview command and the style tests
// run against it.
package dom

import (
	"sync"

	"github.com/mxnstrexgl/cyberdark/internal/style"
)

// styleArea is the shared stylesheet surface behind every scope. It keeps
// every attached artifact, duplicates included, so callers that skip the
// presence check are observable.
type styleArea struct {
	mu     sync.Mutex
	styles map[style.Kind][]string
	err    error
}

func newStyleArea() styleArea {
	return styleArea{styles: make(map[style.Kind][]string)}
}

// Break makes every subsequent style operation on this scope fail with err.
func (a *styleArea) Break(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *styleArea) InsertStyle(kind style.Kind, css string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.styles[kind] = append(a.styles[kind], css)
	return nil
}

func (a *styleArea) RemoveStyle(kind style.Kind) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	delete(a.styles, kind)
	return nil
}

func (a *styleArea) HasStyle(kind style.Kind) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return false, a.err
	}
	return len(a.styles[kind]) > 0, nil
}

// StyleCount returns how many artifacts of kind are attached. More than one
// means a caller inserted without checking.
func (a *styleArea) StyleCount(kind style.Kind) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.styles[kind])
}

// StyleText returns the text of the most recently attached artifact of
// kind, or the empty string.
func (a *styleArea) StyleText(kind style.Kind) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	attached := a.styles[kind]
	if len(attached) == 0 {
		return ""
	}
	return attached[len(attached)-1]
}

// Frame is an embedded frame. Cross-origin frames refuse every style
// operation with style.ErrCrossOrigin, like a real browser boundary.
type Frame struct {
	styleArea
	crossOrigin bool
}

func (f *Frame) InsertStyle(kind style.Kind, css string) error {
	if f.crossOrigin {
		return style.ErrCrossOrigin
	}
	return f.styleArea.InsertStyle(kind, css)
}

func (f *Frame) RemoveStyle(kind style.Kind) error {
	if f.crossOrigin {
		return style.ErrCrossOrigin
	}
	return f.styleArea.RemoveStyle(kind)
}

func (f *Frame) HasStyle(kind style.Kind) (bool, error) {
	if f.crossOrigin {
		return false, style.ErrCrossOrigin
	}
	return f.styleArea.HasStyle(kind)
}

// CrossOrigin reports whether the frame is inaccessible.
func (f *Frame) CrossOrigin() bool {
	return f.crossOrigin
}

// ShadowRoot is an open shadow root scope.
type ShadowRoot struct {
	styleArea
}

// Document is the in-memory page. Mutators are safe for concurrent use and
// observer callbacks run outside the document lock.
type Document struct {
	styleArea
	hostname    string
	contentType string

	mu        sync.Mutex
	frames    []*Frame
	shadows   []*ShadowRoot
	elements  []*Element
	observers map[int]func([]style.Element)
	nextObs   int
}

var _ style.Document = (*Document)(nil)

// NewDocument creates an empty text/html document for hostname.
func NewDocument(hostname string) *Document {
	return &Document{
		styleArea:   newStyleArea(),
		hostname:    hostname,
		contentType: "text/html",
		observers:   make(map[int]func([]style.Element)),
	}
}

// SetContentType overrides the served MIME type.
func (d *Document) SetContentType(ct string) {
	d.contentType = ct
}

func (d *Document) Hostname() string {
	return d.hostname
}

func (d *Document) ContentType() string {
	return d.contentType
}

// AddFrame embeds a new frame in the document.
func (d *Document) AddFrame(crossOrigin bool) *Frame {
	fr := &Frame{styleArea: newStyleArea(), crossOrigin: crossOrigin}
	d.mu.Lock()
	d.frames = append(d.frames, fr)
	d.mu.Unlock()
	return fr
}

func (d *Document) Frames() []style.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]style.Frame, len(d.frames))
	for i, fr := range d.frames {
		out[i] = fr
	}
	return out
}

// AttachShadowRoot adds an open shadow root to the document.
func (d *Document) AttachShadowRoot() *ShadowRoot {
	root := &ShadowRoot{styleArea: newStyleArea()}
	d.mu.Lock()
	d.shadows = append(d.shadows, root)
	d.mu.Unlock()
	return root
}

func (d *Document) ShadowRoots() []style.Scope {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]style.Scope, len(d.shadows))
	for i, root := range d.shadows {
		out[i] = root
	}
	return out
}

// AddElements appends elements to the document and delivers them to every
// observer as one batch.
func (d *Document) AddElements(els ...*Element) {
	if len(els) == 0 {
		return
	}
	batch := make([]style.Element, len(els))
	for i, el := range els {
		batch[i] = el
	}
	d.mu.Lock()
	d.elements = append(d.elements, els...)
	fns := make([]func([]style.Element), 0, len(d.observers))
	for _, fn := range d.observers {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(batch)
	}
}

func (d *Document) QueryStructural(selectors []string) ([]style.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []style.Element
	for _, el := range d.elements {
		for _, sel := range selectors {
			if el.Matches(sel) {
				out = append(out, el)
				break
			}
		}
	}
	return out, nil
}

func (d *Document) Observe(fn func(added []style.Element)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.observers, id)
	}, nil
}

// ObserverCount reports how many observers are connected.
func (d *Document) ObserverCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}
