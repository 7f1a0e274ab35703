// Package style applies the dark theme to documents. A Controller drives a
// Document through its lifecycle: an instant emergency phase while settings
// load, then either the full themed state or a clean removal of everything
// it ever attached. All attached artifacts are tagged by kind so repeated
// passes never duplicate work.
package style

import "errors"

// Kind discriminates the artifacts a controller attaches to a scope.
// At most one artifact of each kind exists per scope.
type Kind string

const (
	// KindMain is the full theme stylesheet for a top-level document or a
	// shadow root clone.
	KindMain Kind = "main"
	// KindIframe is the minimal stylesheet attached to same-origin frames.
	KindIframe Kind = "iframe"
	// KindStructural is the supporting sheet for structural element fixes.
	KindStructural Kind = "structural"
	// KindEmergency is the instant minimal dark sheet used before settings
	// are known.
	KindEmergency Kind = "emergency"
	// KindOverlay is the full-viewport cover that hides the unstyled flash.
	KindOverlay Kind = "overlay"
	// KindColorScheme is the color-scheme hint accompanying the emergency
	// artifacts.
	KindColorScheme Kind = "color-scheme"
)

// ErrCrossOrigin is returned by frame scopes the document is not allowed to
// touch. Controllers skip such frames without logging.
var ErrCrossOrigin = errors.New("cross-origin frame access denied")

// Scope is anything a stylesheet can be attached to: the document itself,
// a same-origin frame document, or a shadow root.
type Scope interface {
	// InsertStyle attaches a style artifact of the given kind. It does not
	// deduplicate; callers check HasStyle first.
	InsertStyle(kind Kind, css string) error
	// RemoveStyle detaches the artifact of the given kind. Removing an
	// absent kind is a no-op.
	RemoveStyle(kind Kind) error
	// HasStyle reports whether an artifact of the given kind is attached.
	HasStyle(kind Kind) (bool, error)
}

// Element is a structural element that can carry inline style overrides.
type Element interface {
	// Matches reports whether the element matches a selector from the
	// structural selector set.
	Matches(selector string) bool
	// Overridden reports whether this controller already tagged the
	// element with inline overrides.
	Overridden() bool
	// ApplyOverrides sets inline style properties, remembering the prior
	// value of each so the exact state can be restored later.
	ApplyOverrides(props map[string]string) error
	// ClearOverrides restores every property touched by ApplyOverrides to
	// its remembered value and drops the tag.
	ClearOverrides() error
}

// Frame is the stylesheet surface of an embedded frame. Scope calls on a
// cross-origin frame fail with ErrCrossOrigin.
type Frame interface {
	Scope
}

// Document is the page surface a Controller works against.
type Document interface {
	Scope

	// Hostname returns the document's lowercase hostname.
	Hostname() string
	// ContentType returns the MIME type the document was served as.
	ContentType() string
	// Frames enumerates embedded frames, including cross-origin ones.
	Frames() []Frame
	// ShadowRoots enumerates the open shadow roots reachable from the
	// document.
	ShadowRoots() []Scope
	// QueryStructural returns the elements currently in the document that
	// match any of the given selectors.
	QueryStructural(selectors []string) ([]Element, error)
	// Observe registers a callback for batches of newly added elements.
	// The returned stop function disconnects the observer.
	Observe(fn func(added []Element)) (stop func(), err error)
}
