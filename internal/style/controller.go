package style

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/store"
)

// State is the controller lifecycle state.
type State string

const (
	// StateInitial is the state before Begin has run.
	StateInitial State = "initial"
	// StateEmergency means the instant dark artifacts are up while the
	// settings record is still loading.
	StateEmergency State = "emergency"
	// StateActive means the full theme is applied.
	StateActive State = "active"
	// StateDisabled means every artifact has been removed.
	StateDisabled State = "disabled"
)

const (
	// DefaultFadeDuration is how long the emergency overlay fades out
	// before removal.
	DefaultFadeDuration = 150 * time.Millisecond
	// DefaultDebounceWindow is how long added-element batches are
	// coalesced before one structural pass runs.
	DefaultDebounceWindow = 200 * time.Millisecond

	pdfContentType = "application/pdf"
)

// StateQuerier answers the cheap is-enabled/is-blacklisted question without
// a full settings read. The background cache implements it.
type StateQuerier interface {
	EnabledState(ctx context.Context, hostname string) (enabled, blacklisted bool, err error)
}

// Options tune a Controller. Zero values fall back to defaults.
type Options struct {
	// Queries, when set, short-circuits evaluation for hosts the theme
	// will not touch. Errors fall back to direct store reads.
	Queries StateQuerier
	// FadeDuration overrides the emergency overlay fade.
	FadeDuration time.Duration
	// DebounceWindow overrides the structural batch window.
	DebounceWindow time.Duration
	// Now overrides the clock used for schedule checks.
	Now func() time.Time
}

// Controller drives the theme lifecycle for one document. It owns every
// artifact it attaches and can always return the document to its original
// state.
type Controller struct {
	doc     Document
	st      store.Store
	queries StateQuerier
	fade    time.Duration
	now     func() time.Time

	mu           sync.Mutex
	state        State
	effective    *settings.Settings
	cssByKind    map[Kind]string
	overridden   map[Element]struct{}
	unsubscribe  func()
	stopObserver func()
	fadeTimer    *time.Timer
	deb          *debouncer
	closed       bool
}

// NewController builds a controller for doc backed by st.
func NewController(doc Document, st store.Store, opts Options) *Controller {
	if opts.FadeDuration <= 0 {
		opts.FadeDuration = DefaultFadeDuration
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		doc:        doc,
		st:         st,
		queries:    opts.Queries,
		fade:       opts.FadeDuration,
		now:        opts.Now,
		state:      StateInitial,
		cssByKind:  make(map[Kind]string),
		overridden: make(map[Element]struct{}),
	}
	c.deb = newDebouncer(opts.DebounceWindow, c.onStructuralBatch)
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin runs the emergency phase, registers the single store listener for
// this document, and evaluates the current settings. Calling it again is a
// no-op apart from re-evaluation.
func (c *Controller) Begin(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("style: controller closed")
	}
	if c.state == StateInitial {
		c.applyEmergencyLocked()
	}
	if c.unsubscribe == nil {
		c.unsubscribe = c.st.Subscribe(func(store.Change) {
			if err := c.Evaluate(context.Background()); err != nil {
				logging.Warn(fmt.Sprintf("Re-evaluation after settings change failed: %v", err))
			}
		})
	}
	c.mu.Unlock()
	return c.Evaluate(ctx)
}

// Evaluate resolves the current record against this document's hostname and
// converges the page to the resulting decision.
func (c *Controller) Evaluate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	host := c.doc.Hostname()

	if c.queries != nil {
		enabled, blacklisted, err := c.queries.EnabledState(ctx, host)
		if err == nil && (!enabled || blacklisted) {
			c.removeAllLocked()
			return nil
		}
		// An affirmative or failed fast path still needs the full record.
	}

	record, err := c.st.Settings(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	enabled, err := c.st.Enabled(ctx)
	if err != nil {
		return fmt.Errorf("read enabled flag: %w", err)
	}

	d := Resolve(record, enabled, host, c.now())
	if d.ShouldApply {
		c.applyLocked(d.Effective)
	} else {
		c.removeAllLocked()
	}
	return nil
}

// Close releases the store listener, the mutation observer and any pending
// timers. Attached artifacts are left for the document to tear down.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	unsub := c.unsubscribe
	c.unsubscribe = nil
	stop := c.stopObserver
	c.stopObserver = nil
	if c.fadeTimer != nil {
		c.fadeTimer.Stop()
		c.fadeTimer = nil
	}
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if stop != nil {
		stop()
	}
	c.deb.stop()
	return nil
}

func isPDF(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), pdfContentType)
}

// applyEmergencyLocked attaches the instant dark artifacts. PDF viewers
// render their own chrome and skip the phase entirely.
func (c *Controller) applyEmergencyLocked() {
	if isPDF(c.doc.ContentType()) {
		return
	}
	c.setStyle(c.doc, KindEmergency, EmergencyCSS(), false)
	c.setStyle(c.doc, KindOverlay, OverlayCSS(c.fade), false)
	c.setStyle(c.doc, KindColorScheme, ColorSchemeCSS(), false)
	c.state = StateEmergency
}

// setStyle attaches css of the given kind, checking first so repeated calls
// never stack duplicates. With refresh set, a present artifact whose text
// went stale is replaced.
func (c *Controller) setStyle(scope Scope, kind Kind, css string, refresh bool) error {
	has, err := scope.HasStyle(kind)
	if err != nil {
		return err
	}
	if has {
		if !refresh {
			return nil
		}
		if err := scope.RemoveStyle(kind); err != nil {
			return err
		}
	}
	return scope.InsertStyle(kind, css)
}

func (c *Controller) removeStyleLogged(scope Scope, kind Kind) {
	if err := scope.RemoveStyle(kind); err != nil && !errors.Is(err, ErrCrossOrigin) {
		logging.Warn(fmt.Sprintf("Failed to remove %s style: %v", kind, err))
	}
}

// applyLocked converges the document to the fully themed state for eff.
func (c *Controller) applyLocked(eff *settings.Settings) {
	prev := c.state
	c.effective = eff

	mainCSS := MainCSS(eff)
	structuralCSS := StructuralCSS(eff)
	iframeCSS := IframeCSS(eff)
	refreshMain := c.cssByKind[KindMain] != mainCSS
	refreshStructural := c.cssByKind[KindStructural] != structuralCSS
	refreshIframe := c.cssByKind[KindIframe] != iframeCSS

	if err := c.setStyle(c.doc, KindMain, mainCSS, refreshMain); err != nil {
		logging.Error(fmt.Sprintf("Failed to attach main stylesheet: %v", err))
	}
	if err := c.setStyle(c.doc, KindStructural, structuralCSS, refreshStructural); err != nil {
		logging.Warn(fmt.Sprintf("Failed to attach structural stylesheet: %v", err))
	}

	// Same-origin frames get the minimal sheet. Cross-origin frames are
	// off limits and not an error.
	for _, fr := range c.doc.Frames() {
		err := c.setStyle(fr, KindIframe, iframeCSS, refreshIframe)
		if err != nil && !errors.Is(err, ErrCrossOrigin) {
			logging.Warn(fmt.Sprintf("Failed to style frame: %v", err))
		}
	}

	// Shadow roots are isolated from document stylesheets and get their
	// own clone of the main sheet.
	for _, root := range c.doc.ShadowRoots() {
		if err := c.setStyle(root, KindMain, mainCSS, refreshMain); err != nil {
			logging.Warn(fmt.Sprintf("Failed to style shadow root: %v", err))
		}
	}

	c.cssByKind[KindMain] = mainCSS
	c.cssByKind[KindStructural] = structuralCSS
	c.cssByKind[KindIframe] = iframeCSS

	els, err := c.doc.QueryStructural(StructuralSelectors)
	if err != nil {
		logging.Warn(fmt.Sprintf("Structural element query failed: %v", err))
	} else {
		c.applyStructuralLocked(eff, els, refreshStructural)
	}

	if c.stopObserver == nil {
		stop, err := c.doc.Observe(func(added []Element) {
			c.deb.add(added)
		})
		if err != nil {
			logging.Warn(fmt.Sprintf("Mutation observer unavailable: %v", err))
		} else {
			c.stopObserver = stop
		}
	}

	if prev == StateEmergency {
		c.removeStyleLogged(c.doc, KindEmergency)
		c.startOverlayFadeLocked()
	}
	c.state = StateActive
}

// startOverlayFadeLocked fades the emergency overlay out and then removes
// it together with the color-scheme hint.
func (c *Controller) startOverlayFadeLocked() {
	if c.fadeTimer != nil {
		return
	}
	c.fadeTimer = time.AfterFunc(c.fade, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.fadeTimer = nil
		if c.closed {
			return
		}
		c.removeStyleLogged(c.doc, KindOverlay)
		c.removeStyleLogged(c.doc, KindColorScheme)
	})
}

// applyStructuralLocked sets inline fixes on structural elements. Elements
// already carrying the tag are skipped unless the palette changed. Failures
// are isolated per element.
func (c *Controller) applyStructuralLocked(eff *settings.Settings, els []Element, refresh bool) {
	props := StructuralProps(eff)
	for _, el := range els {
		if !matchesStructural(el) {
			continue
		}
		if el.Overridden() && !refresh {
			continue
		}
		if err := el.ApplyOverrides(props); err != nil {
			logging.Warn(fmt.Sprintf("Structural override failed: %v", err))
			continue
		}
		c.overridden[el] = struct{}{}
	}
}

func matchesStructural(el Element) bool {
	for _, sel := range StructuralSelectors {
		if el.Matches(sel) {
			return true
		}
	}
	return false
}

// onStructuralBatch handles a debounced batch of added elements.
func (c *Controller) onStructuralBatch(els []Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateActive || c.effective == nil {
		return
	}
	c.applyStructuralLocked(c.effective, els, false)
}

// removeAllLocked returns the document to its unthemed state: every
// artifact kind on every scope, every inline override, the observer and
// any pending fade. Safe to call when nothing is attached.
func (c *Controller) removeAllLocked() {
	if c.fadeTimer != nil {
		c.fadeTimer.Stop()
		c.fadeTimer = nil
	}
	c.deb.reset()

	for _, kind := range []Kind{KindMain, KindStructural, KindEmergency, KindOverlay, KindColorScheme} {
		c.removeStyleLogged(c.doc, kind)
	}
	for _, fr := range c.doc.Frames() {
		c.removeStyleLogged(fr, KindIframe)
	}
	for _, root := range c.doc.ShadowRoots() {
		c.removeStyleLogged(root, KindMain)
	}
	for el := range c.overridden {
		if err := el.ClearOverrides(); err != nil {
			logging.Warn(fmt.Sprintf("Failed to restore element styles: %v", err))
		}
	}
	c.overridden = make(map[Element]struct{})

	if c.stopObserver != nil {
		c.stopObserver()
		c.stopObserver = nil
	}
	c.effective = nil
	c.cssByKind = make(map[Kind]string)
	c.state = StateDisabled
}
