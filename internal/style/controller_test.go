package style_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mxnstrexgl/cyberdark/internal/dom"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/store"
	"github.com/mxnstrexgl/cyberdark/internal/store/mocks"
	"github.com/mxnstrexgl/cyberdark/internal/style"
)

const (
	testFade     = 15 * time.Millisecond
	testDebounce = 20 * time.Millisecond
	waitFor      = 3 * time.Second
	tick         = 10 * time.Millisecond
)

func openEnabledStore(t *testing.T) *store.FileStore {
	t.Helper()
	st, err := store.OpenFile(context.Background(), filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.SetEnabled(context.Background(), true))
	return st
}

func newController(t *testing.T, doc *dom.Document, st store.Store, opts style.Options) *style.Controller {
	t.Helper()
	if opts.FadeDuration == 0 {
		opts.FadeDuration = testFade
	}
	if opts.DebounceWindow == 0 {
		opts.DebounceWindow = testDebounce
	}
	c := style.NewController(doc, st, opts)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestControllerEmergencyThenActive(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("news.example.com")
	c := newController(t, doc, st, style.Options{})

	require.NoError(t, c.Begin(context.Background()))
	assert.Equal(t, style.StateActive, c.State())

	assert.Equal(t, 1, doc.StyleCount(style.KindMain))
	assert.Equal(t, 1, doc.StyleCount(style.KindStructural))
	assert.Equal(t, 0, doc.StyleCount(style.KindEmergency))

	// The overlay fades first and then disappears with the scheme hint.
	require.Eventually(t, func() bool {
		return doc.StyleCount(style.KindOverlay) == 0 &&
			doc.StyleCount(style.KindColorScheme) == 0
	}, waitFor, tick)
}

func TestControllerPDFSkipsEmergency(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("files.example.com")
	doc.SetContentType("application/pdf")
	c := newController(t, doc, st, style.Options{})

	require.NoError(t, c.Begin(context.Background()))

	assert.Equal(t, style.StateActive, c.State())
	assert.Equal(t, 0, doc.StyleCount(style.KindEmergency))
	assert.Equal(t, 0, doc.StyleCount(style.KindOverlay))
	assert.Equal(t, 1, doc.StyleCount(style.KindMain))
}

func TestControllerApplicationIsIdempotent(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("news.example.com")
	frame := doc.AddFrame(false)
	root := doc.AttachShadowRoot()
	header := dom.NewElement("header").SetInline("background-color", "white")
	doc.AddElements(header)

	c := newController(t, doc, st, style.Options{})
	require.NoError(t, c.Begin(context.Background()))
	require.NoError(t, c.Evaluate(context.Background()))
	require.NoError(t, c.Evaluate(context.Background()))

	assert.Equal(t, 1, doc.StyleCount(style.KindMain))
	assert.Equal(t, 1, doc.StyleCount(style.KindStructural))
	assert.Equal(t, 1, frame.StyleCount(style.KindIframe))
	assert.Equal(t, 1, root.StyleCount(style.KindMain))
	assert.Equal(t, 1, doc.ObserverCount())

	got, ok := header.InlineStyle("background-color")
	require.True(t, ok)
	assert.Equal(t, settings.Defaults().SurfaceColor, got)
}

func TestControllerBlacklistRoundTrip(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("app.blocked.example")
	frame := doc.AddFrame(false)
	header := dom.NewElement("header").SetInline("background-color", "white")
	doc.AddElements(header)

	c := newController(t, doc, st, style.Options{})
	require.NoError(t, c.Begin(context.Background()))
	require.Equal(t, style.StateActive, c.State())
	require.True(t, header.Overridden())

	// Blacklisting the parent domain must strip everything again.
	rec, err := st.Settings(context.Background())
	require.NoError(t, err)
	rec.Blacklist = []string{"blocked.example"}
	require.NoError(t, st.SaveSettings(context.Background(), rec))

	require.Eventually(t, func() bool {
		return c.State() == style.StateDisabled
	}, waitFor, tick)

	assert.Equal(t, 0, doc.StyleCount(style.KindMain))
	assert.Equal(t, 0, doc.StyleCount(style.KindStructural))
	assert.Equal(t, 0, doc.StyleCount(style.KindOverlay))
	assert.Equal(t, 0, frame.StyleCount(style.KindIframe))
	assert.Equal(t, 0, doc.ObserverCount())
	assert.False(t, header.Overridden())
	got, ok := header.InlineStyle("background-color")
	require.True(t, ok)
	assert.Equal(t, "white", got)

	// Unblocking brings the theme back.
	rec.Blacklist = nil
	require.NoError(t, st.SaveSettings(context.Background(), rec))
	require.Eventually(t, func() bool {
		return c.State() == style.StateActive
	}, waitFor, tick)
	assert.Equal(t, 1, doc.StyleCount(style.KindMain))
	assert.Equal(t, 1, doc.ObserverCount())
}

func TestControllerCrossOriginFramesSkipped(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("news.example.com")
	same := doc.AddFrame(false)
	cross := doc.AddFrame(true)

	c := newController(t, doc, st, style.Options{})
	require.NoError(t, c.Begin(context.Background()))

	assert.Equal(t, style.StateActive, c.State())
	assert.Equal(t, 1, same.StyleCount(style.KindIframe))
	assert.Equal(t, 0, cross.StyleCount(style.KindIframe))
}

func TestControllerIsolatesBrokenSubtrees(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("news.example.com")
	broken := doc.AttachShadowRoot()
	broken.Break(errors.New("root detached"))
	healthy := doc.AttachShadowRoot()
	gone := dom.NewElement("header")
	gone.Detach()
	alive := dom.NewElement("thead")
	doc.AddElements(gone, alive)

	c := newController(t, doc, st, style.Options{})
	require.NoError(t, c.Begin(context.Background()))

	assert.Equal(t, style.StateActive, c.State())
	assert.Equal(t, 1, healthy.StyleCount(style.KindMain))
	assert.True(t, alive.Overridden())
	assert.False(t, gone.Overridden())
}

func TestControllerRegistersOneStoreListener(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().Subscribe(gomock.Any()).Return(func() {}).Times(1)
	st.EXPECT().Settings(gomock.Any()).Return(settings.Defaults(), nil).AnyTimes()
	st.EXPECT().Enabled(gomock.Any()).Return(true, nil).AnyTimes()

	doc := dom.NewDocument("news.example.com")
	c := newController(t, doc, st, style.Options{})

	require.NoError(t, c.Begin(context.Background()))
	require.NoError(t, c.Begin(context.Background()))
	assert.Equal(t, 1, doc.ObserverCount())
}

type stubQuerier struct {
	enabled     bool
	blacklisted bool
	err         error
	calls       int
}

func (q *stubQuerier) EnabledState(ctx context.Context, hostname string) (bool, bool, error) {
	q.calls++
	return q.enabled, q.blacklisted, q.err
}

func TestControllerFastPathSkipsSettingsRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().Subscribe(gomock.Any()).Return(func() {}).Times(1)

	q := &stubQuerier{enabled: false}
	doc := dom.NewDocument("news.example.com")
	c := newController(t, doc, st, style.Options{Queries: q})

	require.NoError(t, c.Begin(context.Background()))
	assert.Equal(t, style.StateDisabled, c.State())
	assert.Equal(t, 1, q.calls)
	assert.Equal(t, 0, doc.StyleCount(style.KindMain))
}

func TestControllerFastPathErrorFallsBack(t *testing.T) {
	st := openEnabledStore(t)
	q := &stubQuerier{err: errors.New("daemon unreachable")}
	doc := dom.NewDocument("news.example.com")
	c := newController(t, doc, st, style.Options{Queries: q})

	require.NoError(t, c.Begin(context.Background()))
	assert.Equal(t, style.StateActive, c.State())
	assert.Equal(t, 1, doc.StyleCount(style.KindMain))
}

func TestControllerDebouncesStructuralBatches(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("news.example.com")
	c := newController(t, doc, st, style.Options{})
	require.NoError(t, c.Begin(context.Background()))

	first := dom.NewElement("th")
	second := dom.NewElement("div").AddClass("alert")
	plain := dom.NewElement("div")
	doc.AddElements(first)
	doc.AddElements(second, plain)

	require.Eventually(t, func() bool {
		return first.Overridden() && second.Overridden()
	}, waitFor, tick)
	assert.False(t, plain.Overridden())
}

func TestControllerScheduleGate(t *testing.T) {
	st := openEnabledStore(t)
	rec, err := st.Settings(context.Background())
	require.NoError(t, err)
	rec.Schedule = settings.Schedule{Enabled: true, Start: "20:00", End: "06:00"}
	require.NoError(t, st.SaveSettings(context.Background(), rec))

	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	night := time.Date(2026, 3, 10, 23, 0, 0, 0, time.Local)

	doc := dom.NewDocument("news.example.com")
	now := noon
	c := newController(t, doc, st, style.Options{Now: func() time.Time { return now }})

	require.NoError(t, c.Begin(context.Background()))
	assert.Equal(t, style.StateDisabled, c.State())
	assert.Equal(t, 0, doc.StyleCount(style.KindMain))

	now = night
	require.NoError(t, c.Evaluate(context.Background()))
	assert.Equal(t, style.StateActive, c.State())
	assert.Equal(t, 1, doc.StyleCount(style.KindMain))
}

func TestControllerSettingsChangeRefreshesStyles(t *testing.T) {
	st := openEnabledStore(t)
	doc := dom.NewDocument("news.example.com")
	header := dom.NewElement("header")
	doc.AddElements(header)

	c := newController(t, doc, st, style.Options{})
	require.NoError(t, c.Begin(context.Background()))
	require.Contains(t, doc.StyleText(style.KindMain), settings.Defaults().AccentColor)

	rec, err := st.Settings(context.Background())
	require.NoError(t, err)
	rec.AccentColor = "#ff8800"
	rec.SurfaceColor = "#222233"
	require.NoError(t, st.SaveSettings(context.Background(), rec))

	require.Eventually(t, func() bool {
		return doc.StyleCount(style.KindMain) == 1 &&
			strings.Contains(doc.StyleText(style.KindMain), "#ff8800")
	}, waitFor, tick)

	// Inline fixes follow the palette too.
	require.Eventually(t, func() bool {
		got, ok := header.InlineStyle("background-color")
		return ok && got == "#222233"
	}, waitFor, tick)
}
