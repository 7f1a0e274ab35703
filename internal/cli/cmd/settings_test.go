package cmd

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

func TestColorFieldCanonicalizesCase(t *testing.T) {
	spec := settingsFields["accentColor"]
	record := settings.Defaults()

	canonical, err := spec.set(record, "#ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", canonical)
	assert.Equal(t, "#ABCDEF", record.AccentColor, "raw value goes to the sanitizer untouched")

	stored := settings.ValidateSettings(record, settings.Defaults())
	assert.Equal(t, "#abcdef", spec.get(stored))
}

func TestFloatFieldClampDetection(t *testing.T) {
	spec := settingsFields["fontSize"]
	record := settings.Defaults()

	canonical, err := spec.set(record, "99")
	require.NoError(t, err)
	assert.Equal(t, "99", canonical)

	stored := settings.ValidateSettings(record, settings.Defaults())
	assert.Equal(t, "24", spec.get(stored), "sanitizer clamps to the maximum")

	_, err = spec.set(record, "huge")
	require.Error(t, err)
}

func TestBoolFieldNormalizesForms(t *testing.T) {
	spec := settingsFields["textShadow"]
	record := settings.Defaults()

	canonical, err := spec.set(record, "1")
	require.NoError(t, err)
	assert.Equal(t, "true", canonical)
	assert.True(t, record.TextShadow)

	_, err = spec.set(record, "maybe")
	require.Error(t, err)
}

func TestScheduleFieldsRoundTrip(t *testing.T) {
	record := settings.Defaults()

	canonical, err := settingsFields["schedule.start"].set(record, "21:30")
	require.NoError(t, err)
	assert.Equal(t, "21:30", canonical)

	stored := settings.ValidateSettings(record, settings.Defaults())
	assert.Equal(t, "21:30", settingsFields["schedule.start"].get(stored))

	// An invalid time falls back during sanitization and the mismatch is
	// visible when the field is read back.
	_, err = settingsFields["schedule.end"].set(record, "24:99")
	require.NoError(t, err)
	stored = settings.ValidateSettings(record, settings.Defaults())
	assert.NotEqual(t, "24:99", settingsFields["schedule.end"].get(stored))
}

func TestParseColorBlindMode(t *testing.T) {
	tests := []struct {
		raw  string
		want settings.ColorBlindMode
	}{
		{raw: "true", want: settings.ColorBlindProtanopia},
		{raw: "false", want: settings.ColorBlindNone},
		{raw: "protanopia", want: settings.ColorBlindProtanopia},
		{raw: "DEUTERANOPIA", want: settings.ColorBlindDeuteranopia},
		{raw: " tritanopia ", want: settings.ColorBlindTritanopia},
		{raw: "bogus", want: settings.ColorBlindMode("bogus")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseColorBlindMode(tt.raw), "raw %q", tt.raw)
	}
}

func TestFieldNamesAreSorted(t *testing.T) {
	names := fieldNames()
	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "schedule.start")
	assert.Contains(t, names, "colorBlindMode")
}

func TestOverrideSpecSetGetClear(t *testing.T) {
	spec := overrideFields["backgroundColor"]
	ov := &settings.SiteOverride{}

	canonical, err := spec.set(ov, "#112233")
	require.NoError(t, err)
	assert.Equal(t, "#112233", canonical)
	assert.Equal(t, "#112233", spec.get(ov))
	assert.False(t, ov.IsZero())

	spec.clear(ov)
	assert.Equal(t, "", spec.get(ov))
	assert.True(t, ov.IsZero())
}

func TestOverrideColorBlindModeSpec(t *testing.T) {
	spec := overrideFields["colorBlindMode"]
	ov := &settings.SiteOverride{}

	canonical, err := spec.set(ov, "true")
	require.NoError(t, err)
	assert.Equal(t, "protanopia", canonical)
	assert.Equal(t, "protanopia", spec.get(ov))

	spec.clear(ov)
	assert.True(t, ov.IsZero())
}

func TestContainsDomain(t *testing.T) {
	list := []string{"a.example", "b.example"}
	assert.True(t, containsDomain(list, "a.example"))
	assert.False(t, containsDomain(list, "c.example"))
	assert.False(t, containsDomain(nil, "a.example"))
}
