package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	record := Defaults()
	record.AccentColor = "#ff8800"
	record.Blacklist = []string{"tracker.example.com"}
	size := 14.0
	record.PerSiteOverrides.Set("docs.example.com", &SiteOverride{FontSize: &size})

	exported, err := Export(record)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(exported, []byte("{\n")), "export is pretty-printed")

	got, err := DecodeImport(exported)
	require.NoError(t, err)

	want, err := json.Marshal(record)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(gotJSON))
}

func TestVerify_TamperedDataFails(t *testing.T) {
	record := Defaults()
	record.AccentColor = "#4ade80"
	exported, err := Export(record)
	require.NoError(t, err)

	tampered := bytes.Replace(exported, []byte("#4ade80"), []byte("#4ade81"), 1)
	require.NotEqual(t, exported, tampered)

	_, err = Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = DecodeImport(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_ChecksumMismatchNeverReturnsData(t *testing.T) {
	env := SignedEnvelope{
		Version:  EnvelopeVersion,
		Checksum: "0000000000000000000000000000000000000000000000000000000000000000",
		Data:     json.RawMessage(`{"fontSize":16}`),
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	data, err := Verify(raw)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_LegacyUnsignedPassesThrough(t *testing.T) {
	legacy := []byte(`{"fontSize": 18, "backgroundColor": "#101010"}`)

	data, err := Verify(legacy)
	require.NoError(t, err)
	assert.JSONEq(t, string(legacy), string(data))
}

func TestVerify_WhitespaceReformattingStillVerifies(t *testing.T) {
	record := Defaults()
	env, err := Sign(record)
	require.NoError(t, err)

	// Simulate a round trip through an editor that re-indents the file.
	pretty, err := json.MarshalIndent(env, "", "    ")
	require.NoError(t, err)

	_, err = Verify(pretty)
	assert.NoError(t, err)
}

func TestVerify_EnvelopeMissingChecksumFails(t *testing.T) {
	raw := []byte(`{"version": "1.0", "data": {"fontSize": 16}}`)
	_, err := Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestDecodeImport_InvalidJSON(t *testing.T) {
	_, err := DecodeImport([]byte(`{"fontSize": `))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = DecodeImport([]byte(`[1, 2, 3]`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestDecodeImport_LegacyRecordIsSanitized(t *testing.T) {
	legacy := []byte(`{"fontSize": 99, "backgroundColor": "#123456", "colorBlindMode": true}`)

	got, err := DecodeImport(legacy)
	require.NoError(t, err)
	assert.Equal(t, FontSizeMax, got.FontSize)
	assert.Equal(t, "#123456", got.BackgroundColor)
	assert.Equal(t, ColorBlindProtanopia, got.ColorBlindMode)
}

func TestDecodeImport_OverrideOrderFollowsDocument(t *testing.T) {
	var sb bytes.Buffer
	sb.WriteString(`{"perSiteOverrides":{`)
	for i := 0; i < 110; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"entry%03d.example.com":{"fontSize":14}`, i)
	}
	sb.WriteString(`}}`)

	got, err := DecodeImport(sb.Bytes())
	require.NoError(t, err)
	require.Equal(t, MaxSiteOverrides, got.PerSiteOverrides.Len())
	domains := got.PerSiteOverrides.Domains()
	assert.Equal(t, "entry000.example.com", domains[0])
	assert.Equal(t, "entry099.example.com", domains[99])
}
