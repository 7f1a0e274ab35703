package settings

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EnvelopeVersion tags signed exports.
const EnvelopeVersion = "1.0"

var (
	// ErrInvalidSignature is returned when a signed envelope's checksum
	// does not match its payload.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrInvalidJSON is returned when an import payload cannot be parsed.
	ErrInvalidJSON = errors.New("invalid JSON")
)

// SignedEnvelope wraps an exported record with a tamper-detection checksum.
type SignedEnvelope struct {
	Version  string          `json:"version"`
	Checksum string          `json:"checksum"`
	Data     json.RawMessage `json:"data"`
}

// checksum is the hex SHA-256 of the compact serialization of data.
func checksum(compactData []byte) string {
	sum := sha256.Sum256(compactData)
	return hex.EncodeToString(sum[:])
}

// Sign wraps the record in a versioned envelope with a content checksum.
func Sign(s *Settings) (*SignedEnvelope, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("serialize settings: %w", err)
	}
	return &SignedEnvelope{
		Version:  EnvelopeVersion,
		Checksum: checksum(data),
		Data:     data,
	}, nil
}

// Verify checks a raw export payload and returns the settings record bytes.
// A payload carrying neither "version" nor "checksum" is a legacy unsigned
// record and passes through unchanged; callers still validate it. A signed
// payload must have a checksum matching the recomputed digest of its data,
// normalized for whitespace, or ErrInvalidSignature is returned.
func Verify(raw []byte) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	_, hasVersion := fields["version"]
	_, hasChecksum := fields["checksum"]
	if !hasVersion && !hasChecksum {
		return json.RawMessage(raw), nil
	}

	var env SignedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if len(env.Data) == 0 {
		return nil, ErrInvalidSignature
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, env.Data); err != nil {
		return nil, ErrInvalidSignature
	}
	if !strings.EqualFold(env.Checksum, checksum(compact.Bytes())) {
		return nil, ErrInvalidSignature
	}
	return env.Data, nil
}

// Export serializes the record as a pretty-printed signed envelope, the
// format written by the export surface.
func Export(s *Settings) ([]byte, error) {
	env, err := Sign(s)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize envelope: %w", err)
	}
	return append(out, '\n'), nil
}

// ExportRaw serializes the record as pretty-printed JSON without an
// envelope, the legacy export shape.
func ExportRaw(s *Settings) ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize settings: %w", err)
	}
	return append(out, '\n'), nil
}

// DecodeImport accepts either export shape, verifies integrity when the
// payload is signed, and returns a fully sanitized record. The error is
// ErrInvalidJSON for parse failures, ErrInvalidSignature for tampered
// envelopes.
func DecodeImport(raw []byte) (*Settings, error) {
	data, err := Verify(raw)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: settings payload is not an object", ErrInvalidJSON)
	}

	// Insertion order of overrides is lost in the generic decode; re-parse
	// the field bytes so the 100-entry cap follows document order.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err == nil {
		if rawOverrides, ok := fields["perSiteOverrides"]; ok {
			record["perSiteOverrides"] = rawOverrides
		}
	}

	return ValidateSettings(record, Defaults()), nil
}
