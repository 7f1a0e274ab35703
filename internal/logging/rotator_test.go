package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatorRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	r := &Rotator{dir: dir, maxSize: 64, maxBackups: 2}
	require.NoError(t, r.open())
	defer func() { _ = r.Close() }()

	line := []byte(strings.Repeat("x", 48) + "\n")
	_, err := r.Write(line)
	require.NoError(t, err)
	_, err = r.Write(line)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	backups := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), logFileName+".") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Equal(t, line, data, "active file holds only the latest write")
}

func TestRotatorCompressesBackups(t *testing.T) {
	dir := t.TempDir()
	r := &Rotator{dir: dir, maxSize: 16, compress: true}
	require.NoError(t, r.open())
	defer func() { _ = r.Close() }()

	_, err := r.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	_, err = r.Write([]byte("next"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	compressed := 0
	plain := 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".gz"):
			compressed++
		case strings.HasPrefix(e.Name(), logFileName+"."):
			plain++
		}
	}
	assert.Equal(t, 1, compressed)
	assert.Zero(t, plain, "uncompressed backup removed after gzip")
}

func TestRotatorPrunesExcessBackups(t *testing.T) {
	dir := t.TempDir()
	r := &Rotator{dir: dir, maxBackups: 1}

	oldest := filepath.Join(dir, logFileName+".2023-01-01-00-00-00")
	newest := filepath.Join(dir, logFileName+".2024-01-01-00-00-00")
	require.NoError(t, os.WriteFile(oldest, []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(newest, []byte("new"), 0o600))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldest, past, past))

	r.prune()

	_, err := os.Stat(oldest)
	assert.True(t, os.IsNotExist(err), "oldest backup pruned")
	_, err = os.Stat(newest)
	assert.NoError(t, err)
}

func TestRotatorPrunesExpiredBackups(t *testing.T) {
	dir := t.TempDir()
	r := &Rotator{dir: dir, maxAge: time.Hour}

	expired := filepath.Join(dir, logFileName+".2023-06-01-00-00-00")
	require.NoError(t, os.WriteFile(expired, []byte("stale"), 0o600))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(expired, past, past))

	r.prune()

	_, err := os.Stat(expired)
	assert.True(t, os.IsNotExist(err))
}
