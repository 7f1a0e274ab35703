package model

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxnstrexgl/cyberdark/internal/background"
	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
)

func stubFetch(status background.StatusResponse, source string, err error) StatusFetch {
	return func(context.Context) (background.StatusResponse, string, error) {
		return status, source, err
	}
}

func TestStatusModelShowsSpinnerBeforeFirstLoad(t *testing.T) {
	m := NewStatusModel(styles.NewTheme(), stubFetch(background.StatusResponse{}, "", nil))

	view := m.View()
	require.Contains(t, view, "Contacting daemon")
}

func TestStatusModelRendersLoadedStatus(t *testing.T) {
	m := NewStatusModel(styles.NewTheme(), nil)

	updated, cmd := m.Update(statusLoadedMsg{
		status: background.StatusResponse{
			Version:       "1.2.3",
			Enabled:       true,
			BlacklistSize: 4,
			OverrideCount: 2,
			UptimeSeconds: 61,
		},
		source: "served by the daemon at 127.0.0.1:8793",
	})
	m = updated.(StatusModel)

	require.True(t, m.loaded)
	require.NoError(t, m.err)
	assert.NotNil(t, cmd, "a refresh tick should be scheduled")

	view := m.View()
	assert.Contains(t, view, "dark mode on")
	assert.Contains(t, view, "1.2.3")
	assert.Contains(t, view, "1m 1s")
	assert.Contains(t, view, "served by the daemon at 127.0.0.1:8793")
	assert.Contains(t, view, "refreshes every second")
}

func TestStatusModelKeepsLastStatusOnError(t *testing.T) {
	m := NewStatusModel(styles.NewTheme(), nil)

	updated, _ := m.Update(statusLoadedMsg{
		status: background.StatusResponse{Version: "1.2.3", Enabled: true},
		source: "daemon",
	})
	m = updated.(StatusModel)

	updated, _ = m.Update(statusLoadedMsg{err: errors.New("connection refused")})
	m = updated.(StatusModel)

	require.Error(t, m.err)
	assert.Equal(t, "1.2.3", m.status.Version, "last good snapshot survives")
	assert.Contains(t, m.View(), "Status error")

	// The next successful poll clears the error.
	updated, _ = m.Update(statusLoadedMsg{
		status: background.StatusResponse{Version: "1.2.4"},
		source: "daemon",
	})
	m = updated.(StatusModel)

	require.NoError(t, m.err)
	assert.Contains(t, m.View(), "1.2.4")
}

func TestStatusModelTickTriggersReload(t *testing.T) {
	fetched := 0
	m := NewStatusModel(styles.NewTheme(), func(context.Context) (background.StatusResponse, string, error) {
		fetched++
		return background.StatusResponse{Version: "9.9.9"}, "stub", nil
	})

	_, cmd := m.Update(statusTickMsg{})
	require.NotNil(t, cmd)

	msg := cmd()
	loaded, ok := msg.(statusLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, "9.9.9", loaded.status.Version)
}

func TestStatusModelQuitKeys(t *testing.T) {
	m := NewStatusModel(styles.NewTheme(), nil)

	for _, key := range []string{"q", "ctrl+c", "esc"} {
		_, cmd := m.Update(keyMsg(key))
		require.NotNil(t, cmd, "key %q", key)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit, "key %q should quit", key)
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}
