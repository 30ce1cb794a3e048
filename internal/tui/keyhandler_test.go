package tui

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hkrnws/internal/config"
)

func TestNewKeyMapUsesConfigBindings(t *testing.T) {
	cfg := config.TestConfig()
	km := newKeyMap(cfg.Keys.Bindings)

	assert.True(t, key.Matches(keyRune('q'), km.Quit))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit))
	assert.True(t, key.Matches(keyRune('/'), km.Search))
	assert.True(t, key.Matches(keyRune('r'), km.Refresh))
	assert.True(t, key.Matches(keyRune('d'), km.Details))
	assert.True(t, key.Matches(keyRune('?'), km.Help))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Open))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, km.Back))
	assert.False(t, key.Matches(keyRune('x'), km.Quit))
}

func TestKeyMapCustomBinding(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Bindings.Refresh = "x"
	km := newKeyMap(cfg.Keys.Bindings)

	assert.True(t, key.Matches(keyRune('x'), km.Refresh))
	assert.False(t, key.Matches(keyRune('r'), km.Refresh))
}

func TestKeyHandlerInitialized(t *testing.T) {
	app := newTestApp()
	require.NotNil(t, app.keyHandler)
	assert.Same(t, app, app.keyHandler.app)
}

func TestUnboundKeyIsNoOp(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(3))

	cmd := mustUpdate(t, app, keyRune('z'))
	assert.Nil(t, cmd)
	assert.Equal(t, ViewStories, app.view)
	assert.Equal(t, 0, app.cursor)
}

func TestHelpToggle(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(1))

	initial := app.help.ShowAll
	mustUpdate(t, app, keyRune('?'))
	assert.NotEqual(t, initial, app.help.ShowAll)
	mustUpdate(t, app, keyRune('?'))
	assert.Equal(t, initial, app.help.ShowAll)
}

func TestRefreshDuringLoadingRestartsGeneration(t *testing.T) {
	app := newTestApp()
	_ = app.startFetch()
	gen := app.generation
	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 10})
	mustUpdate(t, app, fetchProgressMsg{gen: gen, done: 3, total: 10})

	cmd := mustUpdate(t, app, keyRune('r'))
	assert.NotNil(t, cmd)
	assert.Equal(t, gen+1, app.generation)
	assert.Equal(t, 0, app.loadingDone)
	assert.Equal(t, 0, app.loadingTotal)

	// progress from the superseded run no longer applies
	mustUpdate(t, app, fetchProgressMsg{gen: gen, done: 9, total: 10})
	assert.Equal(t, 0, app.loadingDone)
}

func TestCommentsKeyReturnsOpenCommand(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(2))

	cmd := mustUpdate(t, app, keyRune('c'))
	assert.NotNil(t, cmd)
}

func TestScrollKeysStayInDetail(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(2))
	mustUpdate(t, app, keyRune('d'))
	require.Equal(t, ViewDetail, app.view)

	mustUpdate(t, app, keyRune('j'))
	mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyDown})
	mustUpdate(t, app, keyRune('k'))
	assert.Equal(t, ViewDetail, app.view)
}

func TestEscapeQuitsTopLevelViews(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		app := newTestApp()
		_ = app.startFetch()

		cmd := mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("error", func(t *testing.T) {
		app := newTestApp()
		_ = app.startFetch()
		mustUpdate(t, app, fetchFailedMsg{gen: app.generation, err: errors.New("boom")})

		cmd := mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("stories clears a notice first", func(t *testing.T) {
		app := newTestApp()
		loadStories(t, app, makeStories(2))
		require.NotEmpty(t, app.status, "loading a set leaves a summary notice")

		cmd := mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Nil(t, cmd)
		assert.Empty(t, app.status)

		cmd = mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}
