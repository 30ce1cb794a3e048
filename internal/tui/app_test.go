package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hkrnws/internal/config"
	"github.com/pders01/hkrnws/internal/fetch"
	"github.com/pders01/hkrnws/internal/hn"
	"github.com/pders01/hkrnws/internal/search"
)

func newTestApp() *App {
	cfg := config.TestConfig()
	fetcher := fetch.New(hn.NewClient())
	return NewApp(cfg, nil, fetcher)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func makeStories(n int) []*hn.Story {
	stories := make([]*hn.Story, 0, n)
	for i := 0; i < n; i++ {
		stories = append(stories, &hn.Story{
			ID:          1000 + i,
			Title:       fmt.Sprintf("Story %d", i+1),
			By:          "tester",
			Score:       100 + i,
			Descendants: 10,
			Time:        time.Now().Add(-time.Hour).Unix(),
			URL:         fmt.Sprintf("https://example.com/%d", i+1),
		})
	}
	return stories
}

// mustUpdate drives one Update and asserts the model identity is stable.
func mustUpdate(t *testing.T, app *App, msg tea.Msg) tea.Cmd {
	t.Helper()
	model, cmd := app.Update(msg)
	require.Same(t, app, model, "Update must return the same model")
	return cmd
}

// loadStories walks the app through a full successful fetch without
// touching the network: commands returned along the way are discarded.
func loadStories(t *testing.T, app *App, stories []*hn.Story) {
	t.Helper()
	_ = app.startFetch()
	gen := app.generation
	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: len(stories)})
	mustUpdate(t, app, fetchCompletedMsg{gen: gen, stories: stories})
	require.Equal(t, ViewStories, app.view)
}

func TestLoadingProgressTracksLastEvent(t *testing.T) {
	app := newTestApp()
	_ = app.startFetch()
	gen := app.generation

	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 30})
	assert.Equal(t, ViewLoading, app.view)
	assert.Equal(t, 0, app.loadingDone)
	assert.Equal(t, 30, app.loadingTotal)

	for done := 1; done <= 17; done++ {
		mustUpdate(t, app, fetchProgressMsg{gen: gen, done: done, total: 30})
	}
	assert.Equal(t, 17, app.loadingDone, "counter must equal the last processed event")
	assert.Equal(t, 30, app.loadingTotal)
	assert.Equal(t, ViewLoading, app.view)
}

func TestFetchCompletedShowsStories(t *testing.T) {
	app := newTestApp()
	stories := makeStories(3)
	loadStories(t, app, stories)

	assert.Equal(t, 0, app.cursor, "selection starts at the first story")
	assert.Len(t, app.stories, 3)
	assert.Contains(t, app.status, "Loaded 3 stories")

	// the fetched set is handed straight to the search index
	ds, ok := app.searchEngine.(search.DebugStatser)
	require.True(t, ok)
	n, err := ds.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFetchFailedShowsError(t *testing.T) {
	app := newTestApp()
	_ = app.startFetch()
	gen := app.generation

	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 30})
	mustUpdate(t, app, fetchFailedMsg{gen: gen, err: errors.New("connection refused")})

	assert.Equal(t, ViewError, app.view)
	assert.Contains(t, app.errMsg, "connection refused")
}

func TestRetryResetsLoadingState(t *testing.T) {
	app := newTestApp()
	_ = app.startFetch()
	gen := app.generation
	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 30})
	mustUpdate(t, app, fetchProgressMsg{gen: gen, done: 12, total: 30})
	mustUpdate(t, app, fetchFailedMsg{gen: gen, err: errors.New("boom")})
	require.Equal(t, ViewError, app.view)

	cmd := mustUpdate(t, app, keyRune('r'))
	assert.NotNil(t, cmd, "retry should start a new fetch")
	assert.Equal(t, ViewLoading, app.view)
	assert.Equal(t, 0, app.loadingDone)
	assert.Equal(t, 0, app.loadingTotal)
	assert.Equal(t, gen+1, app.generation)
}

func TestStaleGenerationEventsDropped(t *testing.T) {
	app := newTestApp()
	first := makeStories(3)
	loadStories(t, app, first)

	// refresh supersedes the first generation
	mustUpdate(t, app, keyRune('r'))
	require.Equal(t, ViewLoading, app.view)
	staleGen := app.generation - 1

	mustUpdate(t, app, fetchCompletedMsg{gen: staleGen, stories: makeStories(5)})
	assert.Equal(t, ViewLoading, app.view, "stale completion must not change state")
	assert.Len(t, app.stories, 3, "stale completion must not replace stories")

	mustUpdate(t, app, fetchFailedMsg{gen: staleGen, err: errors.New("late failure")})
	assert.Equal(t, ViewLoading, app.view, "stale failure must not change state")

	gen := app.generation
	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 2})
	mustUpdate(t, app, fetchCompletedMsg{gen: gen, stories: makeStories(2)})
	assert.Equal(t, ViewStories, app.view)
	assert.Len(t, app.stories, 2)
}

func TestNavigationClamping(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(5))

	for i := 0; i < 10; i++ {
		mustUpdate(t, app, keyRune('j'))
	}
	assert.Equal(t, 4, app.cursor, "cursor clamps at the last story")

	for i := 0; i < 10; i++ {
		mustUpdate(t, app, keyRune('k'))
	}
	assert.Equal(t, 0, app.cursor, "cursor clamps at the first story")

	mustUpdate(t, app, keyRune('G'))
	assert.Equal(t, 4, app.cursor)
	mustUpdate(t, app, keyRune('g'))
	assert.Equal(t, 0, app.cursor)

	mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, app.cursor)
	mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, app.cursor)
}

func TestOpenStoryReturnsCommand(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(2))

	cmd := mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd, "enter should produce an open command")
	assert.Equal(t, ViewStories, app.view, "opening never leaves the story list")
}

func TestQuitFromEveryView(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, app *App)
	}{
		{"loading", func(t *testing.T, app *App) {
			_ = app.startFetch()
		}},
		{"stories", func(t *testing.T, app *App) {
			loadStories(t, app, makeStories(2))
		}},
		{"error", func(t *testing.T, app *App) {
			_ = app.startFetch()
			mustUpdate(t, app, fetchFailedMsg{gen: app.generation, err: errors.New("x")})
		}},
		{"detail", func(t *testing.T, app *App) {
			loadStories(t, app, makeStories(2))
			mustUpdate(t, app, keyRune('d'))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			tc.setup(t, app)

			cmd := mustUpdate(t, app, keyRune('q'))
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())

			cmd = mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyCtrlC})
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestDetailOverlay(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(3))
	mustUpdate(t, app, keyRune('j'))

	mustUpdate(t, app, keyRune('d'))
	assert.Equal(t, ViewDetail, app.view)
	require.NotNil(t, app.detailStory)
	assert.Equal(t, app.stories[1].ID, app.detailStory.ID)

	// d toggles it closed again
	mustUpdate(t, app, keyRune('d'))
	assert.Equal(t, ViewStories, app.view)
	assert.Equal(t, 1, app.cursor, "selection survives the overlay")

	// esc closes too
	mustUpdate(t, app, keyRune('d'))
	mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewStories, app.view)

	// a key with no meaning in the overlay dismisses it
	mustUpdate(t, app, keyRune('d'))
	mustUpdate(t, app, keyRune('x'))
	assert.Equal(t, ViewStories, app.view)
}

func TestSearchFunctionality(t *testing.T) {
	t.Run("enter search mode", func(t *testing.T) {
		app := newTestApp()
		loadStories(t, app, makeStories(3))

		mustUpdate(t, app, keyRune('/'))
		assert.Equal(t, ViewSearch, app.view)
		assert.True(t, app.searchInput.Focused(), "search input should be focused")
	})

	t.Run("typing q searches instead of quitting", func(t *testing.T) {
		app := newTestApp()
		loadStories(t, app, makeStories(3))
		mustUpdate(t, app, keyRune('/'))

		mustUpdate(t, app, keyRune('q'))
		assert.Equal(t, ViewSearch, app.view)
		assert.Equal(t, "q", app.searchInput.Value())
	})

	t.Run("results arrive and navigation clamps", func(t *testing.T) {
		app := newTestApp()
		stories := makeStories(5)
		loadStories(t, app, stories)
		mustUpdate(t, app, keyRune('/'))

		app.searchInput.SetValue("story")
		results := []*search.Result{
			{Story: stories[0], Score: 2},
			{Story: stories[2], Score: 1},
		}
		mustUpdate(t, app, searchResultsMsg{query: "story", results: results})
		require.Len(t, app.searchResults, 2)

		// enter blurs the input and moves focus to the results
		mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEnter})
		assert.False(t, app.searchInput.Focused())
		assert.Equal(t, 0, app.searchCursor)

		for i := 0; i < 5; i++ {
			mustUpdate(t, app, keyRune('j'))
		}
		assert.Equal(t, 1, app.searchCursor)
		for i := 0; i < 5; i++ {
			mustUpdate(t, app, keyRune('k'))
		}
		assert.Equal(t, 0, app.searchCursor)

		cmd := mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEnter})
		assert.NotNil(t, cmd, "enter on a result should open it")
	})

	t.Run("stale results are dropped", func(t *testing.T) {
		app := newTestApp()
		stories := makeStories(3)
		loadStories(t, app, stories)
		mustUpdate(t, app, keyRune('/'))

		app.searchInput.SetValue("fresh")
		mustUpdate(t, app, searchResultsMsg{query: "stale", results: []*search.Result{{Story: stories[0]}}})
		assert.Empty(t, app.searchResults, "results for a superseded query are ignored")
	})

	t.Run("escape clears search", func(t *testing.T) {
		app := newTestApp()
		stories := makeStories(3)
		loadStories(t, app, stories)
		mustUpdate(t, app, keyRune('/'))

		app.searchInput.SetValue("go")
		mustUpdate(t, app, searchResultsMsg{query: "go", results: []*search.Result{{Story: stories[1]}}})
		require.NotEmpty(t, app.searchResults)

		mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, ViewStories, app.view)
		assert.Equal(t, "", app.searchInput.Value())
		assert.Empty(t, app.searchResults)
	})

	t.Run("detail from a result returns to search", func(t *testing.T) {
		app := newTestApp()
		stories := makeStories(3)
		loadStories(t, app, stories)
		mustUpdate(t, app, keyRune('/'))

		app.searchInput.SetValue("go")
		mustUpdate(t, app, searchResultsMsg{query: "go", results: []*search.Result{{Story: stories[1]}}})
		mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEnter})
		require.False(t, app.searchInput.Focused())

		mustUpdate(t, app, keyRune('d'))
		assert.Equal(t, ViewDetail, app.view)
		mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, ViewSearch, app.view)
	})
}

func TestReadStateUpdates(t *testing.T) {
	app := newTestApp()
	stories := makeStories(2)
	loadStories(t, app, stories)

	mustUpdate(t, app, storyOpenedMsg{id: stories[1].ID})
	assert.True(t, app.opened[stories[1].ID])
	assert.Equal(t, MsgOpened, app.status)

	mustUpdate(t, app, storiesPersistedMsg{opened: map[int]bool{stories[0].ID: true}})
	assert.True(t, app.opened[stories[0].ID])
}

func TestBrowserFailureIsTransient(t *testing.T) {
	app := newTestApp()
	loadStories(t, app, makeStories(2))

	mustUpdate(t, app, errorMsg{err: errors.New("failed to start xdg-open: not found")})
	assert.Equal(t, ViewStories, app.view, "launch failures must not leave the story list")
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "xdg-open")
}

func TestEndToEndHappyPath(t *testing.T) {
	app := newTestApp()
	mustUpdate(t, app, tea.WindowSizeMsg{Width: 100, Height: 30})

	_ = app.startFetch()
	gen := app.generation
	stories := makeStories(5)

	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 5})
	for done := 1; done <= 5; done++ {
		mustUpdate(t, app, fetchProgressMsg{gen: gen, done: done, total: 5})
	}
	assert.Equal(t, 5, app.loadingDone)

	mustUpdate(t, app, fetchCompletedMsg{gen: gen, stories: stories})
	require.Equal(t, ViewStories, app.view)
	assert.Equal(t, 0, app.cursor)
	assert.Contains(t, app.View(), "Story 1")

	for i := 0; i < 7; i++ {
		mustUpdate(t, app, keyRune('j'))
	}
	assert.Equal(t, 4, app.cursor, "selection stays on the last story")

	cmd := mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
}

func TestEndToEndFailureAndRetry(t *testing.T) {
	app := newTestApp()
	mustUpdate(t, app, tea.WindowSizeMsg{Width: 100, Height: 30})

	_ = app.startFetch()
	gen := app.generation
	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 30})
	mustUpdate(t, app, fetchProgressMsg{gen: gen, done: 1, total: 30})
	mustUpdate(t, app, fetchFailedMsg{gen: gen, err: errors.New("dial tcp: connection refused")})
	require.Equal(t, ViewError, app.view)
	assert.Contains(t, app.View(), "✗")

	cmd := mustUpdate(t, app, keyRune('r'))
	assert.NotNil(t, cmd)
	require.Equal(t, ViewLoading, app.view)
	assert.Equal(t, 0, app.loadingDone)
	assert.Equal(t, 0, app.loadingTotal)
	assert.Equal(t, gen+1, app.generation)

	mustUpdate(t, app, fetchStartedMsg{gen: app.generation, total: 3})
	mustUpdate(t, app, fetchCompletedMsg{gen: app.generation, stories: makeStories(3)})
	assert.Equal(t, ViewStories, app.view)
}

func TestViewRenders(t *testing.T) {
	app := newTestApp()
	mustUpdate(t, app, tea.WindowSizeMsg{Width: 100, Height: 30})

	_ = app.startFetch()
	gen := app.generation
	mustUpdate(t, app, fetchStartedMsg{gen: gen, total: 10})
	mustUpdate(t, app, fetchProgressMsg{gen: gen, done: 4, total: 10})
	assert.Contains(t, app.View(), "4/10")

	mustUpdate(t, app, fetchCompletedMsg{gen: gen, stories: makeStories(3)})
	out := app.View()
	assert.Contains(t, out, "top stories")
	assert.Contains(t, out, "Story 2")

	mustUpdate(t, app, keyRune('/'))
	assert.Contains(t, app.View(), "search")

	mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	mustUpdate(t, app, keyRune('d'))
	assert.NotEmpty(t, app.View())

	mustUpdate(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	mustUpdate(t, app, keyRune('r'))
	mustUpdate(t, app, fetchFailedMsg{gen: app.generation, err: errors.New("offline")})
	assert.Contains(t, app.View(), "offline")
}
