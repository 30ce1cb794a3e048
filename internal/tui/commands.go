package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/hkrnws/internal/debuglog"
	"github.com/pders01/hkrnws/internal/fetch"
	"github.com/pders01/hkrnws/internal/hn"
	"github.com/pders01/hkrnws/internal/storage"
)

const maxSearchResults = 20

// startFetch cancels any running fetch, bumps the generation and resets
// loading state. The fetch itself launches inside the returned command
// so Update stays free of network work.
func (a *App) startFetch() tea.Cmd {
	if a.fetchCancel != nil {
		a.fetchCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.fetchCancel = cancel

	a.generation++
	a.loadingDone = 0
	a.loadingTotal = 0
	a.events = nil
	a.view = ViewLoading

	gen := a.generation
	fetcher := a.fetcher
	begin := func() tea.Msg {
		debuglog.Debugf("starting fetch generation %d", gen)
		return fetchBeganMsg{gen: gen, events: fetcher.Start(ctx)}
	}
	return tea.Batch(begin, a.spinner.Tick)
}

// listenFetch waits for the next event on the fetch channel and turns
// it into a message. Update re-arms it after each event it accepts.
func listenFetch(gen int, events <-chan fetch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return fetchClosedMsg{gen: gen}
		}
		switch ev.Kind {
		case fetch.KindStarted:
			return fetchStartedMsg{gen: gen, total: ev.Total}
		case fetch.KindProgress:
			return fetchProgressMsg{gen: gen, done: ev.Done, total: ev.Total}
		case fetch.KindCompleted:
			return fetchCompletedMsg{gen: gen, stories: ev.Stories}
		case fetch.KindFailed:
			return fetchFailedMsg{gen: gen, err: ev.Err}
		}
		return fetchClosedMsg{gen: gen}
	}
}

// persistStories records the fetched set and reloads opened state. Nil
// store (tests, broken database path) disables persistence quietly.
func (a *App) persistStories(stories []*hn.Story) tea.Cmd {
	store := a.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		now := time.Now()
		records := make([]*storage.StoryRecord, 0, len(stories))
		for _, s := range stories {
			records = append(records, &storage.StoryRecord{
				ID:        s.ID,
				Title:     s.Title,
				URL:       s.PageURL(),
				By:        s.By,
				Score:     s.Score,
				FirstSeen: now,
				LastSeen:  now,
			})
		}

		if err := retryOperation(func() error { return store.RecordSeen(records) }); err != nil {
			return errorMsg{err: wrapErr("saving stories", err)}
		}
		if err := retryOperation(func() error { return store.SetLastRefresh(now) }); err != nil {
			debuglog.Warnf("recording refresh time: %v", err)
		}

		opened, err := store.OpenedIDs()
		if err != nil {
			return errorMsg{err: wrapErr("loading read state", err)}
		}
		return storiesPersistedMsg{opened: opened}
	}
}

// openStory validates the URL and hands it to the platform opener. The
// browser runs detached; only launch failures come back, as a transient
// status line rather than a state change.
func (a *App) openStory(story *hn.Story, rawURL string) tea.Cmd {
	launcher := a.launcher
	validator := a.urlValidator
	store := a.store
	id := story.ID
	return func() tea.Msg {
		normalized, err := validator.ValidateAndNormalize(rawURL)
		if err != nil {
			return errorMsg{err: wrapErr("invalid story URL", err)}
		}
		if err := launcher.Open(normalized); err != nil {
			debuglog.Warnf("opening %s: %v", normalized, err)
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", truncateMiddle(normalized, 60), err)}
		}

		if store != nil {
			if err := retryOperation(func() error { return store.MarkOpened(id, time.Now()) }); err != nil {
				debuglog.Warnf("marking story %d opened: %v", id, err)
			}
		}
		return storyOpenedMsg{id: id}
	}
}

func (a *App) performSearch(query string) tea.Cmd {
	engine := a.searchEngine
	return func() tea.Msg {
		results, err := engine.Search(query, maxSearchResults)
		if err != nil {
			return errorMsg{err: wrapErr("search failed", err)}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

// retryOperation retries a store write a few times with backoff. Bolt
// rejects concurrent write transactions, so short contention is normal.
func retryOperation(op func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(1<<attempt) * 100 * time.Millisecond)
	}
	return err
}
