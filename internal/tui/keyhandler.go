package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/hkrnws/internal/config"
)

// keyMap holds every binding the app reacts to. Bindings come from the
// config where one exists; navigation keys are fixed vim-style.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Open     key.Binding
	Comments key.Binding
	Details  key.Binding
	Search   key.Binding
	Refresh  key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap(b config.KeyBindings) keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Open:     key.NewBinding(key.WithKeys(b.Open), key.WithHelp(b.Open, "open story")),
		Comments: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
		Details:  key.NewBinding(key.WithKeys(b.Details), key.WithHelp(b.Details, "details")),
		Search:   key.NewBinding(key.WithKeys(b.Search), key.WithHelp(b.Search, "search")),
		Refresh:  key.NewBinding(key.WithKeys(b.Refresh), key.WithHelp(b.Refresh, "refresh")),
		Back:     key.NewBinding(key.WithKeys(b.Back), key.WithHelp(b.Back, "back")),
		Help:     key.NewBinding(key.WithKeys(b.Help), key.WithHelp(b.Help, "help")),
		Quit:     key.NewBinding(key.WithKeys(b.Quit, "ctrl+c"), key.WithHelp(b.Quit, "quit")),
	}
}

// ShortHelp implements help.KeyMap for the collapsed status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Details, k.Search, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap for the expanded help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Open, k.Comments, k.Details},
		{k.Search, k.Refresh, k.Back, k.Quit},
	}
}

// KeyHandler routes key presses. Every key in every view maps to some
// action; keys without a binding fall through to a harmless default.
type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app, keys: app.keys}
}

func (h *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := h.app

	// ctrl+c quits everywhere, even mid-typing.
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	if a.view == ViewSearch && a.searchInput.Focused() {
		return h.handleSearchInput(msg)
	}

	if key.Matches(msg, h.keys.Quit) {
		return a, tea.Quit
	}

	switch a.view {
	case ViewLoading:
		return h.handleLoadingKeys(msg)
	case ViewStories:
		return h.handleStoriesKeys(msg)
	case ViewSearch:
		return h.handleSearchResultKeys(msg)
	case ViewDetail:
		return h.handleDetailKeys(msg)
	case ViewError:
		return h.handleErrorKeys(msg)
	}
	return a, nil
}

func (h *KeyHandler) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := h.app
	switch {
	case key.Matches(msg, h.keys.Refresh):
		return a, a.startFetch()
	case key.Matches(msg, h.keys.Back):
		return a, tea.Quit
	case key.Matches(msg, h.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return a, nil
}

func (h *KeyHandler) handleStoriesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := h.app
	switch {
	case key.Matches(msg, h.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, h.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, h.keys.Top):
		a.cursor = 0
	case key.Matches(msg, h.keys.Bottom):
		a.cursor = clampIndex(len(a.stories)-1, len(a.stories))
	case key.Matches(msg, h.keys.Open):
		if s := a.selectedStory(); s != nil {
			a.setStatus(MsgOpening, StatusInfo)
			return a, a.openStory(s, s.PageURL())
		}
	case key.Matches(msg, h.keys.Comments):
		if s := a.selectedStory(); s != nil {
			a.setStatus(MsgOpening, StatusInfo)
			return a, a.openStory(s, s.CommentsURL())
		}
	case key.Matches(msg, h.keys.Details):
		if s := a.selectedStory(); s != nil {
			a.openDetail(s)
		}
	case key.Matches(msg, h.keys.Search):
		a.enterSearchMode()
		return a, textinput.Blink
	case key.Matches(msg, h.keys.Refresh):
		a.setStatus(MsgRefreshing, StatusInfo)
		return a, a.startFetch()
	case key.Matches(msg, h.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(msg, h.keys.Back):
		// Escape dismisses a lingering notice before it quits.
		if a.status != "" {
			a.clearStatus()
			return a, nil
		}
		return a, tea.Quit
	}
	return a, nil
}

func (h *KeyHandler) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := h.app
	switch {
	case key.Matches(msg, h.keys.Refresh):
		return a, a.startFetch()
	case key.Matches(msg, h.keys.Back):
		return a, tea.Quit
	}
	return a, nil
}

// handleSearchInput runs while the query input has focus. Most keys go
// to the input; a few control keys manage the mode itself.
func (h *KeyHandler) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := h.app
	switch msg.Type {
	case tea.KeyEsc:
		a.exitSearchMode()
		return a, nil
	case tea.KeyEnter, tea.KeyTab, tea.KeyDown:
		if len(a.searchResults) > 0 {
			a.searchInput.Blur()
			a.searchCursor = 0
		}
		return a, nil
	default:
		before := a.searchInput.Value()
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		value := a.searchInput.Value()
		if value == before {
			return a, cmd
		}
		if len(strings.TrimSpace(value)) >= 2 {
			return a, tea.Batch(cmd, a.performSearch(value))
		}
		a.searchResults = nil
		a.searchCursor = 0
		a.clearStatus()
		return a, cmd
	}
}

// handleSearchResultKeys runs in search mode after the input is blurred
// and the user is moving through results.
func (h *KeyHandler) handleSearchResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := h.app
	switch {
	case key.Matches(msg, h.keys.Back):
		a.exitSearchMode()
	case key.Matches(msg, h.keys.Up):
		a.moveSearchCursor(-1)
	case key.Matches(msg, h.keys.Down):
		a.moveSearchCursor(1)
	case key.Matches(msg, h.keys.Top):
		a.searchCursor = 0
	case key.Matches(msg, h.keys.Bottom):
		a.searchCursor = clampIndex(len(a.searchResults)-1, len(a.searchResults))
	case key.Matches(msg, h.keys.Open):
		if r := a.selectedResult(); r != nil {
			a.setStatus(MsgOpening, StatusInfo)
			return a, a.openStory(r.Story, r.Story.PageURL())
		}
	case key.Matches(msg, h.keys.Comments):
		if r := a.selectedResult(); r != nil {
			a.setStatus(MsgOpening, StatusInfo)
			return a, a.openStory(r.Story, r.Story.CommentsURL())
		}
	case key.Matches(msg, h.keys.Details):
		if r := a.selectedResult(); r != nil {
			a.openDetail(r.Story)
		}
	case key.Matches(msg, h.keys.Search):
		a.searchInput.Focus()
		return a, textinput.Blink
	case key.Matches(msg, h.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return a, nil
}

// handleDetailKeys runs while the detail overlay is up. Scroll keys go
// to the viewport; any key without a meaning here dismisses the overlay.
func (h *KeyHandler) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := h.app
	switch {
	case key.Matches(msg, h.keys.Back), key.Matches(msg, h.keys.Details):
		a.closeDetail()
	case key.Matches(msg, h.keys.Open):
		if s := a.detailStory; s != nil {
			a.setStatus(MsgOpening, StatusInfo)
			return a, a.openStory(s, s.PageURL())
		}
	case key.Matches(msg, h.keys.Comments):
		if s := a.detailStory; s != nil {
			a.setStatus(MsgOpening, StatusInfo)
			return a, a.openStory(s, s.CommentsURL())
		}
	case key.Matches(msg, h.keys.Top):
		a.detailViewport.GotoTop()
	case key.Matches(msg, h.keys.Bottom):
		a.detailViewport.GotoBottom()
	case isScrollKey(msg):
		var cmd tea.Cmd
		a.detailViewport, cmd = a.detailViewport.Update(msg)
		return a, cmd
	default:
		a.closeDetail()
	}
	return a, nil
}

func isScrollKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "down", "j", "k", "pgup", "pgdown", "ctrl+u", "ctrl+d", " ", "f", "b":
		return true
	}
	return false
}
