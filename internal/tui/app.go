package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/hkrnws/internal/browser"
	"github.com/pders01/hkrnws/internal/config"
	"github.com/pders01/hkrnws/internal/debuglog"
	"github.com/pders01/hkrnws/internal/fetch"
	"github.com/pders01/hkrnws/internal/hn"
	"github.com/pders01/hkrnws/internal/search"
	"github.com/pders01/hkrnws/internal/storage"
	"github.com/pders01/hkrnws/internal/validation"
)

// App is the Bubble Tea model for the whole program. All state changes
// happen in Update on a single goroutine; background work communicates
// through messages only.
type App struct {
	cfg     *config.Config
	store   *storage.Store
	fetcher *fetch.Fetcher

	launcher     *browser.Launcher
	searchEngine search.Searcher
	urlValidator *validation.StoryURLValidator

	keyHandler *KeyHandler
	keys       keyMap
	help       help.Model

	view         View
	previousView View
	width        int
	height       int

	// Fetch lifecycle. The generation counter guards against events
	// from a superseded fetch overwriting current state.
	generation   int
	fetchCancel  context.CancelFunc
	events       <-chan fetch.Event
	loadingDone  int
	loadingTotal int
	spinner      spinner.Model
	progress     progress.Model

	// Story list.
	stories     []*hn.Story
	cursor      int
	listTop     int
	opened      map[int]bool
	lastRefresh time.Time

	// Error state.
	errMsg string

	// Search.
	searchInput   textinput.Model
	searchResults []*search.Result
	searchCursor  int
	searchTop     int

	// Detail overlay.
	detailStory    *hn.Story
	detailViewport viewport.Model
	renderer       *glamour.TermRenderer
	rendererWidth  int

	// Status bar.
	status     string
	statusKind StatusKind
}

func NewApp(cfg *config.Config, store *storage.Store, fetcher *fetch.Fetcher) *App {
	ApplyTheme(cfg.UI.Colors)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
	)

	grad := progress.WithDefaultGradient()
	if cfg.UI.Colors.Primary != "" && cfg.UI.Colors.Secondary != "" {
		grad = progress.WithGradient(cfg.UI.Colors.Primary, cfg.UI.Colors.Secondary)
	}
	bar := progress.New(grad)
	bar.Width = 40

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search titles, authors, domains"
	input.CharLimit = 64

	app := &App{
		cfg:            cfg,
		store:          store,
		fetcher:        fetcher,
		launcher:       browser.NewLauncher(cfg),
		searchEngine:   search.NewSearcher(),
		urlValidator:   validation.NewStoryURLValidator(),
		help:           help.New(),
		view:           ViewLoading,
		spinner:        sp,
		progress:       bar,
		opened:         make(map[int]bool),
		searchInput:    input,
		detailViewport: viewport.New(0, 0),
	}
	app.keys = newKeyMap(cfg.Keys.Bindings)
	app.keyHandler = NewKeyHandler(app)
	return app
}

func (a *App) Init() tea.Cmd {
	return a.startFetch()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if a.view != ViewLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case fetchBeganMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		a.events = msg.events
		return a, listenFetch(msg.gen, msg.events)

	case fetchStartedMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		a.loadingDone = 0
		a.loadingTotal = msg.total
		return a, listenFetch(msg.gen, a.events)

	case fetchProgressMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		a.loadingDone = msg.done
		a.loadingTotal = msg.total
		return a, listenFetch(msg.gen, a.events)

	case fetchCompletedMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		a.setStories(msg.stories)
		cmds := []tea.Cmd{listenFetch(msg.gen, a.events)}
		if cmd := a.persistStories(msg.stories); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case fetchFailedMsg:
		if msg.gen != a.generation {
			return a, nil
		}
		a.errMsg = userMessage(msg.err)
		a.view = ViewError
		return a, listenFetch(msg.gen, a.events)

	case fetchClosedMsg:
		return a, nil

	case storiesPersistedMsg:
		for id, opened := range msg.opened {
			if opened {
				a.opened[id] = true
			}
		}
		return a, nil

	case searchResultsMsg:
		if a.view != ViewSearch || msg.query != a.searchInput.Value() {
			return a, nil
		}
		a.searchResults = msg.results
		a.searchCursor = 0
		a.searchTop = 0
		a.setStatus(MsgResultsCount(len(msg.results)), StatusInfo)
		return a, nil

	case storyOpenedMsg:
		a.opened[msg.id] = true
		a.setStatus(MsgOpened, StatusSuccess)
		return a, nil

	case errorMsg:
		a.setStatus(msg.err.Error(), StatusError)
		return a, nil
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return ""
	}
	switch a.view {
	case ViewLoading:
		return a.loadingView()
	case ViewStories:
		return a.storiesView()
	case ViewSearch:
		return a.searchView()
	case ViewDetail:
		return a.detailView()
	case ViewError:
		return a.errorView()
	}
	return ""
}

func (a *App) setSize(width, height int) {
	a.width = width
	a.height = height
	a.help.Width = width

	inputWidth := width - 8
	if inputWidth > 60 {
		inputWidth = 60
	}
	if inputWidth < 10 {
		inputWidth = 10
	}
	a.searchInput.Width = inputWidth

	barWidth := width - 20
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 10 {
		barWidth = 10
	}
	a.progress.Width = barWidth

	a.detailViewport.Width = width
	a.detailViewport.Height = height - 5
	if a.detailViewport.Height < 1 {
		a.detailViewport.Height = 1
	}
	if a.detailStory != nil {
		a.detailViewport.SetContent(a.renderStoryDetail(a.detailStory))
	}
}

// setStories switches to the story list and feeds the search index.
func (a *App) setStories(stories []*hn.Story) {
	a.stories = stories
	a.cursor = 0
	a.listTop = 0
	a.view = ViewStories
	a.lastRefresh = time.Now()

	if ul, ok := a.searchEngine.(search.UpdateListener); ok {
		ul.OnStoriesUpdated(stories)
	}

	doc := -1
	if ds, ok := a.searchEngine.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			doc = n
		}
	}
	a.setStatus(MsgFetchSummary(len(stories), a.loadingTotal, doc), StatusSuccess)
}

func (a *App) selectedStory() *hn.Story {
	if a.cursor < 0 || a.cursor >= len(a.stories) {
		return nil
	}
	return a.stories[a.cursor]
}

func (a *App) selectedResult() *search.Result {
	if a.searchCursor < 0 || a.searchCursor >= len(a.searchResults) {
		return nil
	}
	return a.searchResults[a.searchCursor]
}

func (a *App) moveCursor(delta int) {
	a.cursor = clampIndex(a.cursor+delta, len(a.stories))
}

func (a *App) moveSearchCursor(delta int) {
	a.searchCursor = clampIndex(a.searchCursor+delta, len(a.searchResults))
}

// clampIndex keeps i inside [0, n). Navigation never wraps.
func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func (a *App) enterSearchMode() {
	a.view = ViewSearch
	a.searchInput.Reset()
	a.searchResults = nil
	a.searchCursor = 0
	a.searchTop = 0
	a.searchInput.Focus()

	if ds, ok := a.searchEngine.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			a.setStatus(MsgIndexedCount(n), StatusInfo)
			return
		}
	}
	a.clearStatus()
}

func (a *App) exitSearchMode() {
	a.view = ViewStories
	a.searchInput.Reset()
	a.searchInput.Blur()
	a.searchResults = nil
	a.searchCursor = 0
	a.searchTop = 0
	a.clearStatus()
}

func (a *App) openDetail(s *hn.Story) {
	a.detailStory = s
	a.previousView = a.view
	a.view = ViewDetail
	a.detailViewport.SetContent(a.renderStoryDetail(s))
	a.detailViewport.GotoTop()
}

func (a *App) closeDetail() {
	a.detailStory = nil
	a.view = a.previousView
}

func (a *App) renderStoryDetail(s *hn.Story) string {
	md := buildStoryMarkdown(s, a.opened[s.ID])
	r := a.getRenderer()
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		debuglog.Debugf("rendering story %d: %v", s.ID, err)
		return md
	}
	return out
}

func buildStoryMarkdown(s *hn.Story, opened bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)

	meta := fmt.Sprintf("%d points by %s • %s", s.Score, s.By, s.Age(time.Now()))
	if s.Descendants > 0 {
		meta += fmt.Sprintf(" • %d comments", s.Descendants)
	}
	if opened {
		meta += " • read"
	}
	b.WriteString(meta + "\n\n")

	if s.URL != "" {
		fmt.Fprintf(&b, "**Link:** %s\n\n", s.URL)
	}
	fmt.Fprintf(&b, "**Comments:** %s\n\n", s.CommentsURL())

	if s.Text != "" {
		b.WriteString(htmlToPlain(s.Text) + "\n")
	}
	return b.String()
}

// getRenderer returns a cached glamour renderer, rebuilt only when the
// word wrap target drifts more than a little from the cached one.
func (a *App) getRenderer() *glamour.TermRenderer {
	width := a.width - 4
	minWidth := a.cfg.UI.Story.WordWrapMinWidth
	maxWidth := a.cfg.UI.Story.WordWrapMaxWidth
	if minWidth <= 0 {
		minWidth = 40
	}
	if maxWidth <= 0 {
		maxWidth = 120
	}
	if width < minWidth {
		width = minWidth
	}
	if width > maxWidth {
		width = maxWidth
	}

	if a.renderer != nil && abs(a.rendererWidth-width) <= 10 {
		return a.renderer
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		debuglog.Debugf("building glamour renderer: %v", err)
		return a.renderer
	}
	a.renderer = r
	a.rendererWidth = width
	return r
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

func (a *App) statusBarView() string {
	if a.status != "" {
		text := a.status
		if a.statusKind == StatusError {
			text = "✗ " + text
		}
		return StatusBarStyle.Render(statusStyle(a.statusKind).Render(truncateEnd(text, a.width-2)))
	}
	return StatusBarStyle.Render(a.help.View(a.keys))
}

func (a *App) loadingView() string {
	line := "Contacting Hacker News"
	if a.loadingTotal > 0 {
		line = fmt.Sprintf("Fetching stories %d/%d", a.loadingDone, a.loadingTotal)
	}

	parts := []string{
		GetCompactBanner(""),
		"",
		a.spinner.View() + " " + line,
	}
	if a.loadingTotal > 0 {
		parts = append(parts, "", a.progress.ViewAs(float64(a.loadingDone)/float64(a.loadingTotal)))
	}
	parts = append(parts, "", renderHelp(fmt.Sprintf("%s restart • %s quit", a.cfg.Keys.Bindings.Refresh, a.cfg.Keys.Bindings.Quit)))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return renderCentered(a.width, a.height, content)
}

func (a *App) storiesView() string {
	subtitle := fmt.Sprintf("%d stories", len(a.stories))
	if !a.lastRefresh.IsZero() {
		subtitle += " • updated " + a.lastRefresh.Format("15:04")
	}
	header := renderHeader(CompactLogo+" top stories", subtitle, a.width)
	status := a.statusBarView()

	const rowHeight = 2
	avail := a.height - lipgloss.Height(header) - lipgloss.Height(status) - 1
	visible := avail / rowHeight
	if visible < 1 {
		visible = 1
	}
	a.listTop = windowStart(a.listTop, a.cursor, visible)

	now := time.Now()
	end := a.listTop + visible
	if end > len(a.stories) {
		end = len(a.stories)
	}
	rows := make([]string, 0, end-a.listTop)
	for i := a.listTop; i < end; i++ {
		s := a.stories[i]
		rows = append(rows, renderStoryRow(s, i+1, i == a.cursor, a.opened[s.ID], a.width, a.cfg.UI.Story.MaxTitleLength, now))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		ContentWrapper(a.width, avail).Render(body),
		status,
	)
}

func (a *App) searchView() string {
	header := renderHeader(CompactLogo+" search", "", a.width)
	input := a.searchInput.View()
	status := a.statusBarView()

	const rowHeight = 2
	avail := a.height - lipgloss.Height(header) - lipgloss.Height(status) - 3
	visible := avail / rowHeight
	if visible < 1 {
		visible = 1
	}
	a.searchTop = windowStart(a.searchTop, a.searchCursor, visible)

	var body string
	switch {
	case len(a.searchResults) > 0:
		now := time.Now()
		end := a.searchTop + visible
		if end > len(a.searchResults) {
			end = len(a.searchResults)
		}
		rows := make([]string, 0, end-a.searchTop)
		for i := a.searchTop; i < end; i++ {
			r := a.searchResults[i]
			selected := i == a.searchCursor && !a.searchInput.Focused()
			rows = append(rows, renderStoryRow(r.Story, i+1, selected, a.opened[r.Story.ID], a.width, a.cfg.UI.Story.MaxTitleLength, now))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, rows...)
	case strings.TrimSpace(a.searchInput.Value()) == "":
		body = renderHelp("type to search titles, authors and domains")
	default:
		body = renderHelp(MsgNoResults)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		input,
		"",
		ContentWrapper(a.width, avail).Render(body),
		status,
	)
}

func (a *App) detailView() string {
	s := a.detailStory
	if s == nil {
		return ""
	}
	header := renderHeader(truncateEnd(s.Title, a.width-4), s.Domain(), a.width)
	status := a.statusBarView()
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		a.detailViewport.View(),
		status,
	)
}

func (a *App) errorView() string {
	b := a.cfg.Keys.Bindings
	content := lipgloss.JoinVertical(lipgloss.Center,
		GetCompactBanner(""),
		"",
		ErrorMessageStyle.Render("✗ "+a.errMsg),
		"",
		renderHelp(fmt.Sprintf("press %s to retry • %s to quit", b.Refresh, b.Quit)),
	)
	return renderCentered(a.width, a.height, content)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Messages produced by commands. Fetch messages carry the generation
// they belong to; Update drops any that are not from the current one.

type fetchBeganMsg struct {
	gen    int
	events <-chan fetch.Event
}

type fetchStartedMsg struct {
	gen   int
	total int
}

type fetchProgressMsg struct {
	gen   int
	done  int
	total int
}

type fetchCompletedMsg struct {
	gen     int
	stories []*hn.Story
}

type fetchFailedMsg struct {
	gen int
	err error
}

type fetchClosedMsg struct {
	gen int
}

type storiesPersistedMsg struct {
	opened map[int]bool
}

type searchResultsMsg struct {
	query   string
	results []*search.Result
}

type storyOpenedMsg struct {
	id int
}

type errorMsg struct {
	err error
}
