package ui

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/userdesk/internal/listing"
	"github.com/abelbrown/userdesk/internal/otel"
	"github.com/abelbrown/userdesk/internal/user"
)

type mode int

const (
	modeBrowse mode = iota
	modeFilter
	modeConfirmDelete
	modeEdit
)

// Options configures the App. Zero values select defaults.
type Options struct {
	PageSizes []int            // offered by +/-; listing.PageSizeOptions when empty
	Events    *otel.Logger     // may be nil
	Ring      *otel.RingBuffer // source of the debug overlay; may be nil
	NoticeTTL time.Duration    // DefaultNoticeTTL when zero, never hides when negative
}

// App is the root Bubble Tea model.
// IMPORTANT: App never calls the remote collection. All remote work goes
// through the controller, whose commands report back as messages.
type App struct {
	ctrl      *listing.Controller
	events    *otel.Logger
	ring      *otel.RingBuffer
	pageSizes []int
	noticeTTL time.Duration

	mode    mode
	filters filterBar
	form    editForm
	doomed  user.User // delete candidate while confirming
	cursor  int
	spinner spinner.Model
	noteSeq uint64

	width     int
	height    int
	ready     bool
	showDebug bool
}

// NewApp creates an App driving ctrl.
func NewApp(ctrl *listing.Controller, opts Options) App {
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = listing.PageSizeOptions
	}
	if opts.NoticeTTL == 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return App{
		ctrl:      ctrl,
		events:    opts.Events,
		ring:      opts.Ring,
		pageSizes: slices.Sorted(slices.Values(opts.PageSizes)),
		noticeTTL: opts.NoticeTTL,
		filters:   newFilterBar(),
		spinner:   s,
	}
}

// Init issues the first fetch and starts the spinner.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.ctrl.Init(), a.spinner.Tick)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindMsgReceived,
			Comp:  "ui",
			Msg:   fmt.Sprintf("%T", msg),
		})
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
		cmd = a.handleKeyMsg(msg)

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)

	case noticeExpiredMsg:
		if msg.seq == a.ctrl.NotificationSeq() {
			a.ctrl.DismissNotification()
		}

	default:
		if listing.Owns(msg) {
			cmd = a.ctrl.Update(msg)
		}
	}

	a.clampCursor()
	return a, tea.Batch(cmd, a.watchNotice())
}

// handleKeyMsg dispatches on the current mode.
func (a *App) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	switch a.mode {
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeConfirmDelete:
		return a.handleConfirmKey(msg)
	case modeEdit:
		return a.handleEditKey(msg)
	}

	if a.showDebug {
		if key.Matches(msg, keys.Debug) || key.Matches(msg, keys.Escape) {
			a.showDebug = false
		} else if key.Matches(msg, keys.Quit) {
			return tea.Quit
		}
		return nil
	}

	page := a.ctrl.Page()
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit

	case key.Matches(msg, keys.Debug):
		a.showDebug = true
		return nil

	case key.Matches(msg, keys.Escape):
		a.ctrl.DismissNotification()
		return nil

	case key.Matches(msg, keys.Filter):
		a.mode = modeFilter
		return a.filters.focusCurrent()

	case key.Matches(msg, keys.Status):
		next := a.ctrl.Filter().Status.Next()
		return a.ctrl.SetFilter(listing.FilterPatch{Status: &next})

	case key.Matches(msg, keys.Clear):
		a.filters.reset()
		a.cursor = 0
		return a.ctrl.ClearFilters()

	case key.Matches(msg, keys.PrevPage):
		if page.Index > 0 {
			a.cursor = 0
			return a.ctrl.SetPage(page.Index - 1)
		}
		return nil

	case key.Matches(msg, keys.NextPage):
		if page.Index+1 < a.ctrl.Result().Page.PageCount(page.Size) {
			a.cursor = 0
			return a.ctrl.SetPage(page.Index + 1)
		}
		return nil

	case key.Matches(msg, keys.Bigger):
		return a.stepPageSize(1)

	case key.Matches(msg, keys.Smaller):
		return a.stepPageSize(-1)

	case key.Matches(msg, keys.Down):
		a.cursor++
		return nil

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return nil

	case key.Matches(msg, keys.Refresh):
		return a.ctrl.Refresh()

	case key.Matches(msg, keys.Toggle):
		u, ok := a.selectedForMutation()
		if !ok {
			return nil
		}
		return a.ctrl.Run(listing.ToggleActive{ID: u.ID, Active: !u.Active})

	case key.Matches(msg, keys.Edit):
		u, ok := a.selectedForMutation()
		if !ok {
			return nil
		}
		a.form = newEditForm(u)
		a.mode = modeEdit
		return a.form.focusCurrent()

	case key.Matches(msg, keys.Delete):
		u, ok := a.selectedForMutation()
		if !ok {
			return nil
		}
		a.doomed = u
		a.mode = modeConfirmDelete
		return nil
	}
	return nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Submit):
		a.mode = modeBrowse
		a.filters.blur()
		return nil
	case key.Matches(msg, keys.NextField):
		return a.filters.next()
	case key.Matches(msg, keys.PrevField):
		return a.filters.prev()
	}

	inputCmd, changed := a.filters.update(msg)
	if !changed {
		return inputCmd
	}

	field := a.filters.focus
	patch, warning, ok := patchFor(field, a.filters.value(field), a.ctrl.Filter())
	if warning != nil {
		a.ctrl.Notify(*warning)
	}
	if !ok {
		return inputCmd
	}
	a.cursor = 0
	return tea.Batch(inputCmd, a.ctrl.SetFilter(patch))
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Confirm):
		a.mode = modeBrowse
		u := a.doomed
		a.doomed = user.User{}
		return a.ctrl.Run(listing.Delete{ID: u.ID, DisplayName: u.DisplayName()})
	case key.Matches(msg, keys.Deny), key.Matches(msg, keys.Escape):
		a.mode = modeBrowse
		a.doomed = user.User{}
	}
	return nil
}

func (a *App) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Escape):
		a.mode = modeBrowse
		return nil
	case msg.Type == tea.KeyTab || msg.Type == tea.KeyDown:
		return a.form.next()
	case msg.Type == tea.KeyShiftTab || msg.Type == tea.KeyUp:
		return a.form.prev()
	case key.Matches(msg, keys.Submit):
		if !a.form.validate() {
			return nil
		}
		a.mode = modeBrowse
		return a.ctrl.Run(listing.UpdateFields{ID: a.form.target.ID, Fields: a.form.fields()})
	case a.form.focus == formActive && key.Matches(msg, keys.FlipActive):
		a.form.flipActive()
		return nil
	}
	return a.form.update(msg)
}

// selectedForMutation returns the row under the cursor, refusing while an
// earlier change is still on its way.
func (a *App) selectedForMutation() (user.User, bool) {
	items := a.ctrl.Result().Page.Items
	if a.cursor < 0 || a.cursor >= len(items) {
		return user.User{}, false
	}
	if a.ctrl.Busy() {
		a.ctrl.Notify(listing.Notification{
			Message:  "Another change is still being saved",
			Severity: listing.SeverityInfo,
		})
		return user.User{}, false
	}
	return items[a.cursor], true
}

// stepPageSize moves to the next larger (dir > 0) or smaller offered size.
func (a *App) stepPageSize(dir int) tea.Cmd {
	current := a.ctrl.Page().Size
	next := current
	if dir > 0 {
		for _, n := range a.pageSizes {
			if n > current {
				next = n
				break
			}
		}
	} else {
		for i := len(a.pageSizes) - 1; i >= 0; i-- {
			if a.pageSizes[i] < current {
				next = a.pageSizes[i]
				break
			}
		}
	}
	if next == current {
		return nil
	}
	a.cursor = 0
	return a.ctrl.SetPageSize(next)
}

func (a *App) clampCursor() {
	n := len(a.ctrl.Result().Page.Items)
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// watchNotice schedules the auto-hide of a newly placed notification.
func (a *App) watchNotice() tea.Cmd {
	seq := a.ctrl.NotificationSeq()
	if seq == a.noteSeq {
		return nil
	}
	a.noteSeq = seq
	if _, ok := a.ctrl.Notification(); !ok || a.noticeTTL < 0 {
		return nil
	}
	return tea.Tick(a.noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug {
		overlay := debugOverlay(a.ring, a.width, a.height-1)
		if overlay == "" {
			overlay = HelpStyle.Render("Event ring is not enabled.")
		}
		return lipgloss.JoinVertical(lipgloss.Left, overlay, debugStatusBar(a.width))
	}

	res := a.ctrl.Result()

	title := Title.Render("Users")
	if res.State == listing.StateLoading || a.ctrl.DebouncePending() {
		title += " " + a.spinner.View()
	}
	if a.ctrl.Busy() {
		title += StatusBarText.Render(" saving…")
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.filters.view(a.ctrl.Filter(), a.mode == modeFilter),
	)
	n, ok := a.ctrl.Notification()
	footer := lipgloss.JoinVertical(lipgloss.Left,
		RenderPager(res, a.ctrl.Page()),
		RenderNotification(n, ok, a.width),
		RenderStatusBar(a.stateText(res), a.width, a.hints()),
	)

	bodyHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 2 {
		bodyHeight = 2
	}

	var body string
	switch {
	case a.mode == modeConfirmDelete:
		body = lipgloss.Place(a.width, bodyHeight, lipgloss.Center, lipgloss.Center, confirmDeleteView(a.doomed))
	case a.mode == modeEdit:
		body = lipgloss.Place(a.width, bodyHeight, lipgloss.Center, lipgloss.Center, a.form.view())
	case res.State == listing.StateError && !res.Loaded:
		body = HelpStyle.Render("Could not load users: " + res.Detail() + "\nPress r to retry.")
	case !res.Loaded:
		body = HelpStyle.Render(a.spinner.View() + " Loading users...")
	default:
		body = RenderTable(res.Page.Items, a.cursor, a.width, bodyHeight)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (a App) stateText(res listing.Result) string {
	switch {
	case a.mode == modeFilter:
		return "FILTER"
	case res.State == listing.StateLoading:
		return "Loading..."
	case res.State == listing.StateError:
		return "Error"
	}
	items := res.Page.Items
	if len(items) == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", a.cursor+1, len(items))
}

func (a App) hints() []string {
	switch a.mode {
	case modeFilter:
		return []string{hint("tab", "next"), hint("enter/esc", "done")}
	case modeConfirmDelete:
		return []string{hint("y", "delete"), hint("n", "cancel")}
	case modeEdit:
		return []string{hint("enter", "save"), hint("esc", "cancel")}
	}
	return []string{
		hint("/", "filter"), hint("s", "status"), hint("x", "clear"),
		hint("h/l", "page"), hint("+/-", "size"),
		hint("a", "toggle"), hint("e", "edit"), hint("d", "delete"),
		hint("r", "refresh"), hint("D", "debug"), hint("q", "quit"),
	}
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}
