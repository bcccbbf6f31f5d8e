// Package listing keeps a paginated, filterable view of users consistent
// with a remote collection.
//
// The Controller is driven by a Bubble Tea event loop. Intent methods
// (SetFilter, SetPage, Run, ...) change local state and return a tea.Cmd
// that performs the remote work off the loop; the resulting messages must
// be passed back through Update. All Controller methods must be called from
// the loop goroutine.
package listing

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/userdesk/internal/otel"
)

// Options configures a Controller. Zero values select defaults.
type Options struct {
	Debounce time.Duration   // quiet period for text filters; DefaultDebounce when zero
	PageSize int             // initial page size; DefaultPageSize when zero
	Context  context.Context // passed to every remote call; Background when nil
	Events   *otel.Logger    // may be nil
	Journal  Journal         // may be nil
}

// Controller is the listing state aggregate: filter, page cursor, result,
// notification slot, debounce timer and fetch epoch.
type Controller struct {
	coll    Collection
	journal Journal
	events  *otel.Logger
	ctx     context.Context

	debounce time.Duration
	timer    timerHandle

	filter Filter
	page   PageRequest
	epoch  uint64
	result Result
	notes  notificationSlot

	inflight int
}

// New returns a controller in the loading state. Call Init to issue the
// first fetch.
func New(coll Collection, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Controller{
		coll:     coll,
		journal:  opts.Journal,
		events:   opts.Events,
		ctx:      opts.Context,
		debounce: opts.Debounce,
		page:     PageRequest{Index: 0, Size: opts.PageSize},
		result:   Result{State: StateLoading},
	}
}

// Init fetches the first page.
func (c *Controller) Init() tea.Cmd {
	return c.fetch()
}

// Update handles the controller's own messages and ignores everything else.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if !c.timer.fire(msg) {
			return nil
		}
		c.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindDebounceFire,
			Comp:  "listing",
		})
		return c.fetch()

	case fetchDoneMsg:
		c.acceptFetch(msg)
		return nil

	case mutationDoneMsg:
		return c.finishMutation(msg)
	}
	return nil
}

// Owns reports whether msg is one of the controller's internal messages.
func Owns(msg tea.Msg) bool {
	switch msg.(type) {
	case debounceMsg, fetchDoneMsg, mutationDoneMsg:
		return true
	}
	return false
}

// SetFilter merges patch into the filter and resets the page index. Text
// fields wait out the debounce period; a status change, or a patch with no
// text fields, fetches at once.
func (c *Controller) SetFilter(patch FilterPatch) tea.Cmd {
	c.filter = c.filter.apply(patch)
	c.page.Index = 0

	if patch.immediate() {
		return c.fetch()
	}

	c.events.Emit(otel.Event{
		Level: otel.LevelDebug,
		Kind:  otel.KindDebounceArm,
		Comp:  "listing",
		Msg:   c.debounce.String(),
	})
	return c.timer.arm(c.debounce)
}

// ClearFilters drops every filter constraint and fetches at once.
func (c *Controller) ClearFilters() tea.Cmd {
	c.filter = Filter{}
	c.page.Index = 0
	return c.fetch()
}

// SetPage moves to page index. Negative values clamp to 0. There is no
// upper bound: a page past the end is simply empty.
func (c *Controller) SetPage(index int) tea.Cmd {
	if index < 0 {
		index = 0
	}
	c.page.Index = index
	return c.fetch()
}

// SetPageSize changes the page size and returns to the first page. A
// non-positive size is rejected with a warning.
func (c *Controller) SetPageSize(size int) tea.Cmd {
	if size <= 0 {
		c.notes.put(Notification{
			Message:  "Page size must be positive",
			Severity: SeverityWarning,
		})
		return nil
	}
	c.page.Size = size
	c.page.Index = 0
	return c.fetch()
}

// Refresh re-fetches the current page.
func (c *Controller) Refresh() tea.Cmd {
	return c.fetch()
}

// Filter returns the current filter.
func (c *Controller) Filter() Filter { return c.filter }

// Page returns the current page cursor.
func (c *Controller) Page() PageRequest { return c.page }

// Result returns the current result state.
func (c *Controller) Result() Result { return c.result }

// Notification returns the current notification, if any.
func (c *Controller) Notification() (Notification, bool) { return c.notes.get() }

// NotificationSeq increases every time a notification is placed.
func (c *Controller) NotificationSeq() uint64 { return c.notes.seq }

// DismissNotification clears the notification slot.
func (c *Controller) DismissNotification() { c.notes.clear() }

// Notify places n in the notification slot, replacing what was there.
func (c *Controller) Notify(n Notification) { c.notes.put(n) }

// Busy reports whether a mutation is awaiting its remote answer.
func (c *Controller) Busy() bool { return c.inflight > 0 }

// DebouncePending reports whether a text filter edit is waiting to fire.
func (c *Controller) DebouncePending() bool { return c.timer.pending }
