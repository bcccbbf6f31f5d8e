package listing

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/userdesk/internal/logging"
	"github.com/abelbrown/userdesk/internal/otel"
)

// fetchDoneMsg carries a list response back to the event loop, tagged with
// the epoch that was current when the request went out.
type fetchDoneMsg struct {
	epoch  uint64
	filter Filter
	page   PageRequest
	result ResultPage
	err    error
	dur    time.Duration
}

// fetch starts a list request for the current filter and page. It supersedes
// every request issued before it, including a pending debounce timer.
func (c *Controller) fetch() tea.Cmd {
	c.timer.cancel()

	c.epoch++
	epoch := c.epoch
	filter := c.filter
	page := c.page

	c.result.State = StateLoading
	c.result.Err = nil

	c.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindFetchStart,
		Comp:  "listing",
		Epoch: epoch,
		Page:  page.Index,
		Size:  page.Size,
	})

	coll := c.coll
	ctx := c.ctx
	return func() tea.Msg {
		start := time.Now()
		res, err := coll.ListUsers(ctx, filter, page)
		return fetchDoneMsg{
			epoch:  epoch,
			filter: filter,
			page:   page,
			result: res,
			err:    err,
			dur:    time.Since(start),
		}
	}
}

// acceptFetch applies msg to the result state unless a newer fetch has been
// issued since msg's request went out.
func (c *Controller) acceptFetch(msg fetchDoneMsg) {
	if msg.epoch != c.epoch {
		c.events.Emit(otel.Event{
			Level: otel.LevelDebug,
			Kind:  otel.KindFetchStale,
			Comp:  "listing",
			Epoch: msg.epoch,
			Dur:   msg.dur,
			Msg:   "superseded",
		})
		logging.Debug("discarding stale list response", "epoch", msg.epoch, "current", c.epoch)
		return
	}

	if msg.err != nil {
		c.result.State = StateError
		c.result.Err = msg.err
		c.notes.put(Notification{
			Message:  "Failed to load users: " + Reason(msg.err),
			Severity: SeverityError,
		})
		c.events.Emit(otel.Event{
			Level: otel.LevelError,
			Kind:  otel.KindFetchError,
			Comp:  "listing",
			Epoch: msg.epoch,
			Dur:   msg.dur,
			Page:  msg.page.Index,
			Size:  msg.page.Size,
			Err:   msg.err.Error(),
		})
		logging.Warn("list users failed", "epoch", msg.epoch, "err", msg.err)
		return
	}

	c.result = Result{
		State:  StateReady,
		Page:   msg.result,
		Loaded: true,
	}
	c.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindFetchComplete,
		Comp:  "listing",
		Epoch: msg.epoch,
		Dur:   msg.dur,
		Page:  msg.page.Index,
		Size:  msg.page.Size,
		Count: len(msg.result.Items),
		Total: msg.result.TotalCount,
	})
}
