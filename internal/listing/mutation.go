package listing

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/abelbrown/userdesk/internal/journal"
	"github.com/abelbrown/userdesk/internal/logging"
	"github.com/abelbrown/userdesk/internal/otel"
	"github.com/abelbrown/userdesk/internal/user"
)

// Command is a mutating operation on one user. The set is closed:
// ToggleActive, UpdateFields and Delete.
type Command interface {
	op() string
	target() uuid.UUID
	detail() string
	apply(ctx context.Context, coll Collection) error
	successText() string
	failureText() string

	// rollsBack reports whether success can empty the current page.
	rollsBack() bool
}

// ToggleActive sets a user's active flag to Active.
type ToggleActive struct {
	ID     uuid.UUID
	Active bool
}

func (ToggleActive) op() string { return "toggle_active" }
func (t ToggleActive) target() uuid.UUID { return t.ID }
func (t ToggleActive) detail() string { return fmt.Sprintf("active=%t", t.Active) }
func (ToggleActive) successText() string { return "User status updated" }
func (ToggleActive) failureText() string { return "Failed to update user status" }
func (ToggleActive) rollsBack() bool { return false }
func (t ToggleActive) apply(ctx context.Context, coll Collection) error {
	return coll.SetActive(ctx, t.ID, t.Active)
}

// UpdateFields replaces a user's editable fields.
type UpdateFields struct {
	ID     uuid.UUID
	Fields user.Fields
}

func (UpdateFields) op() string { return "update" }
func (u UpdateFields) target() uuid.UUID { return u.ID }
func (u UpdateFields) detail() string {
	return fmt.Sprintf("%s %s <%s>", u.Fields.Name, u.Fields.Surname, u.Fields.Email)
}
func (UpdateFields) successText() string { return "User updated" }
func (UpdateFields) failureText() string { return "Failed to update user" }
func (UpdateFields) rollsBack() bool { return false }
func (u UpdateFields) apply(ctx context.Context, coll Collection) error {
	return coll.UpdateUser(ctx, u.ID, u.Fields)
}

// Delete removes a user. DisplayName is only used for the outcome message.
type Delete struct {
	ID          uuid.UUID
	DisplayName string
}

func (Delete) op() string { return "delete" }
func (d Delete) target() uuid.UUID { return d.ID }
func (d Delete) detail() string { return d.DisplayName }
func (d Delete) successText() string {
	if d.DisplayName == "" {
		return "User deleted"
	}
	return "User " + d.DisplayName + " deleted"
}
func (Delete) failureText() string { return "Failed to delete user" }
func (Delete) rollsBack() bool { return true }
func (d Delete) apply(ctx context.Context, coll Collection) error {
	return coll.DeleteUser(ctx, d.ID)
}

// mutationDoneMsg reports a finished remote mutation to the event loop.
type mutationDoneMsg struct {
	cmd Command
	err error
	dur time.Duration

	// Page rollback bookkeeping captured when the command was issued.
	rollback  bool
	issuedIdx int
}

// Run issues cmd against the collection. Nothing changes locally until the
// remote call answers; see finishMutation.
func (c *Controller) Run(cmd Command) tea.Cmd {
	if cmd == nil {
		return nil
	}

	rollback := cmd.rollsBack() && len(c.result.Page.Items) == 1 && c.page.Index > 0
	issuedIdx := c.page.Index

	c.inflight++
	c.events.Emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindMutationStart,
		Comp:   "listing",
		Op:     cmd.op(),
		UserID: cmd.target().String(),
	})

	coll := c.coll
	jr := c.journal
	ctx := c.ctx
	return func() tea.Msg {
		start := time.Now()
		err := cmd.apply(ctx, coll)
		dur := time.Since(start)

		if jr != nil {
			entry := journal.Entry{
				Time:   start,
				Op:     cmd.op(),
				UserID: cmd.target().String(),
				Detail: cmd.detail(),
			}
			if err != nil {
				entry.Err = err.Error()
			}
			if jerr := jr.Record(ctx, entry); jerr != nil {
				logging.Warn("journal record failed", "op", cmd.op(), "err", jerr)
			}
		}

		return mutationDoneMsg{
			cmd:       cmd,
			err:       err,
			dur:       dur,
			rollback:  rollback,
			issuedIdx: issuedIdx,
		}
	}
}

// finishMutation publishes the outcome. Only success touches the listing:
// it may step the page back and then reconciles with a fresh fetch.
func (c *Controller) finishMutation(msg mutationDoneMsg) tea.Cmd {
	if c.inflight > 0 {
		c.inflight--
	}

	if msg.err != nil {
		c.notes.put(Notification{
			Message:  msg.cmd.failureText() + ": " + Reason(msg.err),
			Severity: SeverityError,
		})
		c.events.Emit(otel.Event{
			Level:  otel.LevelError,
			Kind:   otel.KindMutationError,
			Comp:   "listing",
			Op:     msg.cmd.op(),
			UserID: msg.cmd.target().String(),
			Dur:    msg.dur,
			Err:    msg.err.Error(),
		})
		logging.Warn("mutation failed", "op", msg.cmd.op(), "user", msg.cmd.target(), "err", msg.err)
		return nil
	}

	c.notes.put(Notification{
		Message:  msg.cmd.successText(),
		Severity: SeveritySuccess,
	})
	c.events.Emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindMutationComplete,
		Comp:   "listing",
		Op:     msg.cmd.op(),
		UserID: msg.cmd.target().String(),
		Dur:    msg.dur,
	})

	// The deleted record was the only one on a non-first page. If the
	// operator has not moved since, that page is now empty.
	if msg.rollback && c.page.Index == msg.issuedIdx && c.page.Index > 0 {
		c.page.Index--
		c.events.Emit(otel.Event{
			Level: otel.LevelInfo,
			Kind:  otel.KindPageRollback,
			Comp:  "listing",
			Page:  c.page.Index,
			Size:  c.page.Size,
		})
	}

	return c.fetch()
}
