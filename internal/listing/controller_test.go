package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/userdesk/internal/journal"
	"github.com/abelbrown/userdesk/internal/otel"
	"github.com/abelbrown/userdesk/internal/user"
)

// fakeCollection is an in-memory Collection. listFn, when set, replaces the
// default slice-backed listing.
type fakeCollection struct {
	mu        sync.Mutex
	users     []user.User
	listCalls []listCall
	mutations []string
	listFn    func(Filter, PageRequest) (ResultPage, error)
	mutateErr error
}

type listCall struct {
	filter Filter
	page   PageRequest
}

func newFakeCollection(n int) *fakeCollection {
	f := &fakeCollection{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		f.users = append(f.users, user.User{
			ID:        uuid.New(),
			Name:      fmt.Sprintf("name%02d", i),
			Surname:   fmt.Sprintf("surname%02d", i),
			Active:    true,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return f
}

func (f *fakeCollection) ListUsers(ctx context.Context, filter Filter, page PageRequest) (ResultPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, listCall{filter: filter, page: page})
	fn := f.listFn
	f.mu.Unlock()

	if fn != nil {
		return fn(filter, page)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []user.User
	for _, u := range f.users {
		if filter.Name != "" && !strings.Contains(u.Name, filter.Name) {
			continue
		}
		if active, ok := filter.Status.Active(); ok && u.Active != active {
			continue
		}
		matched = append(matched, u)
	}
	res := ResultPage{TotalCount: int64(len(matched))}
	start := page.Offset()
	if start < len(matched) {
		end := min(start+page.Size, len(matched))
		res.Items = append([]user.User(nil), matched[start:end]...)
	}
	return res, nil
}

func (f *fakeCollection) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return f.mutate("set_active", func(i int) { f.users[i].Active = active }, id)
}

func (f *fakeCollection) UpdateUser(ctx context.Context, id uuid.UUID, fields user.Fields) error {
	return f.mutate("update", func(i int) {
		f.users[i].Name = fields.Name
		f.users[i].Surname = fields.Surname
	}, id)
}

func (f *fakeCollection) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return f.mutate("delete", func(i int) {
		f.users = append(f.users[:i], f.users[i+1:]...)
	}, id)
}

func (f *fakeCollection) mutate(op string, change func(int), id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, op)
	if f.mutateErr != nil {
		return f.mutateErr
	}
	for i, u := range f.users {
		if u.ID == id {
			change(i)
			return nil
		}
	}
	return &ServerError{Op: op, StatusCode: 404, Message: "user not found"}
}

func (f *fakeCollection) calls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listCall(nil), f.listCalls...)
}

// loop plays the event loop: every cmd runs on its own goroutine and the
// messages are fed to c.Update in arrival order until no work remains.
func loop(t *testing.T, c *Controller, cmds ...tea.Cmd) {
	t.Helper()

	msgs := make(chan tea.Msg, 64)
	pending := 0
	start := func(cmd tea.Cmd) {
		if cmd == nil {
			return
		}
		pending++
		go func() { msgs <- cmd() }()
	}
	for _, cmd := range cmds {
		start(cmd)
	}

	timeout := time.After(5 * time.Second)
	for pending > 0 {
		select {
		case msg := <-msgs:
			pending--
			start(c.Update(msg))
		case <-timeout:
			t.Fatalf("event loop did not settle, %d commands outstanding", pending)
		}
	}
}

func newTestController(coll Collection) *Controller {
	return New(coll, Options{Debounce: 20 * time.Millisecond})
}

func TestInitialFetch(t *testing.T) {
	coll := newFakeCollection(12)
	c := newTestController(coll)

	assert.Equal(t, StateLoading, c.Result().State)
	assert.False(t, c.Result().Loaded)

	loop(t, c, c.Init())

	res := c.Result()
	assert.Equal(t, StateReady, res.State)
	assert.True(t, res.Loaded)
	assert.Len(t, res.Page.Items, DefaultPageSize)
	assert.Equal(t, int64(12), res.Page.TotalCount)
	assert.Equal(t, 3, res.Page.PageCount(c.Page().Size))

	_, ok := c.Notification()
	assert.False(t, ok, "a successful fetch should not notify")
}

func TestStaleResponseDiscarded(t *testing.T) {
	coll := newFakeCollection(0)
	slow := ResultPage{Items: []user.User{{ID: uuid.New(), Name: "slow"}}, TotalCount: 1}
	fast := ResultPage{Items: []user.User{{ID: uuid.New(), Name: "fast"}}, TotalCount: 1}
	coll.listFn = func(f Filter, _ PageRequest) (ResultPage, error) {
		if f.Status == StatusActive {
			time.Sleep(200 * time.Millisecond)
			return slow, nil
		}
		time.Sleep(5 * time.Millisecond)
		return fast, nil
	}
	c := newTestController(coll)

	f1 := c.SetFilter(FilterPatch{Status: Ptr(StatusActive)})
	f2 := c.SetFilter(FilterPatch{Status: Ptr(StatusInactive)})
	loop(t, c, f1, f2)

	require.Len(t, coll.calls(), 2)
	res := c.Result()
	assert.Equal(t, StateReady, res.State)
	require.Len(t, res.Page.Items, 1)
	assert.Equal(t, "fast", res.Page.Items[0].Name)
}

func TestStaleErrorDiscarded(t *testing.T) {
	coll := newFakeCollection(0)
	coll.listFn = func(f Filter, p PageRequest) (ResultPage, error) {
		if f.Status == StatusActive {
			time.Sleep(100 * time.Millisecond)
			return ResultPage{}, &NetworkError{Op: "list users", Err: errors.New("connection reset")}
		}
		return ResultPage{Items: []user.User{{Name: "ok"}}, TotalCount: 1}, nil
	}
	c := newTestController(coll)

	first := c.SetFilter(FilterPatch{Status: Ptr(StatusActive)})
	second := c.SetFilter(FilterPatch{Status: Ptr(StatusInactive)})
	loop(t, c, first, second)

	assert.Equal(t, StateReady, c.Result().State)
	_, ok := c.Notification()
	assert.False(t, ok, "a superseded failure must not notify")
}

func TestDebounceCoalescesTextEdits(t *testing.T) {
	coll := newFakeCollection(5)
	c := newTestController(coll)

	var cmds []tea.Cmd
	for _, name := range []string{"a", "ab", "abc"} {
		cmds = append(cmds, c.SetFilter(FilterPatch{Name: Ptr(name)}))
	}
	assert.True(t, c.DebouncePending())
	assert.Empty(t, coll.calls(), "nothing fetched before the quiet period")

	loop(t, c, cmds...)

	calls := coll.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "abc", calls[0].filter.Name)
	assert.False(t, c.DebouncePending())
}

func TestImmediateChangeBypassesDebounce(t *testing.T) {
	coll := newFakeCollection(5)
	c := newTestController(coll)

	text := c.SetFilter(FilterPatch{Name: Ptr("name0")})
	status := c.SetFilter(FilterPatch{Status: Ptr(StatusActive)})
	assert.False(t, c.DebouncePending(), "status change cancels the pending timer")

	loop(t, c, text, status)

	calls := coll.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "name0", calls[0].filter.Name)
	assert.Equal(t, StatusActive, calls[0].filter.Status)
}

func TestMixedPatchIsImmediate(t *testing.T) {
	coll := newFakeCollection(5)
	c := newTestController(coll)

	cmd := c.SetFilter(FilterPatch{Name: Ptr("x"), Status: Ptr(StatusInactive)})
	assert.False(t, c.DebouncePending())
	loop(t, c, cmd)

	require.Len(t, coll.calls(), 1)
}

func TestFilterChangeResetsPage(t *testing.T) {
	coll := newFakeCollection(30)
	c := newTestController(coll)
	loop(t, c, c.SetPage(3))
	require.Equal(t, 3, c.Page().Index)

	cmd := c.SetFilter(FilterPatch{ID: Ptr("x")})
	assert.Equal(t, 0, c.Page().Index, "index resets when the filter is merged")
	loop(t, c, cmd)

	calls := coll.calls()
	assert.Equal(t, 0, calls[len(calls)-1].page.Index)
}

func TestSetPageSizeResetsPage(t *testing.T) {
	coll := newFakeCollection(30)
	c := newTestController(coll)
	loop(t, c, c.SetPage(2))

	loop(t, c, c.SetPageSize(10))

	assert.Equal(t, PageRequest{Index: 0, Size: 10}, c.Page())
	assert.Len(t, c.Result().Page.Items, 10)
}

func TestInvalidPageSizeRejected(t *testing.T) {
	coll := newFakeCollection(3)
	c := newTestController(coll)

	cmd := c.SetPageSize(0)
	assert.Nil(t, cmd)
	assert.Equal(t, DefaultPageSize, c.Page().Size)

	n, ok := c.Notification()
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, n.Severity)
	assert.Empty(t, coll.calls())
}

func TestNegativePageClamped(t *testing.T) {
	coll := newFakeCollection(3)
	c := newTestController(coll)

	loop(t, c, c.SetPage(-4))
	assert.Equal(t, 0, c.Page().Index)
}

func TestRefreshRefetchesCurrentPage(t *testing.T) {
	coll := newFakeCollection(12)
	c := newTestController(coll)
	status := StatusActive

	loop(t, c, c.SetFilter(FilterPatch{Status: &status}))
	loop(t, c, c.SetPage(1))
	loop(t, c, c.Refresh())

	calls := coll.calls()
	require.Len(t, calls, 3)
	last := calls[2]
	assert.Equal(t, 1, last.page.Index)
	assert.Equal(t, StatusActive, last.filter.Status)
	assert.Equal(t, StateReady, c.Result().State)
}

func TestPageBeyondRangeIsEmptyReady(t *testing.T) {
	coll := newFakeCollection(7)
	c := newTestController(coll)

	loop(t, c, c.SetPage(10))

	res := c.Result()
	assert.Equal(t, StateReady, res.State)
	assert.Empty(t, res.Page.Items)
	assert.Equal(t, int64(7), res.Page.TotalCount)
	assert.Equal(t, 10, c.Page().Index)
}

func TestFetchErrorKeepsPreviousPage(t *testing.T) {
	coll := newFakeCollection(7)
	c := newTestController(coll)
	loop(t, c, c.Init())
	before := c.Result().Page

	coll.mu.Lock()
	coll.listFn = func(Filter, PageRequest) (ResultPage, error) {
		return ResultPage{}, &ServerError{Op: "list users", StatusCode: 500, Message: "database unavailable"}
	}
	coll.mu.Unlock()

	loop(t, c, c.Refresh())

	res := c.Result()
	assert.Equal(t, StateError, res.State)
	assert.True(t, IsServer(res.Err))
	assert.Equal(t, "database unavailable", res.Detail())
	assert.Equal(t, before, res.Page)

	n, ok := c.Notification()
	require.True(t, ok)
	assert.Equal(t, SeverityError, n.Severity)
	assert.Equal(t, "Failed to load users: database unavailable", n.Message)
}

func TestLoadingKeepsData(t *testing.T) {
	coll := newFakeCollection(7)
	c := newTestController(coll)
	loop(t, c, c.Init())

	cmd := c.Refresh()
	assert.Equal(t, StateLoading, c.Result().State)
	assert.Len(t, c.Result().Page.Items, DefaultPageSize)
	loop(t, c, cmd)
	assert.Equal(t, StateReady, c.Result().State)
}

func TestToggleActiveSuccess(t *testing.T) {
	coll := newFakeCollection(3)
	c := newTestController(coll)
	loop(t, c, c.Init())
	target := c.Result().Page.Items[0]
	callsBefore := len(coll.calls())

	cmd := c.Run(ToggleActive{ID: target.ID, Active: false})
	assert.True(t, c.Busy())
	loop(t, c, cmd)

	assert.False(t, c.Busy())
	n, ok := c.Notification()
	require.True(t, ok)
	assert.Equal(t, Notification{Message: "User status updated", Severity: SeveritySuccess}, n)
	assert.Len(t, coll.calls(), callsBefore+1, "success triggers one reconciling fetch")
	assert.False(t, c.Result().Page.Items[0].Active)
}

func TestUpdateFieldsSuccess(t *testing.T) {
	coll := newFakeCollection(3)
	c := newTestController(coll)
	loop(t, c, c.Init())
	target := c.Result().Page.Items[1]

	fields := user.FieldsOf(target)
	fields.Name = "renamed"
	loop(t, c, c.Run(UpdateFields{ID: target.ID, Fields: fields}))

	n, _ := c.Notification()
	assert.Equal(t, "User updated", n.Message)
	assert.Equal(t, "renamed", c.Result().Page.Items[1].Name)
}

func TestMutationFailureLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name string
		cmd  func(u user.User) Command
		want string
	}{
		{
			name: "toggle active",
			cmd:  func(u user.User) Command { return ToggleActive{ID: u.ID, Active: false} },
			want: "Failed to update user status: Internal Server Error (500)",
		},
		{
			name: "update fields",
			cmd: func(u user.User) Command {
				return UpdateFields{ID: u.ID, Fields: user.Fields{Name: "x", Surname: "y", Email: "x@y.z", PhoneNumber: "1"}}
			},
			want: "Failed to update user: Internal Server Error (500)",
		},
		{
			name: "delete",
			cmd:  func(u user.User) Command { return Delete{ID: u.ID, DisplayName: u.DisplayName()} },
			want: "Failed to delete user: Internal Server Error (500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := newFakeCollection(3)
			c := newTestController(coll)
			loop(t, c, c.Init())

			before := c.Result()
			epoch := c.epoch
			page := c.Page()
			calls := len(coll.calls())

			coll.mu.Lock()
			coll.mutateErr = &ServerError{Op: "mutate", StatusCode: 500}
			coll.mu.Unlock()

			loop(t, c, c.Run(tt.cmd(before.Page.Items[0])))

			assert.Equal(t, before, c.Result())
			assert.Equal(t, epoch, c.epoch)
			assert.Equal(t, page, c.Page())
			assert.Len(t, coll.calls(), calls, "no fetch after a failed mutation")
			assert.False(t, c.Busy())

			n, ok := c.Notification()
			require.True(t, ok)
			assert.Equal(t, SeverityError, n.Severity)
			assert.Equal(t, tt.want, n.Message)
		})
	}
}

func TestDeleteLastItemRollsBackPage(t *testing.T) {
	coll := newFakeCollection(11)
	c := newTestController(coll)
	loop(t, c, c.SetPage(2))
	require.Len(t, c.Result().Page.Items, 1)
	last := c.Result().Page.Items[0]

	loop(t, c, c.Run(Delete{ID: last.ID, DisplayName: last.DisplayName()}))

	assert.Equal(t, 1, c.Page().Index)
	calls := coll.calls()
	assert.Equal(t, 1, calls[len(calls)-1].page.Index)

	res := c.Result()
	assert.Equal(t, StateReady, res.State)
	assert.Len(t, res.Page.Items, 5)
	assert.Equal(t, int64(10), res.Page.TotalCount)

	n, _ := c.Notification()
	assert.Equal(t, "User name10 surname10 deleted", n.Message)
}

func TestDeleteByPointerRollsBackPage(t *testing.T) {
	coll := newFakeCollection(11)
	c := newTestController(coll)
	loop(t, c, c.SetPage(2))
	require.Len(t, c.Result().Page.Items, 1)
	last := c.Result().Page.Items[0]

	loop(t, c, c.Run(&Delete{ID: last.ID}))

	assert.Equal(t, 1, c.Page().Index)
	assert.Len(t, c.Result().Page.Items, 5)
	n, _ := c.Notification()
	assert.Equal(t, "User deleted", n.Message)
}

func TestDeleteNoRollbackWhenPageMoved(t *testing.T) {
	coll := newFakeCollection(11)
	release := make(chan struct{})
	c := newTestController(coll)
	loop(t, c, c.SetPage(2))
	last := c.Result().Page.Items[0]

	blocking := &blockingDelete{fakeCollection: coll, release: release}
	c.coll = blocking

	del := c.Run(Delete{ID: last.ID})
	move := c.SetPage(1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	loop(t, c, del, move)

	assert.Equal(t, 1, c.Page().Index, "the operator's navigation wins over rollback")
}

func TestDeleteNoRollbackOnFirstPage(t *testing.T) {
	coll := newFakeCollection(1)
	c := newTestController(coll)
	loop(t, c, c.Init())

	loop(t, c, c.Run(Delete{ID: c.Result().Page.Items[0].ID}))

	assert.Equal(t, 0, c.Page().Index)
	assert.Empty(t, c.Result().Page.Items)
}

func TestReconcilingFetchBeatsEarlierFetch(t *testing.T) {
	coll := newFakeCollection(3)
	c := newTestController(coll)
	loop(t, c, c.Init())
	target := c.Result().Page.Items[0]

	slowDone := make(chan struct{})
	coll.mu.Lock()
	coll.listFn = func(f Filter, p PageRequest) (ResultPage, error) {
		if f.Status == StatusInactive {
			<-slowDone
			return ResultPage{Items: []user.User{{Name: "stale"}}, TotalCount: 1}, nil
		}
		return ResultPage{Items: []user.User{{Name: "fresh"}}, TotalCount: 1}, nil
	}
	coll.mu.Unlock()

	slow := c.SetFilter(FilterPatch{Status: Ptr(StatusInactive)})
	mut := c.Run(ToggleActive{ID: target.ID, Active: false})
	c.filter.Status = StatusAll // the reconciling fetch must not block
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(slowDone)
	}()
	loop(t, c, slow, mut)

	require.Len(t, c.Result().Page.Items, 1)
	assert.Equal(t, "fresh", c.Result().Page.Items[0].Name)
}

func TestClearFilters(t *testing.T) {
	coll := newFakeCollection(3)
	c := newTestController(coll)
	loop(t, c, c.SetFilter(FilterPatch{Name: Ptr("zzz"), Status: Ptr(StatusInactive)}))
	assert.Empty(t, c.Result().Page.Items)

	loop(t, c, c.ClearFilters())

	assert.True(t, c.Filter().IsZero())
	assert.Len(t, c.Result().Page.Items, 3)
}

func TestNotifyAndDismiss(t *testing.T) {
	c := newTestController(newFakeCollection(0))

	c.Notify(Notification{Message: "first", Severity: SeverityInfo})
	c.Notify(Notification{Message: "second", Severity: SeverityWarning})
	n, ok := c.Notification()
	require.True(t, ok)
	assert.Equal(t, "second", n.Message)

	c.DismissNotification()
	_, ok = c.Notification()
	assert.False(t, ok)
}

type recordingJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
	err     error
}

func (j *recordingJournal) Record(_ context.Context, e journal.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return j.err
}

func TestMutationsAreJournaled(t *testing.T) {
	coll := newFakeCollection(2)
	jr := &recordingJournal{err: errors.New("disk full")}
	c := New(coll, Options{Debounce: 20 * time.Millisecond, Journal: jr})
	loop(t, c, c.Init())
	target := c.Result().Page.Items[0]

	loop(t, c, c.Run(ToggleActive{ID: target.ID, Active: false}))

	coll.mu.Lock()
	coll.mutateErr = &NetworkError{Op: "delete user", Err: context.DeadlineExceeded}
	coll.mu.Unlock()
	loop(t, c, c.Run(Delete{ID: target.ID, DisplayName: "x"}))

	require.Len(t, jr.entries, 2)
	assert.Equal(t, "toggle_active", jr.entries[0].Op)
	assert.Equal(t, target.ID.String(), jr.entries[0].UserID)
	assert.True(t, jr.entries[0].OK())
	assert.Equal(t, "delete", jr.entries[1].Op)
	assert.False(t, jr.entries[1].OK())

	n, _ := c.Notification()
	assert.Equal(t, SeverityError, n.Severity, "journal failure does not change the outcome")
	assert.True(t, strings.HasPrefix(n.Message, "Failed to delete user: network error"))
}

func TestEventsEmitted(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	events := otel.NewNullLogger()
	events.SetRingBuffer(ring)
	defer events.Close()

	coll := newFakeCollection(3)
	c := New(coll, Options{Debounce: 20 * time.Millisecond, Events: events})
	f1 := c.SetFilter(FilterPatch{Status: Ptr(StatusActive)})
	f2 := c.Refresh()
	loop(t, c, f1, f2)

	require.Eventually(t, func() bool {
		stats := ring.Stats()
		return stats[otel.KindFetchStart] == 2 &&
			stats[otel.KindFetchComplete] == 1 &&
			stats[otel.KindFetchStale] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestOwns(t *testing.T) {
	assert.True(t, Owns(debounceMsg{}))
	assert.True(t, Owns(fetchDoneMsg{}))
	assert.True(t, Owns(mutationDoneMsg{}))
	assert.False(t, Owns(tea.KeyMsg{}))
}

// blockingDelete holds DeleteUser until release is closed.
type blockingDelete struct {
	*fakeCollection
	release chan struct{}
}

func (b *blockingDelete) DeleteUser(ctx context.Context, id uuid.UUID) error {
	<-b.release
	return b.fakeCollection.DeleteUser(ctx, id)
}
