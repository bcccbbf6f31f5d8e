package listing

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce is the quiet period applied to text filter edits.
const DefaultDebounce = 400 * time.Millisecond

// debounceMsg is delivered when an armed timer elapses.
type debounceMsg struct {
	seq uint64
}

// timerHandle is the debounce gate's scheduled task. Arming or cancelling
// bumps seq, so a tick armed earlier is ignored when it eventually fires.
type timerHandle struct {
	seq     uint64
	pending bool
}

// arm (re)starts the quiet period, superseding any earlier timer.
func (h *timerHandle) arm(d time.Duration) tea.Cmd {
	h.seq++
	h.pending = true
	seq := h.seq
	return tea.Tick(d, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (h *timerHandle) cancel() {
	if h.pending {
		h.seq++
		h.pending = false
	}
}

// fire reports whether msg belongs to the currently armed timer and
// disarms it if so.
func (h *timerHandle) fire(msg debounceMsg) bool {
	if !h.pending || msg.seq != h.seq {
		return false
	}
	h.pending = false
	return true
}
