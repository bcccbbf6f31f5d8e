// Package ui provides the Bubble Tea console for userdesk.
package ui

import "time"

// DefaultNoticeTTL is how long a notification stays before it hides itself.
const DefaultNoticeTTL = 6 * time.Second

// noticeExpiredMsg hides the notification placed with sequence seq, unless
// a newer one has replaced it.
type noticeExpiredMsg struct {
	seq uint64
}
