package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/userdesk/internal/listing"
	"github.com/abelbrown/userdesk/internal/user"
)

type column struct {
	title string
	width int
	cell  func(user.User) string
}

var columns = []column{
	{"ID", 8, func(u user.User) string { return u.ID.String() }},
	{"Name", 14, func(u user.User) string { return u.Name }},
	{"Surname", 14, func(u user.User) string { return u.Surname }},
	{"Status", 11, func(u user.User) string { return u.StatusLabel() }},
	{"Email", 28, func(u user.User) string { return u.Email }},
	{"Phone", 16, func(u user.User) string { return u.PhoneNumber }},
	{"Created", 10, func(u user.User) string {
		if u.CreatedAt.IsZero() {
			return ""
		}
		return u.CreatedAt.Local().Format(dateLayout)
	}},
}

// RenderTable renders one page of users with the row at cursor selected.
// At most height lines are produced, header included.
func RenderTable(items []user.User, cursor, width, height int) string {
	if len(items) == 0 {
		return HelpStyle.Render("No users match the current filters.")
	}

	var header []string
	for _, c := range columns {
		header = append(header, fit(c.title, c.width))
	}
	lines := []string{TableHeader.Render(clip(" "+strings.Join(header, "  "), width))}

	rows := height - 1
	if rows < 1 {
		rows = 1
	}
	offset := calcScrollOffset(cursor, rows)
	for i := offset; i < len(items) && i < offset+rows; i++ {
		lines = append(lines, renderRow(items[i], i == cursor, width))
	}
	return strings.Join(lines, "\n")
}

// calcScrollOffset returns the first row to draw so that cursor stays
// within a viewport of rows lines.
func calcScrollOffset(cursor, rows int) int {
	if cursor < rows {
		return 0
	}
	return cursor - rows + 1
}

func renderRow(u user.User, selected bool, width int) string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = fit(c.cell(u), c.width)
	}
	line := clip(" "+strings.Join(cells, "  "), width)

	switch {
	case selected:
		return SelectedRow.Render(line)
	case !u.Active:
		return InactiveRow.Render(line)
	default:
		return NormalRow.Render(line)
	}
}

// RenderPager renders "page i of n · shown of total · size per page".
func RenderPager(res listing.Result, page listing.PageRequest) string {
	pages := res.Page.PageCount(page.Size)
	if pages == 0 {
		pages = 1
	}
	text := fmt.Sprintf("page %d of %d · %d of %d · %d per page",
		page.Index+1, pages, len(res.Page.Items), res.Page.TotalCount, page.Size)
	if res.State == listing.StateError && res.Loaded {
		text += " · showing last loaded page"
	}
	return PagerText.Render(text)
}

// RenderNotification renders the notification bar, or an empty line.
func RenderNotification(n listing.Notification, ok bool, width int) string {
	if !ok {
		return ""
	}
	style := NotifySuccess
	switch n.Severity {
	case listing.SeverityInfo:
		style = NotifyInfo
	case listing.SeverityWarning:
		style = NotifyWarning
	case listing.SeverityError:
		style = NotifyError
	}
	return style.Render(clip(n.Message, width-2))
}

// RenderStatusBar renders the bottom bar: state on the left, key hints on
// the right.
func RenderStatusBar(state string, width int, hints []string) string {
	left := " " + state + " "
	keyHints := strings.Join(hints, " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

func hint(k, desc string) string {
	return StatusBarKey.Render(k) + StatusBarText.Render(":"+desc)
}

// fit truncates or pads s to exactly w runes.
func fit(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n > w {
		return truncateRunes(s, w)
	}
	return s + strings.Repeat(" ", w-n)
}

// clip truncates s to w runes when w is positive.
func clip(s string, w int) string {
	if w <= 0 || utf8.RuneCountInString(s) <= w {
		return s
	}
	return truncateRunes(s, w)
}

// truncateRunes cuts s to at most n runes, ending with "…" when cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	if n == 1 {
		return "…"
	}
	return string([]rune(s)[:n-1]) + "…"
}
