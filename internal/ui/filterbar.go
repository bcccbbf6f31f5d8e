package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/userdesk/internal/listing"
)

// Filter text fields, in tab order.
const (
	fieldID = iota
	fieldName
	fieldFrom
	fieldTo
	fieldCount
)

var fieldLabels = [fieldCount]string{"ID", "Name", "From", "To"}

const dateLayout = "2006-01-02"

// filterBar holds the text inputs of the filter row. The status selector
// is not an input; it cycles with a single key.
type filterBar struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newFilterBar() filterBar {
	var f filterBar
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		in.Width = 14
		f.inputs[i] = in
	}
	f.inputs[fieldID].Placeholder = "any"
	f.inputs[fieldID].Width = 10
	f.inputs[fieldName].Placeholder = "name surname"
	f.inputs[fieldFrom].Placeholder = "YYYY-MM-DD"
	f.inputs[fieldFrom].CharLimit = len(dateLayout)
	f.inputs[fieldFrom].Width = 10
	f.inputs[fieldTo].Placeholder = "YYYY-MM-DD"
	f.inputs[fieldTo].CharLimit = len(dateLayout)
	f.inputs[fieldTo].Width = 10
	return f
}

func (f *filterBar) focusCurrent() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *filterBar) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *filterBar) next() tea.Cmd {
	f.focus = (f.focus + 1) % fieldCount
	return f.focusCurrent()
}

func (f *filterBar) prev() tea.Cmd {
	f.focus = (f.focus + fieldCount - 1) % fieldCount
	return f.focusCurrent()
}

func (f *filterBar) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
}

func (f *filterBar) value(field int) string {
	return f.inputs[field].Value()
}

// update forwards msg to the focused input and reports whether its value
// changed.
func (f *filterBar) update(msg tea.Msg) (tea.Cmd, bool) {
	before := f.inputs[f.focus].Value()
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd, f.inputs[f.focus].Value() != before
}

// dateInput is the outcome of reading a date field.
type dateInput int

const (
	dateEmpty      dateInput = iota // field cleared
	dateIncomplete                  // still being typed
	dateValid
	dateInvalid
)

func parseDate(s string) (time.Time, dateInput) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return time.Time{}, dateEmpty
	case len(s) < len(dateLayout):
		return time.Time{}, dateIncomplete
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, dateInvalid
	}
	return t, dateValid
}

// patchFor turns the text of one field into a filter patch against the
// current filter. ok is false when the field should not touch the filter
// yet. A non-nil warning means the text was rejected and the bound was
// dropped.
func patchFor(field int, text string, current listing.Filter) (patch listing.FilterPatch, warning *listing.Notification, ok bool) {
	switch field {
	case fieldID:
		return listing.FilterPatch{ID: listing.Ptr(strings.TrimSpace(text))}, nil, true
	case fieldName:
		return listing.FilterPatch{Name: listing.Ptr(strings.TrimSpace(text))}, nil, true
	}

	t, state := parseDate(text)
	switch state {
	case dateIncomplete:
		// A bound still set from an earlier complete date no longer
		// matches what the field shows.
		bound := current.CreatedFrom
		if field == fieldTo {
			bound = current.CreatedTo
		}
		if bound == nil {
			return patch, nil, false
		}
	case dateInvalid:
		warning = &listing.Notification{
			Message:  "Invalid date " + strings.TrimSpace(text) + ", expected YYYY-MM-DD",
			Severity: listing.SeverityWarning,
		}
	}

	if field == fieldFrom {
		if state == dateValid {
			patch.CreatedFrom = &t
		} else {
			patch.ClearCreatedFrom = true
		}
	} else {
		if state == dateValid {
			patch.CreatedTo = &t
		} else {
			patch.ClearCreatedTo = true
		}
	}
	return patch, warning, true
}

func (f filterBar) view(current listing.Filter, active bool) string {
	var parts []string
	for i, in := range f.inputs {
		label := FilterLabel
		if active && i == f.focus {
			label = FilterLabelFocused
		}
		parts = append(parts, label.Render(fieldLabels[i]+":")+" "+in.View())
	}
	parts = append(parts, FilterLabel.Render("Status:")+" "+current.Status.String())
	return FilterBar.Render(strings.Join(parts, "  "))
}
