package ui

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/userdesk/internal/user"
)

// Edit form fields, in tab order. formActive is the toggle, not an input.
const (
	formName = iota
	formSurname
	formEmail
	formPhone
	formActive
)

var formSpecs = [formActive]struct {
	label    string
	required string
	max      int
}{
	{"Name", "Name is required", 100},
	{"Surname", "Surname is required", 100},
	{"Email", "Email is required", 200},
	{"Phone number", "Phone number is required", 30},
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// editForm edits one user's fields before an UpdateFields command.
type editForm struct {
	target user.User
	inputs [formActive]textinput.Model
	active bool
	focus  int
	errs   [formActive]string
}

func newEditForm(u user.User) editForm {
	f := editForm{target: u, active: u.Active}
	values := [formActive]string{u.Name, u.Surname, u.Email, u.PhoneNumber}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = formSpecs[i].max + 20
		in.Width = 36
		in.SetValue(values[i])
		f.inputs[i] = in
	}
	return f
}

func (f *editForm) focusCurrent() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if f.focus < formActive {
		return f.inputs[f.focus].Focus()
	}
	return nil
}

func (f *editForm) next() tea.Cmd {
	f.focus = (f.focus + 1) % (formActive + 1)
	return f.focusCurrent()
}

func (f *editForm) prev() tea.Cmd {
	f.focus = (f.focus + formActive) % (formActive + 1)
	return f.focusCurrent()
}

func (f *editForm) flipActive() {
	f.active = !f.active
}

func (f *editForm) update(msg tea.Msg) tea.Cmd {
	if f.focus >= formActive {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.errs[f.focus] = ""
	return cmd
}

// fields returns the trimmed form values.
func (f editForm) fields() user.Fields {
	return user.Fields{
		Name:        strings.TrimSpace(f.inputs[formName].Value()),
		Surname:     strings.TrimSpace(f.inputs[formSurname].Value()),
		Email:       strings.TrimSpace(f.inputs[formEmail].Value()),
		PhoneNumber: strings.TrimSpace(f.inputs[formPhone].Value()),
		Active:      f.active,
	}
}

// validate records a message per invalid field and reports whether the
// form can be submitted.
func (f *editForm) validate() bool {
	ok := true
	for i := range f.inputs {
		v := strings.TrimSpace(f.inputs[i].Value())
		f.errs[i] = ""
		switch {
		case v == "":
			f.errs[i] = formSpecs[i].required
		case utf8.RuneCountInString(v) > formSpecs[i].max:
			f.errs[i] = fmt.Sprintf("%s cannot exceed %d characters", formSpecs[i].label, formSpecs[i].max)
		case i == formEmail && !emailPattern.MatchString(v):
			f.errs[i] = "Invalid email address"
		}
		if f.errs[i] != "" {
			ok = false
		}
	}
	return ok
}

func (f editForm) view() string {
	lines := []string{DialogTitle.Render("Edit User")}
	for i, in := range f.inputs {
		label := FilterLabel
		if i == f.focus {
			label = FilterLabelFocused
		}
		lines = append(lines, label.Render(fmt.Sprintf("%-13s", formSpecs[i].label))+" "+in.View())
		if f.errs[i] != "" {
			lines = append(lines, strings.Repeat(" ", 14)+FieldError.Render(f.errs[i]))
		}
	}

	label := FilterLabel
	if f.focus == formActive {
		label = FilterLabelFocused
	}
	status := StatusInactive.Render("( ) Active")
	if f.active {
		status = StatusActive.Render("(•) Active")
	}
	lines = append(lines, label.Render(fmt.Sprintf("%-13s", "Status"))+" "+status)
	lines = append(lines, "")
	lines = append(lines, StatusBarText.Render("tab: next field · space: toggle status · enter: save · esc: cancel"))
	return Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// confirmDeleteView asks before deleting u.
func confirmDeleteView(u user.User) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		DialogTitle.Render("Delete User"),
		fmt.Sprintf("Are you sure you want to delete user %s?", u.DisplayName()),
		"",
		StatusBarKey.Render("y")+StatusBarText.Render(": delete  ")+
			StatusBarKey.Render("n")+StatusBarText.Render(": cancel"),
	)
	return Dialog.Render(body)
}
