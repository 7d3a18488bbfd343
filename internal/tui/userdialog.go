// internal/tui/userdialog.go
//
// User creation dialog. All three client-side checks (email format,
// password length, confirmation match) are evaluated independently before
// any request goes out; a failing check blocks submission with its own
// message. A 409 from the server is the one status special-cased here.

package tui

import (
	"context"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stan-blog/console/internal/api"
)

const (
	userFieldFirstName = iota
	userFieldLastName
	userFieldEmail
	userFieldPassword
	userFieldConfirm
	userFieldCount
)

const (
	passwordMinLen = 6
	passwordMaxLen = 64
)

var emailPattern = regexp.MustCompile(`^(\w-*\.*)+@(\w-?)+(\.\w{2,})+$`)

type userDialog struct {
	app *App
	gen int

	inputs     []textinput.Model
	focus      int
	submitting bool
}

type userCreatedMsg struct {
	gen   int
	email string
	err   error
}

func newUserDialog(app *App, gen int) *userDialog {
	labels := []string{"First name", "Last name", "Email", "Password", "Confirm password"}
	inputs := make([]textinput.Model, userFieldCount)
	for i := range inputs {
		input := textinput.New()
		input.Placeholder = labels[i]
		inputs[i] = input
	}
	inputs[userFieldPassword].EchoMode = textinput.EchoPassword
	inputs[userFieldConfirm].EchoMode = textinput.EchoPassword
	inputs[userFieldFirstName].Focus()
	return &userDialog{app: app, gen: gen, inputs: inputs}
}

func (d *userDialog) Init() tea.Cmd {
	return textinput.Blink
}

func (d *userDialog) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case userCreatedMsg:
		if !d.app.genCurrent(m.gen) {
			return nil
		}
		d.submitting = false
		if m.err != nil {
			if api.IsConflict(m.err) {
				// The dialog stays open so the operator can fix the email.
				d.app.flash("⚠ An account with this email already exists")
				d.app.logWarn("User create rejected: email %s exists", m.email)
			} else {
				d.app.flash("✗ User creation failed")
				d.app.logError("User create failed: %v", m.err)
			}
			return nil
		}
		d.app.flash("✓ User created")
		d.app.logInfo("User %s created", m.email)
		d.resetForm()
		return d.closeCmd()

	case tea.KeyMsg:
		return d.handleKey(m)
	}
	return nil
}

// closeCmd asks the app to fall back to the main menu on the next cycle.
func (d *userDialog) closeCmd() tea.Cmd {
	gen := d.gen
	return func() tea.Msg {
		return dialogClosedMsg{gen: gen}
	}
}

func (d *userDialog) handleKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "tab", "down":
		d.setFocus((d.focus + 1) % userFieldCount)
		return textinput.Blink
	case "shift+tab", "up":
		d.setFocus((d.focus + userFieldCount - 1) % userFieldCount)
		return textinput.Blink
	case "ctrl+s", "enter":
		return d.submit()
	}
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(m)
	return cmd
}

func (d *userDialog) setFocus(focus int) {
	d.inputs[d.focus].Blur()
	d.focus = focus
	d.inputs[d.focus].Focus()
}

func (d *userDialog) email() string {
	return strings.TrimSpace(d.inputs[userFieldEmail].Value())
}

func (d *userDialog) password() string {
	return d.inputs[userFieldPassword].Value()
}

func (d *userDialog) confirm() string {
	return d.inputs[userFieldConfirm].Value()
}

func (d *userDialog) emailValid() bool {
	return emailPattern.MatchString(d.email())
}

func (d *userDialog) passwordValid() bool {
	length := len(d.password())
	return length >= passwordMinLen && length <= passwordMaxLen
}

func (d *userDialog) passwordsMatch() bool {
	return d.password() == d.confirm()
}

func (d *userDialog) submit() tea.Cmd {
	if d.submitting {
		return nil
	}
	// Each check reports its own message and blocks the request.
	if !d.emailValid() {
		d.app.flash("⚠ Invalid email format")
		return nil
	}
	if !d.passwordsMatch() {
		d.app.flash("⚠ The two passwords do not match")
		return nil
	}
	if !d.passwordValid() {
		d.app.flash("⚠ Password must be 6 to 64 characters")
		return nil
	}
	d.submitting = true
	user := api.NewUser{
		FirstName: strings.TrimSpace(d.inputs[userFieldFirstName].Value()),
		LastName:  strings.TrimSpace(d.inputs[userFieldLastName].Value()),
		Email:     d.email(),
		Password:  d.password(),
	}
	gen := d.gen
	client := d.app.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		err := client.CreateUser(ctx, user)
		return userCreatedMsg{gen: gen, email: user.Email, err: err}
	}
}

func (d *userDialog) resetForm() {
	for i := range d.inputs {
		d.inputs[i].SetValue("")
	}
	d.setFocus(userFieldFirstName)
}

func (d *userDialog) View() string {
	lines := []string{selectedItemStyle.Render("Create User"), ""}
	for i := range d.inputs {
		line := d.inputs[i].View()
		switch i {
		case userFieldEmail:
			if d.email() != "" && !d.emailValid() {
				line += "  " + errorTextStyle.Render("invalid format")
			}
		case userFieldPassword:
			if d.password() != "" && !d.passwordValid() {
				line += "  " + errorTextStyle.Render("6 to 64 characters")
			}
		case userFieldConfirm:
			if d.confirm() != "" && !d.passwordsMatch() {
				line += "  " + errorTextStyle.Render("does not match")
			}
		}
		lines = append(lines, line)
	}
	if d.submitting {
		lines = append(lines, "", editBadgeStyle.Render("Creating…"))
	}
	lines = append(lines, "", dimTextStyle.Render("enter → create    tab → next field    esc → cancel"))
	return strings.Join(lines, "\n")
}
