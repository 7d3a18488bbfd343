// internal/tui/article.go
//
// Article editor with the quota-gated AI title generator. The quota check
// polls on a fixed interval while this view is open: one immediate check on
// activation, then one per tick. The loop stops deterministically when the
// view closes because a stale-generation tick is dropped without being
// rescheduled.

package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stan-blog/console/internal/api"
	"github.com/stan-blog/console/internal/viewstate"
)

const (
	focusTitle = iota
	focusContent
)

// Shown when the AI backend cannot be reached at all; server-supplied
// messages always win over this fallback.
const aiUnavailableMsg = "AI service is not available"

type articleView struct {
	app *App
	gen int

	titleInput textinput.Model
	content    textarea.Model
	focus      int

	gate *viewstate.Gate
	spin spinner.Model
}

type quotaTickMsg struct {
	gen int
}

type quotaCheckedMsg struct {
	gen   int
	quota api.Quota
	err   error
}

type titleGeneratedMsg struct {
	gen   int
	title string
	err   error
}

func newArticleView(app *App, gen int) *articleView {
	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.CharLimit = 128
	titleInput.Focus()
	content := textarea.New()
	content.Placeholder = "Article content"
	content.CharLimit = 0
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return &articleView{
		app:        app,
		gen:        gen,
		titleInput: titleInput,
		content:    content,
		gate:       viewstate.NewGate(app.config.Admin()),
		spin:       spin,
	}
}

func (v *articleView) Init() tea.Cmd {
	if v.gate.Privileged() {
		// Admins bypass the quota gate, so no polling is started at all.
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, v.checkQuotaCmd(), v.scheduleQuotaTick())
}

func (v *articleView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case quotaTickMsg:
		if !v.app.genCurrent(m.gen) {
			// The view this tick belonged to is gone; dropping it here is
			// what stops the polling loop.
			return nil
		}
		return tea.Batch(v.checkQuotaCmd(), v.scheduleQuotaTick())

	case quotaCheckedMsg:
		if !v.app.genCurrent(m.gen) {
			return nil
		}
		switch {
		case m.err != nil:
			v.gate.ObserveCheckFailure()
		case !m.quota.Allowed:
			v.gate.ObserveCheckFailure()
		default:
			v.gate.ObserveQuota(m.quota.Remaining)
		}
		return nil

	case titleGeneratedMsg:
		return v.handleTitleGenerated(m)

	case spinner.TickMsg:
		if !v.gate.Busy() {
			return nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(m)
		return cmd

	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return nil
}

func (v *articleView) handleTitleGenerated(m titleGeneratedMsg) tea.Cmd {
	if !v.app.genCurrent(m.gen) {
		return nil
	}
	v.gate.SetBusy(false)
	if m.err != nil {
		var apiErr *api.Error
		switch {
		case errors.As(m.err, &apiErr) && apiErr.Message != "":
			// The server said why; prefer its wording.
			v.app.flash("✗ %s", apiErr.Message)
		case errors.As(m.err, &apiErr):
			v.app.flash("✗ Title generation failed")
		default:
			v.app.flash("✗ %s", aiUnavailableMsg)
		}
		v.app.logError("Title generation failed: %v", m.err)
		return nil
	}
	v.titleInput.SetValue(m.title)
	v.app.flash("✓ Title generated")
	v.app.logInfo("Title generated (%d chars)", len(m.title))
	return nil
}

func (v *articleView) handleKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "tab":
		if v.focus == focusTitle {
			v.focus = focusContent
			v.titleInput.Blur()
			return v.content.Focus()
		}
		v.focus = focusTitle
		v.content.Blur()
		return v.titleInput.Focus()
	case "ctrl+g":
		return v.generate()
	}
	var cmd tea.Cmd
	if v.focus == focusTitle {
		v.titleInput, cmd = v.titleInput.Update(m)
	} else {
		v.content, cmd = v.content.Update(m)
	}
	return cmd
}

func (v *articleView) generate() tea.Cmd {
	contentValue := v.content.Value()
	verdict := v.gate.Evaluate(contentValue)
	if !verdict.Allowed {
		v.app.flash("%s", gateReasonText(verdict.Reason))
		return nil
	}
	v.gate.SetBusy(true)
	return tea.Batch(v.spin.Tick, v.generateTitleCmd(contentValue))
}

func (v *articleView) checkQuotaCmd() tea.Cmd {
	gen := v.gen
	client := v.app.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		quota, err := client.CheckQuota(ctx)
		return quotaCheckedMsg{gen: gen, quota: quota, err: err}
	}
}

func (v *articleView) scheduleQuotaTick() tea.Cmd {
	gen := v.gen
	return tea.Tick(v.app.config.QuotaCheckInterval(), func(time.Time) tea.Msg {
		return quotaTickMsg{gen: gen}
	})
}

func (v *articleView) generateTitleCmd(content string) tea.Cmd {
	gen := v.gen
	client := v.app.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		title, err := client.GenerateTitle(ctx, content)
		return titleGeneratedMsg{gen: gen, title: title, err: err}
	}
}

func gateReasonText(reason viewstate.Reason) string {
	switch reason {
	case viewstate.ReasonTooShort:
		return "Content too short: more than 100 characters required"
	case viewstate.ReasonTooLong:
		return "Content too long: at most 5000 characters allowed"
	case viewstate.ReasonNoQuota:
		return "Daily generation quota exhausted"
	case viewstate.ReasonBusy:
		return "Generation already in progress"
	default:
		return "Generate a title from the content"
	}
}

func (v *articleView) View() string {
	verdict := v.gate.Evaluate(v.content.Value())
	genLabel := "ctrl+g → generate title"
	if v.gate.Busy() {
		genLabel = v.spin.View() + " generating…"
	} else if !verdict.Allowed {
		genLabel = dimTextStyle.Render("ctrl+g · " + gateReasonText(verdict.Reason))
	}
	lines := []string{
		selectedItemStyle.Render("Article Editor"),
		"",
		"Title:   " + v.titleInput.View(),
		"         " + genLabel,
		"",
		"Content:",
		v.content.View(),
		"",
		dimTextStyle.Render("tab → switch field    esc → back"),
	}
	return strings.Join(lines, "\n")
}
