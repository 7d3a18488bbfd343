// internal/tui/app.go
//
// This is the main TUI for the stan-blog console.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Every network call is issued as a tea.Cmd and comes back as a message, so
// each panel's state only ever changes inside Update. Async results carry
// the view generation they were issued under; results for a retired view
// are dropped, which is how in-flight work is neutralized after a panel
// closes (bubbletea cannot cancel an issued command).

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stan-blog/console/internal/api"
	"github.com/stan-blog/console/internal/config"
	"github.com/stan-blog/console/internal/logbook"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu      appState = iota // Main menu
	statePlanBoard                     // Plan progress notes with image galleries
	stateArticleEditor                 // Article title/content with AI generation
	stateWordDialog                    // Vocabulary word creation
	stateUserDialog                    // User account creation
)

// App is the main application model. In bubbletea, this holds ALL state.
type App struct {
	config  *config.Config
	client  *api.Client
	logbook *logbook.Logbook

	state    appState
	mainMenu list.Model

	// viewGen increments every time a sub-view is opened or closed; async
	// messages stamped with an older generation are ignored.
	viewGen int

	planBoard *planBoardView
	article   *articleView
	wordForm  *wordDialog
	userForm  *userDialog

	statusMsg string
	width     int
	height    int
}

// dialogClosedMsg is emitted by a dialog that finished its work and wants
// the app back on the main menu.
type dialogClosedMsg struct {
	gen int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates the root model. The api client and logbook are injected so
// tests can point them at local fixtures.
func NewApp(cfg *config.Config, client *api.Client, lb *logbook.Logbook) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	if client == nil {
		return nil, fmt.Errorf("tui: api client is required")
	}

	items := []list.Item{
		menuItem{title: "Plans", desc: "Browse plans and edit progress notes"},
		menuItem{title: "Article Editor", desc: "Draft an article with AI title generation"},
		menuItem{title: "Vocabulary", desc: "Add a word to a vocabulary"},
		menuItem{title: "Create User", desc: "Register a new platform account"},
		menuItem{title: "Exit", desc: "Quit the console"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ STAN BLOG CONSOLE"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		config:   cfg,
		client:   client,
		logbook:  lb,
		state:    stateMainMenu,
		mainMenu: mainMenu,
	}
	if lb != nil {
		lb.Info("Session opened · server %s", cfg.ServerURL())
	}
	return app, nil
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// flash surfaces a user-facing notification in the footer.
func (a *App) flash(format string, args ...any) {
	a.statusMsg = fmt.Sprintf(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, a.routeToActiveView(msg)

	case dialogClosedMsg:
		if !a.genCurrent(msg.gen) {
			return a, nil
		}
		return a.returnToMainMenu()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
		case "esc":
			if handled, cmd := a.activeViewConsumesEsc(msg); handled {
				return a, cmd
			}
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		case "enter":
			if a.state == stateMainMenu {
				return a.handleMainMenuSelection()
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateMainMenu:
		var menuCmd tea.Cmd
		a.mainMenu, menuCmd = a.mainMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	default:
		if cmd := a.routeToActiveView(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return a, tea.Batch(cmds...)
}

// routeToActiveView forwards a message to whichever sub-view is open.
// Messages for closed views fall through and are dropped.
func (a *App) routeToActiveView(msg tea.Msg) tea.Cmd {
	switch a.state {
	case statePlanBoard:
		if a.planBoard != nil {
			return a.planBoard.Update(msg)
		}
	case stateArticleEditor:
		if a.article != nil {
			return a.article.Update(msg)
		}
	case stateWordDialog:
		if a.wordForm != nil {
			return a.wordForm.Update(msg)
		}
	case stateUserDialog:
		if a.userForm != nil {
			return a.userForm.Update(msg)
		}
	}
	return nil
}

// activeViewConsumesEsc lets an open view intercept esc (e.g. to leave edit
// mode) before the app interprets it as "back to menu".
func (a *App) activeViewConsumesEsc(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch a.state {
	case statePlanBoard:
		if a.planBoard != nil && a.planBoard.wantsEsc() {
			return true, a.planBoard.Update(msg)
		}
	case stateUserDialog:
		if a.userForm != nil && a.userForm.submitting {
			// A submit is in flight; the dialog stays open until it resolves.
			return true, nil
		}
	}
	return false, nil
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch item.title {
	case "Plans":
		a.logInfo("Menu · Plans selected")
		return a.openPlanBoard()

	case "Article Editor":
		a.logInfo("Menu · Article Editor selected")
		return a.openArticleEditor()

	case "Vocabulary":
		a.logInfo("Menu · Vocabulary selected")
		return a.openWordDialog()

	case "Create User":
		a.logInfo("Menu · Create User selected")
		return a.openUserDialog()

	case "Exit":
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) openPlanBoard() (tea.Model, tea.Cmd) {
	a.viewGen++
	a.state = statePlanBoard
	a.planBoard = newPlanBoardView(a, a.viewGen)
	return a, a.planBoard.Init()
}

func (a *App) openArticleEditor() (tea.Model, tea.Cmd) {
	a.viewGen++
	a.state = stateArticleEditor
	a.article = newArticleView(a, a.viewGen)
	return a, a.article.Init()
}

func (a *App) openWordDialog() (tea.Model, tea.Cmd) {
	a.viewGen++
	a.state = stateWordDialog
	a.wordForm = newWordDialog(a, a.viewGen)
	return a, a.wordForm.Init()
}

func (a *App) openUserDialog() (tea.Model, tea.Cmd) {
	a.viewGen++
	a.state = stateUserDialog
	a.userForm = newUserDialog(a, a.viewGen)
	return a, a.userForm.Init()
}

// returnToMainMenu transitions back to the main menu. Bumping viewGen
// retires the closed view: any of its still-in-flight results or timer
// ticks arrive stamped with the old generation and are dropped.
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.viewGen++
	a.state = stateMainMenu
	a.planBoard = nil
	a.article = nil
	a.wordForm = nil
	a.userForm = nil
	a.logInfo("Returned to main menu")
	return a, nil
}

// genCurrent reports whether an async result belongs to the open view.
func (a *App) genCurrent(gen int) bool {
	return gen == a.viewGen
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case statePlanBoard:
		if a.planBoard != nil {
			content = a.planBoard.View()
		}
	case stateArticleEditor:
		if a.article != nil {
			content = a.article.View()
		}
	case stateWordDialog:
		if a.wordForm != nil {
			content = a.wordForm.View()
		}
	case stateUserDialog:
		if a.userForm != nil {
			content = a.userForm.View()
		}
	}
	return a.renderFrame(content, width)
}

func (a *App) renderFrame(content string, width int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ STAN BLOG")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(40, width-2)).
		Render(content)
	sections := []string{header, box}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
