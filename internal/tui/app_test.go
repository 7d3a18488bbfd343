package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stan-blog/console/internal/api"
	"github.com/stan-blog/console/internal/config"
	"github.com/stan-blog/console/internal/viewstate"
)

// newTestApp builds an App against a local fixture server. handler may be
// nil when a test never executes a network command.
func newTestApp(t *testing.T, handler http.Handler) *App {
	t.Helper()
	if handler == nil {
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		})
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	baseDir := t.TempDir()
	if err := config.InitConsoleDir(baseDir); err != nil {
		t.Fatalf("init console dir: %v", err)
	}
	cfg, err := config.NewConfig(baseDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	client, err := api.New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	app, err := NewApp(cfg, client, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

// openBoardWithItem puts the plan board in the progress list with a single
// note that already has one gallery image.
func openBoardWithItem(app *App) (*planBoardView, *progressItem) {
	app.openPlanBoard()
	board := app.planBoard
	board.loading = false
	board.mode = modeProgressList
	item := &progressItem{edit: viewstate.NewEdit(api.PlanProgress{ID: "p1", PlanID: "plan-1", Description: "first note"})}
	item.images.Apply(item.images.Begin(), []galleryImage{{id: 1, url: "http://s/v1/files/1/view"}}, 1)
	board.items = []*progressItem{item}
	return board, item
}

func TestFailedMutationLeavesGalleryUntouched(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	item.submitting = true
	ticket := item.images.Begin()
	board.Update(imagesMutatedMsg{
		gen: app.viewGen, progressID: "p1", op: "Upload", ticket: ticket,
		err: errors.New("disk full"),
	})
	if item.submitting {
		t.Fatalf("failed mutation must release the submit lock")
	}
	if item.images.Len() != 1 || item.images.Items()[0].id != 1 {
		t.Fatalf("failed mutation altered the displayed gallery: %v", item.images.Items())
	}
	if !strings.Contains(app.statusMsg, "✗") {
		t.Fatalf("expected a failure notification, got %q", app.statusMsg)
	}
}

func TestSuccessfulMutationReplacesGalleryFromReload(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	item.submitting = true
	ticket := item.images.Begin()
	// The reload reports three records even though one file was uploaded:
	// another client added images concurrently. The reload wins.
	reloaded := []galleryImage{{id: 1, url: "u1"}, {id: 2, url: "u2"}, {id: 3, url: "u3"}}
	board.Update(imagesMutatedMsg{
		gen: app.viewGen, progressID: "p1", op: "Upload", ticket: ticket,
		images: reloaded, total: 3,
	})
	if item.submitting {
		t.Fatalf("submit lock must release once the reload resolves")
	}
	if item.images.Len() != 3 {
		t.Fatalf("gallery is not the reload result: %v", item.images.Items())
	}
	if !strings.Contains(app.statusMsg, "✓") || !strings.Contains(app.statusMsg, "3") {
		t.Fatalf("success must be announced after the reload with its count, got %q", app.statusMsg)
	}
}

func TestStaleMutationReloadIsDiscarded(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	older := item.images.Begin()
	newer := item.images.Begin()
	board.Update(imagesMutatedMsg{
		gen: app.viewGen, progressID: "p1", op: "Upload", ticket: newer,
		images: []galleryImage{{id: 9, url: "u9"}}, total: 1,
	})
	app.statusMsg = ""
	board.Update(imagesMutatedMsg{
		gen: app.viewGen, progressID: "p1", op: "Upload", ticket: older,
		images: []galleryImage{{id: 1, url: "u1"}, {id: 2, url: "u2"}}, total: 2,
	})
	if item.images.Len() != 1 || item.images.Items()[0].id != 9 {
		t.Fatalf("stale reload clobbered the newer result: %v", item.images.Items())
	}
	if strings.Contains(app.statusMsg, "✓") {
		t.Fatalf("a discarded reload must not announce success, got %q", app.statusMsg)
	}
}

func TestResultsForRetiredViewAreDropped(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	staleGen := app.viewGen
	app.returnToMainMenu()
	board.Update(imagesMutatedMsg{
		gen: staleGen, progressID: "p1", op: "Upload", ticket: item.images.Latest(),
		images: []galleryImage{{id: 7, url: "u7"}}, total: 1,
	})
	if item.images.Len() != 1 || item.images.Items()[0].id != 1 {
		t.Fatalf("a retired view's result mutated state: %v", item.images.Items())
	}
	if app.statusMsg != "" {
		t.Fatalf("a retired view's result surfaced a notification: %q", app.statusMsg)
	}
}

func TestGalleryLoadFailureIsSilent(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	ticket := item.images.Begin()
	board.Update(galleryLoadedMsg{
		gen: app.viewGen, progressID: "p1", ticket: ticket,
		err: errors.New("connection refused"),
	})
	if item.images.Len() != 1 || item.images.Items()[0].id != 1 {
		t.Fatalf("failed display load altered the gallery: %v", item.images.Items())
	}
	if app.statusMsg != "" {
		t.Fatalf("failed display load surfaced a notification: %q", app.statusMsg)
	}
}

func TestGalleryLoadAppliesRecords(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	ticket := item.images.Begin()
	board.Update(galleryLoadedMsg{
		gen: app.viewGen, progressID: "p1", ticket: ticket,
		images: []galleryImage{{id: 4, url: "u4"}, {id: 5, url: "u5"}}, total: 2,
	})
	if item.images.Len() != 2 || item.images.Items()[0].id != 4 {
		t.Fatalf("display load did not replace the gallery: %v", item.images.Items())
	}
	if app.statusMsg != "" {
		t.Fatalf("display loads are silent even on success, got %q", app.statusMsg)
	}
}

func TestRecordsWithoutViewURLAreFiltered(t *testing.T) {
	client, err := api.New("http://blog.example.com")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	records := []api.FileRecord{
		{ID: 1, ViewURL: "/v1/files/1/view"},
		{ID: 2, ViewURL: ""},
		{ID: 3, ViewURL: "/v1/files/3/view"},
	}
	images := toGalleryImages(client, records)
	if len(images) != 2 {
		t.Fatalf("expected the record without a view path dropped, got %v", images)
	}
	if images[0].id != 1 || images[1].id != 3 {
		t.Fatalf("wrong records survived the filter: %v", images)
	}
	if images[0].url != "http://blog.example.com/v1/files/1/view" {
		t.Fatalf("view path not joined onto the base URL: %q", images[0].url)
	}
}

func TestProgressCommitTakesServerResponse(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	item.edit.Enter()
	working := item.edit.Working()
	working.Description = "what I typed"
	item.edit.SetWorking(working)
	item.saving = true
	board.Update(progressSavedMsg{
		gen: app.viewGen, progressID: "p1",
		updated: api.PlanProgress{ID: "p1", PlanID: "plan-1", Description: "server-normalized", UpdateTime: "2026-02-01T00:00:00Z"},
	})
	if item.saving {
		t.Fatalf("save lock must release")
	}
	if item.edit.Editing() {
		t.Fatalf("a confirmed save must leave edit mode")
	}
	if item.edit.Entity().Description != "server-normalized" {
		t.Fatalf("entity is the request payload, not the server response: %q", item.edit.Entity().Description)
	}
}

func TestFailedProgressSaveKeepsWorkingCopy(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	item.edit.Enter()
	working := item.edit.Working()
	working.Description = "half-finished thought"
	item.edit.SetWorking(working)
	item.saving = true
	board.Update(progressSavedMsg{
		gen: app.viewGen, progressID: "p1", err: errors.New("backend down"),
	})
	if !item.edit.Editing() {
		t.Fatalf("a failed save must stay in edit mode for retry")
	}
	if item.edit.Working().Description != "half-finished thought" {
		t.Fatalf("failed save lost the working copy: %q", item.edit.Working().Description)
	}
	if item.edit.Entity().Description != "first note" {
		t.Fatalf("failed save touched the entity: %q", item.edit.Entity().Description)
	}
}

func TestQuotaPollingStopsWhenEditorCloses(t *testing.T) {
	app := newTestApp(t, nil)
	app.openArticleEditor()
	editor := app.article
	staleGen := app.viewGen
	app.returnToMainMenu()
	if cmd := editor.Update(quotaTickMsg{gen: staleGen}); cmd != nil {
		t.Fatalf("a tick for a closed editor must not reschedule the poll")
	}
}

func TestQuotaTickForOpenEditorReschedules(t *testing.T) {
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"remaining":2}}`))
	}))
	app.openArticleEditor()
	if cmd := app.article.Update(quotaTickMsg{gen: app.viewGen}); cmd == nil {
		t.Fatalf("a live tick must issue the next check and reschedule")
	}
}

func TestFailedQuotaCheckDisablesGeneration(t *testing.T) {
	app := newTestApp(t, nil)
	app.openArticleEditor()
	editor := app.article
	editor.Update(quotaCheckedMsg{gen: app.viewGen, err: errors.New("unreachable")})
	verdict := editor.gate.Evaluate(strings.Repeat("x", 200))
	if verdict.Allowed || verdict.Reason != viewstate.ReasonNoQuota {
		t.Fatalf("an unanswerable quota check must disable generation: %+v", verdict)
	}
}

func TestQuotaRejectionDisablesGeneration(t *testing.T) {
	app := newTestApp(t, nil)
	app.openArticleEditor()
	editor := app.article
	editor.Update(quotaCheckedMsg{gen: app.viewGen, quota: api.Quota{Allowed: false}})
	if editor.gate.Evaluate(strings.Repeat("x", 200)).Allowed {
		t.Fatalf("an exhausted quota must disable generation")
	}
}

func TestAdminEditorSkipsQuotaGate(t *testing.T) {
	app := newTestApp(t, nil)
	app.config.File.Account.Admin = true
	app.openArticleEditor()
	editor := app.article
	if !editor.gate.Privileged() {
		t.Fatalf("admin operators must get a privileged gate")
	}
	if !editor.gate.Evaluate(strings.Repeat("x", 200)).Allowed {
		t.Fatalf("privileged gate blocked a valid generation")
	}
}

func TestGeneratedTitlePrefersServerReason(t *testing.T) {
	app := newTestApp(t, nil)
	app.openArticleEditor()
	editor := app.article
	editor.gate.SetBusy(true)
	editor.Update(titleGeneratedMsg{
		gen: app.viewGen,
		err: &api.Error{Status: http.StatusOK, Message: "content is too repetitive"},
	})
	if editor.gate.Busy() {
		t.Fatalf("busy lock must release when generation resolves")
	}
	if !strings.Contains(app.statusMsg, "content is too repetitive") {
		t.Fatalf("server-supplied reason must win, got %q", app.statusMsg)
	}
}

func TestGeneratedTitleTransportFailureUsesFallback(t *testing.T) {
	app := newTestApp(t, nil)
	app.openArticleEditor()
	editor := app.article
	editor.gate.SetBusy(true)
	editor.Update(titleGeneratedMsg{gen: app.viewGen, err: errors.New("dial tcp: refused")})
	if !strings.Contains(app.statusMsg, aiUnavailableMsg) {
		t.Fatalf("expected the unavailable fallback, got %q", app.statusMsg)
	}
}

func TestGeneratedTitleFillsInput(t *testing.T) {
	app := newTestApp(t, nil)
	app.openArticleEditor()
	editor := app.article
	editor.gate.SetBusy(true)
	editor.Update(titleGeneratedMsg{gen: app.viewGen, title: "A Good Title"})
	if editor.titleInput.Value() != "A Good Title" {
		t.Fatalf("generated title not applied: %q", editor.titleInput.Value())
	}
}

func TestUserDialogBlocksInvalidEmail(t *testing.T) {
	app := newTestApp(t, nil)
	app.openUserDialog()
	dialog := app.userForm
	dialog.inputs[userFieldEmail].SetValue("not-an-email")
	dialog.inputs[userFieldPassword].SetValue("secret1")
	dialog.inputs[userFieldConfirm].SetValue("secret1")
	if cmd := dialog.submit(); cmd != nil {
		t.Fatalf("invalid email must block the request")
	}
	if !strings.Contains(app.statusMsg, "Invalid email") {
		t.Fatalf("expected the email message, got %q", app.statusMsg)
	}
}

func TestUserDialogBlocksMismatchedPasswords(t *testing.T) {
	app := newTestApp(t, nil)
	app.openUserDialog()
	dialog := app.userForm
	dialog.inputs[userFieldEmail].SetValue("someone@example.com")
	dialog.inputs[userFieldPassword].SetValue("secret1")
	dialog.inputs[userFieldConfirm].SetValue("secret2")
	if cmd := dialog.submit(); cmd != nil {
		t.Fatalf("mismatched passwords must block the request")
	}
	if !strings.Contains(app.statusMsg, "do not match") {
		t.Fatalf("expected the mismatch message, got %q", app.statusMsg)
	}
}

func TestUserDialogBlocksShortPassword(t *testing.T) {
	app := newTestApp(t, nil)
	app.openUserDialog()
	dialog := app.userForm
	dialog.inputs[userFieldEmail].SetValue("someone@example.com")
	dialog.inputs[userFieldPassword].SetValue("abc")
	dialog.inputs[userFieldConfirm].SetValue("abc")
	if cmd := dialog.submit(); cmd != nil {
		t.Fatalf("short password must block the request")
	}
	if !strings.Contains(app.statusMsg, "6 to 64") {
		t.Fatalf("expected the length message, got %q", app.statusMsg)
	}
}

func TestUserDialogStaysOpenOnConflict(t *testing.T) {
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"exists"}`))
	}))
	app.openUserDialog()
	dialog := app.userForm
	dialog.inputs[userFieldEmail].SetValue("taken@example.com")
	dialog.inputs[userFieldPassword].SetValue("secret1")
	dialog.inputs[userFieldConfirm].SetValue("secret1")
	cmd := dialog.submit()
	if cmd == nil {
		t.Fatalf("valid form must issue the request")
	}
	if !dialog.submitting {
		t.Fatalf("submit lock must be held while the request is in flight")
	}
	if followUp := dialog.Update(cmd()); followUp != nil {
		t.Fatalf("a conflict must not close the dialog")
	}
	if dialog.submitting {
		t.Fatalf("submit lock must release after the conflict")
	}
	if app.state != stateUserDialog {
		t.Fatalf("dialog closed on conflict")
	}
	if !strings.Contains(app.statusMsg, "already exists") {
		t.Fatalf("expected the duplicate-email message, got %q", app.statusMsg)
	}
	if dialog.inputs[userFieldEmail].Value() != "taken@example.com" {
		t.Fatalf("conflict must keep the form contents for correction")
	}
}

func TestUserDialogClosesAfterSuccessfulCreate(t *testing.T) {
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/users" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	app.openUserDialog()
	dialog := app.userForm
	dialog.inputs[userFieldEmail].SetValue("new@example.com")
	dialog.inputs[userFieldPassword].SetValue("secret1")
	dialog.inputs[userFieldConfirm].SetValue("secret1")
	cmd := dialog.submit()
	if cmd == nil {
		t.Fatalf("valid form must issue the request")
	}
	closeCmd := dialog.Update(cmd())
	if closeCmd == nil {
		t.Fatalf("a successful create must schedule the dialog close")
	}
	model, _ := app.Update(closeCmd())
	updated := model.(*App)
	if updated.state != stateMainMenu {
		t.Fatalf("expected return to main menu, got state %d", updated.state)
	}
}

func TestWordSaveRequiresVocabularyAndText(t *testing.T) {
	app := newTestApp(t, nil)
	app.openWordDialog()
	dialog := app.wordForm
	dialog.inputs[wordFieldText].SetValue("serendipity")
	if cmd := dialog.save(); cmd != nil {
		t.Fatalf("missing vocabulary id must block the request")
	}
	if !strings.Contains(app.statusMsg, "required") {
		t.Fatalf("expected the required-fields message, got %q", app.statusMsg)
	}
}

func TestWordSaveShowsReloadedListAndKeepsVocabulary(t *testing.T) {
	app := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/words":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/vocabularies/v-1/words":
			w.Write([]byte(`[{"id":"w1","vocabularyId":"v-1","text":"ephemeral"},{"id":"w2","vocabularyId":"v-1","text":"serendipity"}]`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	app.openWordDialog()
	dialog := app.wordForm
	dialog.inputs[wordFieldVocabulary].SetValue("v-1")
	dialog.inputs[wordFieldText].SetValue("serendipity")
	cmd := dialog.save()
	if cmd == nil {
		t.Fatalf("valid form must issue the request")
	}
	dialog.Update(cmd())
	if len(dialog.words) != 2 {
		t.Fatalf("displayed words must come from the reload, got %v", dialog.words)
	}
	if dialog.inputs[wordFieldVocabulary].Value() != "v-1" {
		t.Fatalf("vocabulary id must survive the form reset")
	}
	if dialog.inputs[wordFieldText].Value() != "" {
		t.Fatalf("word field must clear after a save")
	}
	if !strings.Contains(app.statusMsg, "2 word(s)") {
		t.Fatalf("success message must report the reloaded count, got %q", app.statusMsg)
	}
}

func TestEscInEditModeDiscardsInsteadOfClosing(t *testing.T) {
	app := newTestApp(t, nil)
	board, item := openBoardWithItem(app)
	item.edit.Enter()
	working := item.edit.Working()
	working.Description = "scratch"
	item.edit.SetWorking(working)
	if !board.wantsEsc() {
		t.Fatalf("an active edit must consume esc")
	}
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated := model.(*App)
	if updated.state != statePlanBoard {
		t.Fatalf("esc during an edit must not close the board")
	}
	if item.edit.Editing() {
		t.Fatalf("esc must discard the edit")
	}
	if item.edit.Working().Description != "first note" {
		t.Fatalf("discarded edit leaked: %q", item.edit.Working().Description)
	}
}

func TestEscOutsideEditModeReturnsToMenu(t *testing.T) {
	app := newTestApp(t, nil)
	openBoardWithItem(app)
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated := model.(*App)
	if updated.state != stateMainMenu {
		t.Fatalf("esc outside an edit must close the board")
	}
	if updated.planBoard != nil {
		t.Fatalf("closed board must be released")
	}
}
