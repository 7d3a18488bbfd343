// internal/tui/planboard.go
//
// The plan board is where the mutate-then-reload pattern lives. Each
// progress note owns its own edit state and image gallery; every upload or
// delete is one two-phase command (mutation, then a fresh list fetch for
// the same scope) delivering a single combined outcome message, so the
// panel never observes an intermediate state between the two.

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stan-blog/console/internal/api"
	"github.com/stan-blog/console/internal/viewstate"
)

const (
	// fileTypePlanPic is the resource-type tag for plan progress images.
	fileTypePlanPic = "PLAN_PIC"

	galleryFirstPage = 1
	taskTimeout      = 30 * time.Second
)

var (
	dimTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	editBadgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	errorTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type planBoardMode int

const (
	modePlanSelect planBoardMode = iota
	modeProgressList
)

// galleryImage is one displayable child resource: the record id plus its
// absolute view URL.
type galleryImage struct {
	id  int64
	url string
}

// progressItem is the per-note component instance: authoritative entity,
// working copy, and the wholesale-replaced image list.
type progressItem struct {
	edit      viewstate.Edit[api.PlanProgress]
	images    viewstate.ResourceList[galleryImage]
	imgCursor int

	// submitting locks the upload/delete controls until the paired reload
	// resolves; saving locks the description update.
	submitting bool
	saving     bool
}

type planBoardView struct {
	app *App
	gen int

	mode       planBoardMode
	plans      []api.Plan
	planCursor int
	plan       api.Plan

	items   []*progressItem
	cursor  int
	loading bool
	loadErr string

	editor    textarea.Model
	pathInput textinput.Model
	prompting bool
}

type plansLoadedMsg struct {
	gen   int
	plans []api.Plan
	err   error
}

type progressesLoadedMsg struct {
	gen     int
	records []api.PlanProgress
	err     error
}

// galleryLoadedMsg is the display-context list load: errors are tolerated
// silently (the gallery just stays empty).
type galleryLoadedMsg struct {
	gen        int
	progressID string
	ticket     uint64
	images     []galleryImage
	total      int64
	err        error
}

// imagesMutatedMsg is the combined outcome of one mutation plus its paired
// reload. err set means the whole pair failed and the displayed list is
// untouched.
type imagesMutatedMsg struct {
	gen        int
	progressID string
	op         string
	ticket     uint64
	images     []galleryImage
	total      int64
	err        error
}

type progressSavedMsg struct {
	gen        int
	progressID string
	updated    api.PlanProgress
	err        error
}

func newPlanBoardView(app *App, gen int) *planBoardView {
	editor := textarea.New()
	editor.Placeholder = "Progress description"
	editor.CharLimit = 0
	pathInput := textinput.New()
	pathInput.Placeholder = "/path/to/image.png, /path/to/other.jpg"
	return &planBoardView{
		app:       app,
		gen:       gen,
		mode:      modePlanSelect,
		loading:   true,
		editor:    editor,
		pathInput: pathInput,
	}
}

func (v *planBoardView) Init() tea.Cmd {
	return v.loadPlansCmd()
}

// wantsEsc reports whether the board should consume esc itself instead of
// letting the app close it.
func (v *planBoardView) wantsEsc() bool {
	if v.prompting {
		return true
	}
	item := v.selectedItem()
	return item != nil && item.edit.Editing()
}

func (v *planBoardView) selectedItem() *progressItem {
	if v.mode != modeProgressList || v.cursor < 0 || v.cursor >= len(v.items) {
		return nil
	}
	return v.items[v.cursor]
}

func (v *planBoardView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case plansLoadedMsg:
		if !v.app.genCurrent(m.gen) {
			return nil
		}
		v.loading = false
		if m.err != nil {
			v.loadErr = m.err.Error()
			v.app.logError("Plan list load failed: %v", m.err)
			return nil
		}
		v.loadErr = ""
		v.plans = m.plans
		if v.planCursor >= len(v.plans) {
			v.planCursor = 0
		}
		return nil

	case progressesLoadedMsg:
		return v.handleProgressesLoaded(m)

	case galleryLoadedMsg:
		if !v.app.genCurrent(m.gen) {
			return nil
		}
		item := v.itemByID(m.progressID)
		if item == nil {
			return nil
		}
		if m.err != nil {
			// Gallery loads in display contexts fail silently.
			v.app.logWarn("Image list for %s unavailable: %v", m.progressID, m.err)
			return nil
		}
		item.images.Apply(m.ticket, m.images, m.total)
		return nil

	case imagesMutatedMsg:
		return v.handleImagesMutated(m)

	case progressSavedMsg:
		return v.handleProgressSaved(m)

	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return nil
}

func (v *planBoardView) handleProgressesLoaded(m progressesLoadedMsg) tea.Cmd {
	if !v.app.genCurrent(m.gen) {
		return nil
	}
	v.loading = false
	if m.err != nil {
		v.loadErr = m.err.Error()
		v.app.logError("Progress list load failed: %v", m.err)
		return nil
	}
	v.loadErr = ""
	v.mode = modeProgressList
	v.cursor = 0
	v.items = make([]*progressItem, 0, len(m.records))
	cmds := make([]tea.Cmd, 0, len(m.records))
	for _, record := range m.records {
		item := &progressItem{edit: viewstate.NewEdit(record)}
		v.items = append(v.items, item)
		// Initial gallery load per note; stale responses are discarded by
		// the ticket check.
		cmds = append(cmds, v.loadGalleryCmd(record.ID, item.images.Begin()))
	}
	return tea.Batch(cmds...)
}

func (v *planBoardView) handleImagesMutated(m imagesMutatedMsg) tea.Cmd {
	if !v.app.genCurrent(m.gen) {
		return nil
	}
	item := v.itemByID(m.progressID)
	if item == nil {
		return nil
	}
	item.submitting = false
	if m.err != nil {
		// Failed mutations leave the displayed list untouched.
		v.app.flash("✗ %s failed: %v", m.op, compactError(m.err))
		v.app.logError("%s for %s failed: %v", m.op, m.progressID, m.err)
		return nil
	}
	accepted := item.images.Apply(m.ticket, m.images, m.total)
	if !accepted {
		v.app.logWarn("Discarded stale %s reload for %s", m.op, m.progressID)
		return nil
	}
	if item.imgCursor >= item.images.Len() {
		item.imgCursor = max(0, item.images.Len()-1)
	}
	// Success is announced only now, after the reload landed, so the list
	// on screen matches what the user is told.
	v.app.flash("✓ %s complete · %d image(s)", m.op, item.images.Len())
	v.app.logInfo("%s for %s complete (%d records)", m.op, m.progressID, item.images.Len())
	return nil
}

func (v *planBoardView) handleProgressSaved(m progressSavedMsg) tea.Cmd {
	if !v.app.genCurrent(m.gen) {
		return nil
	}
	item := v.itemByID(m.progressID)
	if item == nil {
		return nil
	}
	item.saving = false
	if m.err != nil {
		// Stay in edit mode with the working copy intact so the operator
		// can retry.
		v.app.flash("✗ Save failed: %v", compactError(m.err))
		v.app.logError("Progress %s save failed: %v", m.progressID, m.err)
		return nil
	}
	// The server response is the authoritative entity; no reload needed.
	item.edit.Commit(m.updated)
	v.app.flash("✓ Progress saved")
	v.app.logInfo("Progress %s saved", m.progressID)
	return nil
}

func (v *planBoardView) handleKey(m tea.KeyMsg) tea.Cmd {
	if v.prompting {
		return v.handlePromptKey(m)
	}
	if v.mode == modePlanSelect {
		return v.handlePlanSelectKey(m)
	}
	item := v.selectedItem()
	if item != nil && item.edit.Editing() {
		return v.handleEditingKey(m, item)
	}

	switch m.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
	case "e":
		if item == nil || item.saving {
			return nil
		}
		item.edit.Enter()
		v.editor.SetValue(item.edit.Working().Description)
		v.editor.Focus()
		v.app.flash("Editing · e saves, esc discards, u uploads, x deletes image")
	case "r":
		v.loading = true
		return v.loadProgressesCmd()
	}
	return nil
}

func (v *planBoardView) handlePlanSelectKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "up", "k":
		if v.planCursor > 0 {
			v.planCursor--
		}
	case "down", "j":
		if v.planCursor < len(v.plans)-1 {
			v.planCursor++
		}
	case "r":
		v.loading = true
		return v.loadPlansCmd()
	case "enter":
		if v.planCursor < 0 || v.planCursor >= len(v.plans) {
			return nil
		}
		v.plan = v.plans[v.planCursor]
		v.loading = true
		v.app.logInfo("Plan · %s opened", v.plan.ID)
		return v.loadProgressesCmd()
	}
	return nil
}

func (v *planBoardView) handleEditingKey(m tea.KeyMsg, item *progressItem) tea.Cmd {
	switch m.String() {
	case "esc":
		item.edit.Abort()
		v.editor.Blur()
		v.app.flash("Edit discarded")
		return nil
	case "e":
		// Toggling edit off commits: the working copy is submitted and the
		// entity is replaced only by the server's response.
		if item.saving {
			return nil
		}
		return v.commitEdit(item)
	case "u":
		if item.submitting {
			v.app.flash("Upload already in progress")
			return nil
		}
		v.prompting = true
		v.pathInput.SetValue("")
		v.pathInput.Focus()
		return textinput.Blink
	case "x":
		return v.deleteSelectedImage(item)
	case "left":
		if item.imgCursor > 0 {
			item.imgCursor--
		}
		return nil
	case "right":
		if item.imgCursor < item.images.Len()-1 {
			item.imgCursor++
		}
		return nil
	}
	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(m)
	working := item.edit.Working()
	working.Description = v.editor.Value()
	item.edit.SetWorking(working)
	return cmd
}

func (v *planBoardView) handlePromptKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "esc":
		v.prompting = false
		v.pathInput.Blur()
		return nil
	case "enter":
		v.prompting = false
		v.pathInput.Blur()
		return v.uploadFromPaths(strings.TrimSpace(v.pathInput.Value()))
	}
	var cmd tea.Cmd
	v.pathInput, cmd = v.pathInput.Update(m)
	return cmd
}

func (v *planBoardView) commitEdit(item *progressItem) tea.Cmd {
	entity := item.edit.Entity()
	working := item.edit.Working()
	if working.Description == entity.Description {
		// Nothing changed; leave edit mode without a round trip.
		item.edit.Abort()
		v.editor.Blur()
		return nil
	}
	item.saving = true
	v.editor.Blur()
	update := api.ProgressUpdate{
		ID:          entity.ID,
		PlanID:      entity.PlanID,
		Description: working.Description,
	}
	return v.saveProgressCmd(update)
}

func (v *planBoardView) deleteSelectedImage(item *progressItem) tea.Cmd {
	if item.submitting {
		v.app.flash("Another image operation is in progress")
		return nil
	}
	if item.images.Len() == 0 {
		return nil
	}
	img := item.images.Items()[item.imgCursor]
	item.submitting = true
	progressID := item.edit.Entity().ID
	ticket := item.images.Begin()
	return v.mutateImagesCmd(progressID, "Delete", ticket, func(ctx context.Context) error {
		return v.app.client.DeleteFile(ctx, img.id)
	})
}

func (v *planBoardView) uploadFromPaths(raw string) tea.Cmd {
	item := v.selectedItem()
	if item == nil || raw == "" {
		return nil
	}
	if item.submitting {
		v.app.flash("Upload already in progress")
		return nil
	}
	paths := splitPathList(raw)
	if len(paths) == 0 {
		return nil
	}
	item.submitting = true
	progressID := item.edit.Entity().ID
	ticket := item.images.Begin()
	client := v.app.client
	return v.mutateImagesCmd(progressID, "Upload", ticket, func(ctx context.Context) error {
		uploads := make([]api.Upload, 0, len(paths))
		for _, path := range paths {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			uploads = append(uploads, api.Upload{Name: filepath.Base(path), Content: content})
		}
		return client.BatchUploadFiles(ctx, progressID, fileTypePlanPic, uploads, true)
	})
}

// loadPlansCmd fetches the plan list.
func (v *planBoardView) loadPlansCmd() tea.Cmd {
	gen := v.gen
	client := v.app.client
	size := v.app.config.PageSize()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		plans, _, err := client.ListPlans(ctx, galleryFirstPage, size)
		return plansLoadedMsg{gen: gen, plans: plans, err: err}
	}
}

func (v *planBoardView) loadProgressesCmd() tea.Cmd {
	gen := v.gen
	client := v.app.client
	planID := v.plan.ID
	size := v.app.config.PageSize()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		records, _, err := client.ListProgresses(ctx, planID, galleryFirstPage, size)
		return progressesLoadedMsg{gen: gen, records: records, err: err}
	}
}

func (v *planBoardView) loadGalleryCmd(progressID string, ticket uint64) tea.Cmd {
	gen := v.gen
	client := v.app.client
	size := v.app.config.PageSize()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		records, total, err := client.ListFilesBySource(ctx, progressID, fileTypePlanPic, galleryFirstPage, size)
		if err != nil {
			return galleryLoadedMsg{gen: gen, progressID: progressID, ticket: ticket, err: err}
		}
		return galleryLoadedMsg{
			gen:        gen,
			progressID: progressID,
			ticket:     ticket,
			images:     toGalleryImages(client, records),
			total:      total,
		}
	}
}

// mutateImagesCmd runs one mutation and, only if it succeeds, the paired
// reload for the same (srcId, fileType) scope. The two phases surface as a
// single message so no caller can observe the gap between them.
func (v *planBoardView) mutateImagesCmd(progressID, op string, ticket uint64, mutate func(context.Context) error) tea.Cmd {
	gen := v.gen
	client := v.app.client
	size := v.app.config.PageSize()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		if err := mutate(ctx); err != nil {
			return imagesMutatedMsg{gen: gen, progressID: progressID, op: op, ticket: ticket, err: err}
		}
		records, total, err := client.ListFilesBySource(ctx, progressID, fileTypePlanPic, galleryFirstPage, size)
		if err != nil {
			return imagesMutatedMsg{gen: gen, progressID: progressID, op: op, ticket: ticket, err: err}
		}
		return imagesMutatedMsg{
			gen:        gen,
			progressID: progressID,
			op:         op,
			ticket:     ticket,
			images:     toGalleryImages(client, records),
			total:      total,
		}
	}
}

func (v *planBoardView) saveProgressCmd(update api.ProgressUpdate) tea.Cmd {
	gen := v.gen
	client := v.app.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		updated, err := client.UpdateProgress(ctx, update)
		return progressSavedMsg{gen: gen, progressID: update.ID, updated: updated, err: err}
	}
}

func (v *planBoardView) itemByID(progressID string) *progressItem {
	for _, item := range v.items {
		if item.edit.Entity().ID == progressID {
			return item
		}
	}
	return nil
}

// toGalleryImages keeps only records with a view path and joins each onto
// the configured base URL.
func toGalleryImages(client *api.Client, records []api.FileRecord) []galleryImage {
	images := make([]galleryImage, 0, len(records))
	for _, record := range records {
		if record.ViewURL == "" {
			continue
		}
		images = append(images, galleryImage{id: record.ID, url: client.ViewURL(record.ViewURL)})
	}
	return images
}

func splitPathList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}

func compactError(err error) string {
	if err == nil {
		return ""
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return "request failed"
}

func (v *planBoardView) View() string {
	if v.loading {
		return "Loading…"
	}
	if v.loadErr != "" {
		return errorTextStyle.Render(fmt.Sprintf("⚠ %s", v.loadErr)) + "\n" + dimTextStyle.Render("r → retry    esc → back")
	}
	if v.mode == modePlanSelect {
		return v.renderPlanSelect()
	}
	return v.renderProgressList()
}

func (v *planBoardView) renderPlanSelect() string {
	if len(v.plans) == 0 {
		return dimTextStyle.Render("No plans yet. esc → back")
	}
	lines := []string{selectedItemStyle.Render("Select a plan"), ""}
	for i, plan := range v.plans {
		marker := "  "
		title := plan.Title
		if title == "" {
			title = plan.ID
		}
		if i == v.planCursor {
			marker = "> "
			title = selectedItemStyle.Render(title)
		}
		lines = append(lines, marker+title)
	}
	lines = append(lines, "", dimTextStyle.Render("Enter → open    r → refresh    esc → back"))
	return strings.Join(lines, "\n")
}

func (v *planBoardView) renderProgressList() string {
	title := v.plan.Title
	if title == "" {
		title = v.plan.ID
	}
	lines := []string{selectedItemStyle.Render(fmt.Sprintf("Plan · %s", title)), ""}
	if len(v.items) == 0 {
		lines = append(lines, dimTextStyle.Render("No progress notes yet."))
	}
	for i, item := range v.items {
		lines = append(lines, v.renderProgressItem(item, i == v.cursor)...)
	}
	if v.prompting {
		lines = append(lines, "", "Upload paths: "+v.pathInput.View())
	}
	lines = append(lines, "", dimTextStyle.Render("e → edit/save    r → refresh    esc → back"))
	return strings.Join(lines, "\n")
}

func (v *planBoardView) renderProgressItem(item *progressItem, selected bool) []string {
	entity := item.edit.Entity()
	header := entity.CreateTime
	if header == "" {
		header = entity.ID
	}
	switch {
	case item.saving:
		header += " · " + editBadgeStyle.Render("saving…")
	case item.edit.Editing():
		header += " · " + editBadgeStyle.Render("editing")
	}
	if item.submitting {
		header += " · " + editBadgeStyle.Render("uploading…")
	}
	if selected {
		header = "> " + selectedItemStyle.Render(header)
	} else {
		header = "  " + dimTextStyle.Render(header)
	}
	lines := []string{header}
	if selected && item.edit.Editing() {
		lines = append(lines, v.editor.View())
	} else {
		lines = append(lines, "  "+item.edit.Working().Description)
	}
	for i, img := range item.images.Items() {
		marker := "   "
		if selected && item.edit.Editing() && i == item.imgCursor {
			marker = " → "
		}
		lines = append(lines, dimTextStyle.Render(fmt.Sprintf("%s[%d] %s", marker, img.id, img.url)))
	}
	lines = append(lines, "")
	return lines
}
