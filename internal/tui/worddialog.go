package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stan-blog/console/internal/api"
)

const (
	wordFieldVocabulary = iota
	wordFieldText
	wordFieldPartOfSpeech
	wordFieldChinese
	wordFieldEnglish
	wordFieldCount
)

// wordDialog creates vocabulary words. Saving is the usual two-phase task:
// create, then reload the vocabulary's word list so the display reflects
// server truth rather than the submitted payload.
type wordDialog struct {
	app *App
	gen int

	inputs     []textinput.Model
	focus      int
	submitting bool
	words      []api.Word
}

type wordSavedMsg struct {
	gen          int
	vocabularyID string
	words        []api.Word
	err          error
}

func newWordDialog(app *App, gen int) *wordDialog {
	labels := []string{"Vocabulary ID", "Word", "Part of speech", "Meaning (Chinese)", "Meaning (English)"}
	inputs := make([]textinput.Model, wordFieldCount)
	for i := range inputs {
		input := textinput.New()
		input.Placeholder = labels[i]
		inputs[i] = input
	}
	inputs[wordFieldVocabulary].Focus()
	return &wordDialog{app: app, gen: gen, inputs: inputs}
}

func (d *wordDialog) Init() tea.Cmd {
	return textinput.Blink
}

func (d *wordDialog) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case wordSavedMsg:
		if !d.app.genCurrent(m.gen) {
			return nil
		}
		d.submitting = false
		if m.err != nil {
			d.app.flash("✗ Word save failed: %v", compactError(m.err))
			d.app.logError("Word save failed: %v", m.err)
			return nil
		}
		d.words = m.words
		d.resetForm(m.vocabularyID)
		d.app.flash("✓ Word saved · vocabulary now has %d word(s)", len(m.words))
		d.app.logInfo("Word saved to vocabulary %s", m.vocabularyID)
		return nil

	case tea.KeyMsg:
		return d.handleKey(m)
	}
	return nil
}

func (d *wordDialog) handleKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "tab", "down":
		d.setFocus((d.focus + 1) % wordFieldCount)
		return textinput.Blink
	case "shift+tab", "up":
		d.setFocus((d.focus + wordFieldCount - 1) % wordFieldCount)
		return textinput.Blink
	case "ctrl+s", "enter":
		return d.save()
	}
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(m)
	return cmd
}

func (d *wordDialog) setFocus(focus int) {
	d.inputs[d.focus].Blur()
	d.focus = focus
	d.inputs[d.focus].Focus()
}

func (d *wordDialog) save() tea.Cmd {
	if d.submitting {
		return nil
	}
	word := api.Word{
		VocabularyID:     strings.TrimSpace(d.inputs[wordFieldVocabulary].Value()),
		Text:             strings.TrimSpace(d.inputs[wordFieldText].Value()),
		PartOfSpeech:     strings.TrimSpace(d.inputs[wordFieldPartOfSpeech].Value()),
		MeaningInChinese: strings.TrimSpace(d.inputs[wordFieldChinese].Value()),
		MeaningInEnglish: strings.TrimSpace(d.inputs[wordFieldEnglish].Value()),
	}
	if word.VocabularyID == "" || word.Text == "" {
		d.app.flash("Vocabulary ID and word are required")
		return nil
	}
	d.submitting = true
	gen := d.gen
	client := d.app.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()
		if err := client.CreateWord(ctx, word); err != nil {
			return wordSavedMsg{gen: gen, vocabularyID: word.VocabularyID, err: err}
		}
		words, err := client.ListWords(ctx, word.VocabularyID)
		return wordSavedMsg{gen: gen, vocabularyID: word.VocabularyID, words: words, err: err}
	}
}

// resetForm clears the word fields but keeps the vocabulary id so several
// words can be added in a row.
func (d *wordDialog) resetForm(vocabularyID string) {
	for i := range d.inputs {
		d.inputs[i].SetValue("")
	}
	d.inputs[wordFieldVocabulary].SetValue(vocabularyID)
	d.setFocus(wordFieldText)
}

func (d *wordDialog) View() string {
	lines := []string{selectedItemStyle.Render("New Word"), ""}
	for i := range d.inputs {
		lines = append(lines, d.inputs[i].View())
	}
	if d.submitting {
		lines = append(lines, "", editBadgeStyle.Render("Saving…"))
	}
	if len(d.words) > 0 {
		lines = append(lines, "", dimTextStyle.Render(fmt.Sprintf("Vocabulary words (%d):", len(d.words))))
		for _, word := range d.words {
			lines = append(lines, dimTextStyle.Render("  · "+word.Text))
		}
	}
	lines = append(lines, "", dimTextStyle.Render("enter → save    tab → next field    esc → back"))
	return strings.Join(lines, "\n")
}
