package viewstate

import "testing"

type note struct {
	ID   string
	Text string
}

func TestWorkingMirrorsEntityOutsideEditMode(t *testing.T) {
	edit := NewEdit(note{ID: "n1", Text: "server"})
	if edit.Editing() {
		t.Fatalf("a fresh edit must start outside edit mode")
	}
	if got := edit.Working(); got.Text != "server" {
		t.Fatalf("working copy must mirror entity outside edit mode, got %q", got.Text)
	}
}

func TestSetWorkingIgnoredOutsideEditMode(t *testing.T) {
	edit := NewEdit(note{ID: "n1", Text: "server"})
	edit.SetWorking(note{ID: "n1", Text: "drift"})
	if got := edit.Working(); got.Text != "server" {
		t.Fatalf("displayed value drifted from entity while not editing: %q", got.Text)
	}
}

func TestEnterSeedsWorkingFromEntity(t *testing.T) {
	edit := NewEdit(note{ID: "n1", Text: "server"})
	edit.Enter()
	if !edit.Editing() {
		t.Fatalf("expected edit mode on")
	}
	edit.SetWorking(note{ID: "n1", Text: "local change"})
	if edit.Entity().Text != "server" {
		t.Fatalf("entity must stay untouched while editing")
	}
	if edit.Working().Text != "local change" {
		t.Fatalf("working copy lost the local change")
	}
}

func TestReenterKeepsCurrentWorkingCopy(t *testing.T) {
	edit := NewEdit(note{Text: "server"})
	edit.Enter()
	edit.SetWorking(note{Text: "half-typed"})
	edit.Enter()
	if edit.Working().Text != "half-typed" {
		t.Fatalf("re-entering edit mode discarded the working copy")
	}
}

func TestCommitTakesConfirmedValueOnly(t *testing.T) {
	edit := NewEdit(note{ID: "n1", Text: "server"})
	edit.Enter()
	edit.SetWorking(note{ID: "n1", Text: "what I typed"})
	// The server normalized the text; that response wins, not the input.
	edit.Commit(note{ID: "n1", Text: "what the server stored"})
	if edit.Editing() {
		t.Fatalf("commit must leave edit mode")
	}
	if edit.Entity().Text != "what the server stored" {
		t.Fatalf("entity is not the confirmed value: %q", edit.Entity().Text)
	}
	if edit.Working().Text != "what the server stored" {
		t.Fatalf("working copy must converge on the confirmed value")
	}
}

func TestAbortDiscardsWorkingCopy(t *testing.T) {
	edit := NewEdit(note{Text: "server"})
	edit.Enter()
	edit.SetWorking(note{Text: "abandoned"})
	edit.Abort()
	if edit.Editing() {
		t.Fatalf("abort must leave edit mode")
	}
	if edit.Working().Text != "server" {
		t.Fatalf("aborted edit leaked into the displayed value: %q", edit.Working().Text)
	}
}
