package viewstate

import "testing"

func TestApplyAcceptsLatestTicket(t *testing.T) {
	var list ResourceList[string]
	ticket := list.Begin()
	if !list.Apply(ticket, []string{"a", "b"}, 2) {
		t.Fatalf("latest ticket must be accepted")
	}
	if list.Len() != 2 || list.Total() != 2 {
		t.Fatalf("expected 2 items total 2, got %d items total %d", list.Len(), list.Total())
	}
}

func TestApplyDiscardsStaleTicket(t *testing.T) {
	var list ResourceList[string]
	older := list.Begin()
	newer := list.Begin()
	if !list.Apply(newer, []string{"fresh"}, 1) {
		t.Fatalf("newer reload must be accepted")
	}
	// The older reload finishes late; it must not clobber the newer result.
	if list.Apply(older, []string{"stale", "stale"}, 2) {
		t.Fatalf("stale reload was accepted")
	}
	if list.Len() != 1 || list.Items()[0] != "fresh" {
		t.Fatalf("stale reload clobbered the list: %v", list.Items())
	}
}

func TestStaleResponseCannotArriveFirstEither(t *testing.T) {
	var list ResourceList[int]
	older := list.Begin()
	list.Begin()
	if list.Apply(older, []int{1}, 1) {
		t.Fatalf("a superseded reload must be discarded even if it lands first")
	}
	if list.Len() != 0 {
		t.Fatalf("discarded reload left items behind")
	}
}

func TestReplaceIsWholesale(t *testing.T) {
	var list ResourceList[string]
	list.Apply(list.Begin(), []string{"a", "b", "c"}, 3)
	list.Apply(list.Begin(), []string{"z"}, 1)
	if list.Len() != 1 || list.Items()[0] != "z" {
		t.Fatalf("reload must replace, not merge: %v", list.Items())
	}
}

func TestTotalMayExceedDisplayedPage(t *testing.T) {
	var list ResourceList[string]
	list.Apply(list.Begin(), []string{"page-one-only"}, 40)
	if list.Total() != 40 {
		t.Fatalf("server total lost, got %d", list.Total())
	}
}

func TestLatestTracksIssuedTickets(t *testing.T) {
	var list ResourceList[string]
	if list.Latest() != 0 {
		t.Fatalf("fresh list has no issued tickets")
	}
	first := list.Begin()
	if list.Latest() != first {
		t.Fatalf("Latest must follow Begin")
	}
}
