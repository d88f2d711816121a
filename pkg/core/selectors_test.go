package core

import (
	"testing"
	"time"
)

func noteAt(id, title string, min int, tags ...string) Note {
	at := time.Date(2026, 1, 1, 0, min, 0, 0, time.UTC)
	return Note{ID: id, Title: title, TagIDs: tags, CreatedAt: at, UpdatedAt: at}
}

func titlesOf(notes []Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func sameTitles(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilteredNotes_TagModes(t *testing.T) {
	s := NewState()
	s.Notes = []Note{
		noteAt("a", "A", 1, "x"),
		noteAt("b", "B", 2, "y"),
		noteAt("c", "C", 3, "x", "y"),
	}
	s.Filters.Tags = []string{"x", "y"}
	s.Filters.SortBy = SortByTitle
	s.Filters.SortDir = SortAsc

	t.Run("ANY matches at least one", func(t *testing.T) {
		s.Preferences.TagFilterMode = TagFilterAny
		got := titlesOf(FilteredNotes(s))
		if !sameTitles(got, "A", "B", "C") {
			t.Errorf("ANY: got %v", got)
		}
	})

	t.Run("ALL requires every tag", func(t *testing.T) {
		s.Preferences.TagFilterMode = TagFilterAll
		got := titlesOf(FilteredNotes(s))
		if !sameTitles(got, "C") {
			t.Errorf("ALL: got %v", got)
		}
	})
}

func TestFilteredNotes_Search(t *testing.T) {
	s := NewState()
	s.Notes = []Note{
		noteAt("a", "Meeting Notes", 1),
		noteAt("b", "Groceries", 2),
		{ID: "c", Title: "Todo", Body: "buy NOTEBOOK", CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}
	s.Filters.Search = "notes"

	got := titlesOf(FilteredNotes(s))
	// Case-insensitive, over title and body.
	if len(got) != 1 || got[0] != "Meeting Notes" {
		t.Errorf("search: got %v", got)
	}

	s.Filters.Search = "note"
	if got := FilteredNotes(s); len(got) != 2 {
		t.Errorf("substring should also hit the body: got %v", titlesOf(got))
	}
}

func TestFilteredNotes_VisibilityGates(t *testing.T) {
	now := time.Now()
	deleted := noteAt("d", "Deleted", 1)
	deleted.DeletedAt = &now
	archived := noteAt("r", "Archived", 2)
	archived.Archived = true

	s := NewState()
	s.Notes = []Note{deleted, archived, noteAt("v", "Visible", 3)}

	got := titlesOf(FilteredNotes(s))
	if !sameTitles(got, "Visible") {
		t.Fatalf("default view: got %v", got)
	}

	s.Filters.ShowArchived = true
	got = titlesOf(FilteredNotes(s))
	if len(got) != 2 {
		t.Errorf("ShowArchived should surface archived but never deleted: got %v", got)
	}
}

func TestFilteredNotes_Untagged(t *testing.T) {
	s := NewState()
	s.Notes = []Note{
		noteAt("a", "Tagged", 1, "x"),
		noteAt("b", "Bare", 2),
	}
	s.Filters.ShowUntagged = true

	got := titlesOf(FilteredNotes(s))
	if !sameTitles(got, "Bare") {
		t.Errorf("untagged: got %v", got)
	}
}

func TestFilteredNotes_Sort(t *testing.T) {
	s := NewState()
	s.Notes = []Note{
		noteAt("1", "b", 2),
		noteAt("2", "a", 3),
		noteAt("3", "c", 1),
	}

	t.Run("title ascending", func(t *testing.T) {
		s.Filters.SortBy = SortByTitle
		s.Filters.SortDir = SortAsc
		got := titlesOf(FilteredNotes(s))
		if !sameTitles(got, "a", "b", "c") {
			t.Errorf("got %v", got)
		}
	})

	t.Run("updatedAt descending", func(t *testing.T) {
		s.Filters.SortBy = SortByUpdatedAt
		s.Filters.SortDir = SortDesc
		got := titlesOf(FilteredNotes(s))
		if !sameTitles(got, "a", "b", "c") { // minutes 3, 2, 1
			t.Errorf("got %v", got)
		}
	})
}

func TestFilteredNotes_PinnedPartition(t *testing.T) {
	pinned := noteAt("p", "Pinned", 1)
	pinned.Pinned = true

	s := NewState()
	s.Notes = []Note{
		noteAt("a", "Newer", 3),
		pinned,
		noteAt("b", "Older", 2),
	}
	s.Filters.SortBy = SortByUpdatedAt
	s.Filters.SortDir = SortDesc
	s.Filters.ShowPinned = true

	got := titlesOf(FilteredNotes(s))
	// Pinned floats first; sort order holds within each partition.
	if !sameTitles(got, "Pinned", "Newer", "Older") {
		t.Errorf("got %v", got)
	}
}

func TestSelectedNoteAndTags(t *testing.T) {
	s := NewState()
	s.Notes = []Note{noteAt("n1", "A", 1, "t2", "t1", "ghost")}
	s.Tags = []Tag{
		{ID: "t1", Name: "one"},
		{ID: "t2", Name: "two"},
	}

	if _, ok := SelectedNote(s); ok {
		t.Error("no selection should yield no note")
	}
	s.SelectedID = "n1"
	if n, ok := SelectedNote(s); !ok || n.ID != "n1" {
		t.Error("selection did not resolve")
	}
	if !IsSelected(s, "n1") || IsSelected(s, "n2") {
		t.Error("IsSelected wrong")
	}

	tags := TagsForNote(s, "n1")
	// Note order preserved, unknown IDs skipped.
	if len(tags) != 2 || tags[0].Name != "two" || tags[1].Name != "one" {
		t.Errorf("TagsForNote: got %+v", tags)
	}

	if _, ok := TagByID(s, "ghost"); ok {
		t.Error("TagByID resolved a missing tag")
	}
}
