package core

import (
	"fmt"
	"testing"
	"time"
)

// testReducer returns a reducer with a ticking fake clock and sequential IDs
// so transitions are fully deterministic.
func testReducer() Reducer {
	var (
		seq  int
		tick = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	)
	return Reducer{
		Now: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestReducer_AddNote(t *testing.T) {
	r := testReducer()
	s := NewState()

	s = r.Apply(s, AddNote{Title: "first"})
	s = r.Apply(s, AddNote{Title: "second", Body: "body", TagIDs: []string{"t1"}})

	if len(s.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(s.Notes))
	}
	// Newest first.
	if s.Notes[0].Title != "second" || s.Notes[1].Title != "first" {
		t.Errorf("notes not prepended: %q, %q", s.Notes[0].Title, s.Notes[1].Title)
	}
	if s.Notes[0].ID == s.Notes[1].ID {
		t.Error("notes share an ID")
	}
	if !s.Notes[0].CreatedAt.Equal(s.Notes[0].UpdatedAt) {
		t.Error("fresh note should have CreatedAt == UpdatedAt")
	}
	if s.SelectedID != s.Notes[0].ID {
		t.Errorf("new note not selected: %q", s.SelectedID)
	}
	if !s.Editing {
		t.Error("adding a note should enter edit mode")
	}
}

func TestReducer_UpdateNote(t *testing.T) {
	r := testReducer()

	t.Run("merges changes and bumps UpdatedAt", func(t *testing.T) {
		s := r.Apply(NewState(), AddNote{Title: "a", Body: "old"})
		id := s.Notes[0].ID
		before := s.Notes[0].UpdatedAt

		s = r.Apply(s, UpdateNote{ID: id, Changes: NoteChanges{Body: strPtr("new")}})

		n := s.Notes[0]
		if n.Body != "new" || n.Title != "a" {
			t.Errorf("unexpected note after merge: %+v", n)
		}
		if !n.UpdatedAt.After(before) {
			t.Error("UpdatedAt was not bumped")
		}
	})

	t.Run("no-op payload leaves state identical", func(t *testing.T) {
		s := r.Apply(NewState(), AddNote{Title: "a", Body: "b", TagIDs: []string{"x", "y"}})
		id := s.Notes[0].ID

		next := r.Apply(s, UpdateNote{ID: id, Changes: NoteChanges{
			Title:  strPtr("a"),
			Body:   strPtr("b"),
			TagIDs: []string{"y", "x"}, // same set, different order
		}})

		if &next.Notes[0] != &s.Notes[0] {
			t.Error("no-op update should keep the same notes slice")
		}
		if !next.Notes[0].UpdatedAt.Equal(s.Notes[0].UpdatedAt) {
			t.Error("no-op update must not bump UpdatedAt")
		}
	})

	t.Run("unknown ID is ignored", func(t *testing.T) {
		s := r.Apply(NewState(), AddNote{Title: "a"})
		next := r.Apply(s, UpdateNote{ID: "missing", Changes: NoteChanges{Title: strPtr("x")}})
		if next.Notes[0].Title != "a" {
			t.Error("update of unknown ID mutated state")
		}
	})
}

func TestReducer_DeleteAndRestore(t *testing.T) {
	r := testReducer()
	s := r.Apply(NewState(), AddNote{Title: "a"})
	id := s.Notes[0].ID

	s = r.Apply(s, DeleteNote{ID: id})
	if !s.Notes[0].Deleted() {
		t.Fatal("note not soft-deleted")
	}
	if s.SelectedID != "" || s.Editing {
		t.Error("deleting the selected note should clear selection")
	}

	s = r.Apply(s, RestoreNote{ID: id})
	if s.Notes[0].Deleted() {
		t.Error("restore did not clear DeletedAt")
	}
}

func TestReducer_Tags(t *testing.T) {
	r := testReducer()

	t.Run("add and update", func(t *testing.T) {
		s := r.Apply(NewState(), AddTag{Name: "work", Color: "#f00"})
		s = r.Apply(s, AddTag{Name: "home"})
		if len(s.Tags) != 2 || s.Tags[0].Name != "work" {
			t.Fatalf("unexpected tags: %+v", s.Tags)
		}

		s = r.Apply(s, UpdateTag{ID: s.Tags[0].ID, Changes: TagChanges{Name: strPtr("office")}})
		if s.Tags[0].Name != "office" || s.Tags[0].Color != "#f00" {
			t.Errorf("merge wrong: %+v", s.Tags[0])
		}
	})

	t.Run("delete cascades into note tag lists", func(t *testing.T) {
		s := r.Apply(NewState(), AddTag{Name: "work"})
		tagID := s.Tags[0].ID
		s = r.Apply(s, AddNote{Title: "a", TagIDs: []string{tagID, "other"}})
		s = r.Apply(s, AddNote{Title: "b", TagIDs: []string{tagID}})

		s = r.Apply(s, DeleteTag{ID: tagID})

		if len(s.Tags) != 0 {
			t.Fatalf("tag not removed: %+v", s.Tags)
		}
		for _, n := range s.Notes {
			if n.HasTag(tagID) {
				t.Errorf("note %q still references deleted tag", n.Title)
			}
		}
		if len(s.Notes[1].TagIDs) != 1 || s.Notes[1].TagIDs[0] != "other" {
			t.Errorf("unrelated tag reference lost: %+v", s.Notes[1].TagIDs)
		}
	})
}

func TestReducer_Select(t *testing.T) {
	r := testReducer()
	s := r.Apply(NewState(), AddNote{Title: "a"})
	id := s.Notes[0].ID

	s = r.Apply(s, SelectNote{ID: id})
	if s.SelectedID != id || s.Editing {
		t.Errorf("select should set ID and exit edit mode: %q editing=%v", s.SelectedID, s.Editing)
	}

	s = r.Apply(s, SelectNote{})
	if s.SelectedID != "" {
		t.Error("empty select should clear selection")
	}
}

func TestReducer_PreferencesAndFilters(t *testing.T) {
	r := testReducer()
	s := NewState()

	dark := ThemeDark
	s = r.Apply(s, UpdatePreferences{Changes: PreferencesChanges{Theme: &dark}})
	if s.Preferences.Theme != ThemeDark {
		t.Error("theme not merged")
	}
	if s.Preferences.Density != DensityComfortable {
		t.Error("untouched preference changed")
	}

	search := "foo"
	s = r.Apply(s, UpdateFilters{Changes: FilterChanges{Search: &search}})
	if s.Filters.Search != "foo" {
		t.Error("search not merged")
	}
	if s.Filters.SortBy != SortByUpdatedAt {
		t.Error("untouched filter changed")
	}
}

func TestReducer_ImportData(t *testing.T) {
	r := testReducer()
	s := r.Apply(NewState(), AddNote{Title: "old"})

	now := time.Now()
	imported := AppData{
		Version:     AppDataVersion,
		Notes:       []Note{{ID: "n1", Title: "new", CreatedAt: now, UpdatedAt: now}},
		Tags:        []Tag{{ID: "t1", Name: "x", CreatedAt: now, UpdatedAt: now}},
		Preferences: DefaultPreferences(),
	}
	s = r.Apply(s, ImportData{Data: imported})

	if len(s.Notes) != 1 || s.Notes[0].ID != "n1" {
		t.Errorf("import did not replace notes: %+v", s.Notes)
	}
	if len(s.Tags) != 1 {
		t.Errorf("import did not replace tags: %+v", s.Tags)
	}
	if s.SelectedID != "" || s.Editing {
		t.Error("import should clear selection")
	}
}
