package core

import (
	"testing"

	"pgregory.net/rapid"
)

// randomAction draws one action against the current state, preferring IDs
// that actually exist so mutating actions hit something.
func randomAction(t *rapid.T, s State) Action {
	noteID := func() string {
		if len(s.Notes) == 0 {
			return rapid.StringMatching(`id-[0-9]{1,3}`).Draw(t, "noteID")
		}
		return rapid.SampledFrom(s.Notes).Draw(t, "note").ID
	}
	tagID := func() string {
		if len(s.Tags) == 0 {
			return rapid.StringMatching(`tag-[0-9]{1,3}`).Draw(t, "tagID")
		}
		return rapid.SampledFrom(s.Tags).Draw(t, "tag").ID
	}

	switch rapid.IntRange(0, 7).Draw(t, "kind") {
	case 0:
		var ids []string
		if len(s.Tags) > 0 && rapid.Bool().Draw(t, "withTags") {
			ids = []string{tagID()}
		}
		return AddNote{
			Title:  rapid.StringN(0, 20, -1).Draw(t, "title"),
			Body:   rapid.StringN(0, 40, -1).Draw(t, "body"),
			TagIDs: ids,
		}
	case 1:
		title := rapid.StringN(0, 20, -1).Draw(t, "newTitle")
		return UpdateNote{ID: noteID(), Changes: NoteChanges{Title: &title}}
	case 2:
		return DeleteNote{ID: noteID()}
	case 3:
		return RestoreNote{ID: noteID()}
	case 4:
		return AddTag{Name: rapid.StringN(1, 10, -1).Draw(t, "tagName")}
	case 5:
		return DeleteTag{ID: tagID()}
	case 6:
		return SelectNote{ID: noteID()}
	default:
		pinned := rapid.Bool().Draw(t, "pinned")
		return UpdateNote{ID: noteID(), Changes: NoteChanges{Pinned: &pinned}}
	}
}

func TestReducer_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := testReducer()
		s := NewState()

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			s = r.Apply(s, randomAction(t, s))
		}

		// IDs stay unique.
		seen := make(map[string]bool)
		for _, n := range s.Notes {
			if seen[n.ID] {
				t.Fatalf("duplicate note ID %q", n.ID)
			}
			seen[n.ID] = true
		}
		for _, tag := range s.Tags {
			if seen[tag.ID] {
				t.Fatalf("duplicate tag ID %q", tag.ID)
			}
			seen[tag.ID] = true
		}

		// Timestamps stay ordered.
		for _, n := range s.Notes {
			if n.UpdatedAt.Before(n.CreatedAt) {
				t.Fatalf("note %q has UpdatedAt before CreatedAt", n.ID)
			}
		}

		// No note references a tag that was deleted; references created
		// before the tag existed (or to never-existing tags) are only ever
		// introduced by AddNote drawing from live tags, so every live
		// reference must resolve.
		live := make(map[string]bool, len(s.Tags))
		for _, tag := range s.Tags {
			live[tag.ID] = true
		}
		for _, n := range s.Notes {
			for _, id := range n.TagIDs {
				if !live[id] {
					t.Fatalf("note %q references missing tag %q", n.ID, id)
				}
			}
		}

		// Selection always resolves or is empty.
		if s.SelectedID != "" && noteIndex(s.Notes, s.SelectedID) < 0 {
			t.Fatalf("selection %q does not resolve", s.SelectedID)
		}

		// Every snapshot must pass the same validation gate used on load.
		if !ValidNotes(s.Notes) || !ValidTags(s.Tags) {
			t.Fatal("reducer produced a state that fails validation")
		}
	})
}
