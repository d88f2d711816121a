package core

import (
	"sort"
	"strings"
)

// Selectors are pure derived views over a state snapshot. They never mutate
// the state they read.

// FilteredNotes returns the visible note list for the current filters.
//
// Pipeline:
//  1. drop soft-deleted notes
//  2. drop archived notes unless ShowArchived
//  3. tag filter (ANY: at least one filter tag; ALL: every filter tag)
//  4. untagged filter if set
//  5. case-insensitive substring search over title+body
//  6. sort by SortBy/SortDir
//  7. if ShowPinned, stable-partition pinned notes first, keeping the sort
//     order within each partition
func FilteredNotes(s State) []Note {
	f := s.Filters

	var out []Note
	for _, n := range s.Notes {
		if n.Deleted() {
			continue
		}
		if n.Archived && !f.ShowArchived {
			continue
		}
		if !matchesTags(n, f.Tags, s.Preferences.TagFilterMode) {
			continue
		}
		if f.ShowUntagged && len(n.TagIDs) > 0 {
			continue
		}
		if !matchesSearch(n, f.Search) {
			continue
		}
		out = append(out, n)
	}

	sortNotes(out, f.SortBy, f.SortDir)

	if f.ShowPinned {
		out = partitionPinned(out)
	}
	return out
}

// SelectedNote returns the currently selected note, if any.
func SelectedNote(s State) (Note, bool) {
	if s.SelectedID == "" {
		return Note{}, false
	}
	idx := noteIndex(s.Notes, s.SelectedID)
	if idx < 0 {
		return Note{}, false
	}
	return s.Notes[idx], true
}

// IsSelected reports whether the given note is the current selection.
func IsSelected(s State, id string) bool {
	return id != "" && s.SelectedID == id
}

// TagsForNote resolves a note's tag IDs to Tag values, preserving the note's
// tag order. Unknown IDs are skipped.
func TagsForNote(s State, noteID string) []Tag {
	idx := noteIndex(s.Notes, noteID)
	if idx < 0 {
		return nil
	}

	byID := make(map[string]Tag, len(s.Tags))
	for _, t := range s.Tags {
		byID[t.ID] = t
	}

	var out []Tag
	for _, id := range s.Notes[idx].TagIDs {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// TagByID looks a tag up directly.
func TagByID(s State, id string) (Tag, bool) {
	for _, t := range s.Tags {
		if t.ID == id {
			return t, true
		}
	}
	return Tag{}, false
}

func matchesTags(n Note, filterTags []string, mode TagFilterMode) bool {
	if len(filterTags) == 0 {
		return true
	}
	switch mode {
	case TagFilterAll:
		for _, id := range filterTags {
			if !n.HasTag(id) {
				return false
			}
		}
		return true
	default: // ANY
		for _, id := range filterTags {
			if n.HasTag(id) {
				return true
			}
		}
		return false
	}
}

func matchesSearch(n Note, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Body), q)
}

func sortNotes(notes []Note, by SortField, dir SortDirection) {
	sort.SliceStable(notes, func(i, j int) bool {
		var less bool
		switch by {
		case SortByTitle:
			less = notes[i].Title < notes[j].Title
		case SortByCreatedAt:
			less = notes[i].CreatedAt.Before(notes[j].CreatedAt)
		default:
			less = notes[i].UpdatedAt.Before(notes[j].UpdatedAt)
		}
		if dir == SortDesc {
			return !less && !equalByField(notes[i], notes[j], by)
		}
		return less
	})
}

func equalByField(a, b Note, by SortField) bool {
	switch by {
	case SortByTitle:
		return a.Title == b.Title
	case SortByCreatedAt:
		return a.CreatedAt.Equal(b.CreatedAt)
	default:
		return a.UpdatedAt.Equal(b.UpdatedAt)
	}
}

// partitionPinned floats pinned notes to the front. The partition is stable:
// the already-sorted order is preserved within each half.
func partitionPinned(notes []Note) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.Pinned {
			out = append(out, n)
		}
	}
	for _, n := range notes {
		if !n.Pinned {
			out = append(out, n)
		}
	}
	return out
}
