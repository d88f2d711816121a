package core

import "time"

// Clock supplies the current time. Injectable for deterministic tests.
type Clock func() time.Time

// State is the canonical in-memory model. It is treated as immutable: the
// reducer never mutates a state in place, every transition produces fresh
// collections for whatever changed.
type State struct {
	Notes       []Note
	Tags        []Tag
	Preferences Preferences
	Filters     FilterState
	SelectedID  string
	Editing     bool
}

// NewState returns the initial state used when storage is empty.
func NewState() State {
	return State{
		Preferences: DefaultPreferences(),
		Filters:     DefaultFilters(),
	}
}

// Reducer applies actions to states. Now and NewID are injected so that
// transitions stay deterministic under test.
type Reducer struct {
	Now   Clock
	NewID IDFunc
}

// NewReducer returns a reducer backed by the wall clock and UUID generation.
func NewReducer() Reducer {
	return Reducer{Now: time.Now, NewID: NewID}
}

// Apply is the single mutation entry point. It returns the next state; the
// previous state is left untouched. Unknown action types cannot occur because
// Action is sealed.
func (r Reducer) Apply(s State, act Action) State {
	switch a := act.(type) {
	case AddNote:
		return r.addNote(s, a)
	case UpdateNote:
		return r.updateNote(s, a)
	case DeleteNote:
		return r.deleteNote(s, a)
	case RestoreNote:
		return r.restoreNote(s, a)
	case AddTag:
		return r.addTag(s, a)
	case UpdateTag:
		return r.updateTag(s, a)
	case DeleteTag:
		return r.deleteTag(s, a)
	case UpdatePreferences:
		return mergePreferences(s, a)
	case UpdateFilters:
		return mergeFilters(s, a)
	case SelectNote:
		s.SelectedID = a.ID
		s.Editing = false
		return s
	case ImportData:
		return importData(s, a)
	}
	// Action is sealed; reaching here means a variant was added without
	// updating this switch.
	panic("core: unhandled action")
}

func (r Reducer) addNote(s State, a AddNote) State {
	now := r.Now()
	note := Note{
		ID:        r.NewID(),
		Title:     a.Title,
		Body:      a.Body,
		TagIDs:    append([]string(nil), a.TagIDs...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	notes := make([]Note, 0, len(s.Notes)+1)
	notes = append(notes, note)
	notes = append(notes, s.Notes...)

	s.Notes = notes
	s.SelectedID = note.ID
	s.Editing = true
	return s
}

func (r Reducer) updateNote(s State, a UpdateNote) State {
	idx := noteIndex(s.Notes, a.ID)
	if idx < 0 {
		return s
	}

	cur := s.Notes[idx]
	next := cur
	if a.Changes.Title != nil {
		next.Title = *a.Changes.Title
	}
	if a.Changes.Body != nil {
		next.Body = *a.Changes.Body
	}
	if a.Changes.TagIDs != nil {
		next.TagIDs = append([]string(nil), a.Changes.TagIDs...)
	}
	if a.Changes.Pinned != nil {
		next.Pinned = *a.Changes.Pinned
	}
	if a.Changes.Archived != nil {
		next.Archived = *a.Changes.Archived
	}

	// No-op short-circuit: identical payloads keep the same collection, so
	// observers comparing slice identity see nothing happened and UpdatedAt
	// is not bumped.
	if next.Title == cur.Title && next.Body == cur.Body &&
		next.Pinned == cur.Pinned && next.Archived == cur.Archived &&
		sameTagSet(next.TagIDs, cur.TagIDs) {
		return s
	}

	next.UpdatedAt = r.Now()
	notes := append([]Note(nil), s.Notes...)
	notes[idx] = next
	s.Notes = notes
	return s
}

func (r Reducer) deleteNote(s State, a DeleteNote) State {
	idx := noteIndex(s.Notes, a.ID)
	if idx < 0 {
		return s
	}

	now := r.Now()
	notes := append([]Note(nil), s.Notes...)
	notes[idx].DeletedAt = &now
	s.Notes = notes

	if s.SelectedID == a.ID {
		s.SelectedID = ""
		s.Editing = false
	}
	return s
}

func (r Reducer) restoreNote(s State, a RestoreNote) State {
	idx := noteIndex(s.Notes, a.ID)
	if idx < 0 || s.Notes[idx].DeletedAt == nil {
		return s
	}

	notes := append([]Note(nil), s.Notes...)
	notes[idx].DeletedAt = nil
	s.Notes = notes
	return s
}

func (r Reducer) addTag(s State, a AddTag) State {
	now := r.Now()
	tag := Tag{
		ID:        r.NewID(),
		Name:      a.Name,
		Color:     a.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tags := make([]Tag, 0, len(s.Tags)+1)
	tags = append(tags, s.Tags...)
	tags = append(tags, tag)
	s.Tags = tags
	return s
}

func (r Reducer) updateTag(s State, a UpdateTag) State {
	idx := -1
	for i, t := range s.Tags {
		if t.ID == a.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}

	next := s.Tags[idx]
	if a.Changes.Name != nil {
		next.Name = *a.Changes.Name
	}
	if a.Changes.Color != nil {
		next.Color = *a.Changes.Color
	}
	next.UpdatedAt = r.Now()

	tags := append([]Tag(nil), s.Tags...)
	tags[idx] = next
	s.Tags = tags
	return s
}

// deleteTag removes the tag and cascades into every note's tag list within
// the same transition. There is no intermediate state where a note still
// references the deleted tag.
func (r Reducer) deleteTag(s State, a DeleteTag) State {
	tags := make([]Tag, 0, len(s.Tags))
	found := false
	for _, t := range s.Tags {
		if t.ID == a.ID {
			found = true
			continue
		}
		tags = append(tags, t)
	}
	if !found {
		return s
	}
	s.Tags = tags

	notes := append([]Note(nil), s.Notes...)
	for i, n := range notes {
		if !n.HasTag(a.ID) {
			continue
		}
		ids := make([]string, 0, len(n.TagIDs)-1)
		for _, id := range n.TagIDs {
			if id != a.ID {
				ids = append(ids, id)
			}
		}
		notes[i].TagIDs = ids
	}
	s.Notes = notes
	return s
}

func mergePreferences(s State, a UpdatePreferences) State {
	if a.Changes.Theme != nil {
		s.Preferences.Theme = *a.Changes.Theme
	}
	if a.Changes.Density != nil {
		s.Preferences.Density = *a.Changes.Density
	}
	if a.Changes.TagFilterMode != nil {
		s.Preferences.TagFilterMode = *a.Changes.TagFilterMode
	}
	return s
}

func mergeFilters(s State, a UpdateFilters) State {
	c := a.Changes
	if c.Search != nil {
		s.Filters.Search = *c.Search
	}
	if c.Tags != nil {
		s.Filters.Tags = append([]string(nil), c.Tags...)
	}
	if c.ShowArchived != nil {
		s.Filters.ShowArchived = *c.ShowArchived
	}
	if c.ShowPinned != nil {
		s.Filters.ShowPinned = *c.ShowPinned
	}
	if c.ShowUntagged != nil {
		s.Filters.ShowUntagged = *c.ShowUntagged
	}
	if c.SortBy != nil {
		s.Filters.SortBy = *c.SortBy
	}
	if c.SortDir != nil {
		s.Filters.SortDir = *c.SortDir
	}
	return s
}

// importData replaces the persisted slices wholesale. This is not a merge:
// whatever was in memory before is gone.
func importData(s State, a ImportData) State {
	s.Notes = append([]Note(nil), a.Data.Notes...)
	s.Tags = append([]Tag(nil), a.Data.Tags...)
	s.Preferences = a.Data.Preferences
	s.SelectedID = ""
	s.Editing = false
	return s
}

func noteIndex(notes []Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// sameTagSet compares tag ID lists as sets; order is insignificant.
func sameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}
