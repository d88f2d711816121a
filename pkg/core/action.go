package core

// Action is the closed set of state transitions. It is a sealed sum type:
// only types in this package implement it, so the reducer's type switch
// covers every possible variant.
type Action interface {
	isAction()
}

// AddNote creates a note with a fresh ID and timestamps, prepends it to the
// note list, selects it and enters edit mode.
type AddNote struct {
	Title  string
	Body   string
	TagIDs []string
}

// UpdateNote shallow-merges Changes into the note with the given ID and bumps
// its UpdatedAt. If no field actually differs the state is returned unchanged.
type UpdateNote struct {
	ID      string
	Changes NoteChanges
}

// NoteChanges carries the mutable note fields; nil means "leave unchanged".
type NoteChanges struct {
	Title    *string
	Body     *string
	TagIDs   []string
	Pinned   *bool
	Archived *bool
}

// DeleteNote soft-deletes a note. Selection is cleared if it was selected.
type DeleteNote struct {
	ID string
}

// RestoreNote clears a note's soft-delete marker.
type RestoreNote struct {
	ID string
}

// AddTag appends a tag with a fresh ID and timestamps.
type AddTag struct {
	Name  string
	Color string
}

// UpdateTag shallow-merges Changes into the tag and bumps its UpdatedAt.
type UpdateTag struct {
	ID      string
	Changes TagChanges
}

// TagChanges carries the mutable tag fields; nil means "leave unchanged".
type TagChanges struct {
	Name  *string
	Color *string
}

// DeleteTag removes a tag and strips its ID from every note's tag list in the
// same transition.
type DeleteTag struct {
	ID string
}

// UpdatePreferences shallow-merges into the preferences slice.
type UpdatePreferences struct {
	Changes PreferencesChanges
}

// PreferencesChanges carries preference fields; nil means "leave unchanged".
type PreferencesChanges struct {
	Theme         *Theme
	Density       *Density
	TagFilterMode *TagFilterMode
}

// UpdateFilters shallow-merges into the transient filter state.
type UpdateFilters struct {
	Changes FilterChanges
}

// FilterChanges carries filter fields; nil means "leave unchanged".
type FilterChanges struct {
	Search       *string
	Tags         []string
	ShowArchived *bool
	ShowPinned   *bool
	ShowUntagged *bool
	SortBy       *SortField
	SortDir      *SortDirection
}

// SelectNote sets the selection and exits edit mode. An empty ID clears the
// selection.
type SelectNote struct {
	ID string
}

// ImportData replaces notes, tags and preferences wholesale. The payload must
// already have passed validation upstream.
type ImportData struct {
	Data AppData
}

func (AddNote) isAction()           {}
func (UpdateNote) isAction()        {}
func (DeleteNote) isAction()        {}
func (RestoreNote) isAction()       {}
func (AddTag) isAction()            {}
func (UpdateTag) isAction()         {}
func (DeleteTag) isAction()         {}
func (UpdatePreferences) isAction() {}
func (UpdateFilters) isAction()     {}
func (SelectNote) isAction()        {}
func (ImportData) isAction()        {}
