package core

// Structural validation for externally sourced data. These predicates are the
// sole gate before anything read from storage, an import payload, or an
// external change notification enters the state store.
//
// Validation is fail-closed: a single invalid element invalidates the whole
// collection, so a corrupted slice is never partially adopted.

// ValidNote checks presence and shape of every required Note field.
func ValidNote(n Note) bool {
	if n.ID == "" {
		return false
	}
	if n.CreatedAt.IsZero() || n.UpdatedAt.IsZero() {
		return false
	}
	if n.UpdatedAt.Before(n.CreatedAt) {
		return false
	}
	for _, id := range n.TagIDs {
		if id == "" {
			return false
		}
	}
	if n.DeletedAt != nil && n.DeletedAt.IsZero() {
		return false
	}
	return true
}

// ValidTag checks presence and shape of every required Tag field.
func ValidTag(t Tag) bool {
	if t.ID == "" || t.Name == "" {
		return false
	}
	if t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
		return false
	}
	return true
}

// ValidPreferences checks enum membership for every preference field.
func ValidPreferences(p Preferences) bool {
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return false
	}
	switch p.Density {
	case DensityComfortable, DensityCompact:
	default:
		return false
	}
	switch p.TagFilterMode {
	case TagFilterAny, TagFilterAll:
	default:
		return false
	}
	return true
}

// ValidNotes validates a whole collection element-wise.
func ValidNotes(notes []Note) bool {
	for _, n := range notes {
		if !ValidNote(n) {
			return false
		}
	}
	return true
}

// ValidTags validates a whole collection element-wise.
func ValidTags(tags []Tag) bool {
	for _, t := range tags {
		if !ValidTag(t) {
			return false
		}
	}
	return true
}

// ValidFilters checks the enum fields of a filter state.
func ValidFilters(f FilterState) bool {
	switch f.SortBy {
	case SortByUpdatedAt, SortByCreatedAt, SortByTitle:
	default:
		return false
	}
	switch f.SortDir {
	case SortAsc, SortDesc:
	default:
		return false
	}
	return true
}

// ValidAppData validates the full export/import envelope, including the
// version discriminant.
func ValidAppData(d AppData) bool {
	if d.Version != AppDataVersion {
		return false
	}
	if !ValidNotes(d.Notes) || !ValidTags(d.Tags) {
		return false
	}
	return ValidPreferences(d.Preferences)
}
