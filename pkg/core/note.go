// Note is the central entity of the domain.
package core

import "time"

// Note is a user-authored text item with a title, body, tags and
// lifecycle flags. The ID is immutable after creation.
type Note struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	TagIDs    []string   `json:"tagIds"`
	Pinned    bool       `json:"pinned"`
	Archived  bool       `json:"archived"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the note is soft-deleted.
// Soft-deleted notes are excluded from all default views but kept for restore.
func (n Note) Deleted() bool {
	return n.DeletedAt != nil
}

// HasTag reports whether the note carries the given tag ID.
func (n Note) HasTag(tagID string) bool {
	for _, id := range n.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// Tag is a named label applied to zero or more notes.
// Names are free text; duplicates are allowed (the UI layer may warn).
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Theme selects the UI color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Density selects the UI spacing mode.
type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
)

// TagFilterMode selects how multiple filter tags combine.
type TagFilterMode string

const (
	// TagFilterAny matches notes carrying at least one of the filter tags.
	TagFilterAny TagFilterMode = "ANY"
	// TagFilterAll matches notes carrying every filter tag.
	TagFilterAll TagFilterMode = "ALL"
)

// Preferences holds the persisted user settings.
type Preferences struct {
	Theme         Theme         `json:"theme"`
	Density       Density       `json:"density"`
	TagFilterMode TagFilterMode `json:"tagFilterMode"`
}

// DefaultPreferences returns the settings used before the user changes anything.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         ThemeSystem,
		Density:       DensityComfortable,
		TagFilterMode: TagFilterAny,
	}
}

// SortField names a note attribute the list can be ordered by.
type SortField string

const (
	SortByUpdatedAt SortField = "updatedAt"
	SortByCreatedAt SortField = "createdAt"
	SortByTitle     SortField = "title"
)

// SortDirection is the ordering direction for the note list.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FilterState is the transient view filter. It lives in memory only and is
// never part of the versioned export envelope.
type FilterState struct {
	Search       string        `json:"search"`
	Tags         []string      `json:"tags"`
	ShowArchived bool          `json:"showArchived"`
	ShowPinned   bool          `json:"showPinned"`
	ShowUntagged bool          `json:"showUntagged"`
	SortBy       SortField     `json:"sortBy"`
	SortDir      SortDirection `json:"sortDirection"`
}

// DefaultFilters returns the filter state used on startup.
func DefaultFilters() FilterState {
	return FilterState{
		SortBy:  SortByUpdatedAt,
		SortDir: SortDesc,
	}
}

// AppDataVersion is the only envelope version Import accepts.
const AppDataVersion = 1

// AppData is the versioned container for bulk export and import of all
// domain data. Order of notes and tags is significant and preserved.
type AppData struct {
	Version     int         `json:"version"`
	Notes       []Note      `json:"notes"`
	Tags        []Tag       `json:"tags"`
	Preferences Preferences `json:"preferences"`
}

// Meta records bookkeeping about the stored data set.
type Meta struct {
	Version    int        `json:"version"`
	SavedAt    time.Time  `json:"savedAt"`
	ImportedAt *time.Time `json:"importedAt,omitempty"`
	MigratedAt *time.Time `json:"migratedAt,omitempty"`
}
