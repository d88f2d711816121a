// Package persist keeps a kv.Store eventually consistent with the in-memory
// state: debounced writes, versioned backups, quota recovery and
// load-with-recovery.
package persist

import (
	"fmt"
	"strings"
)

// The descriptive key scheme is authoritative. The versioned app.*.v1 scheme
// is legacy: it is migrated once on open and its snapshots are the first
// thing dropped when space runs out.
const (
	KeyNotes = "notes-app-data"
	KeyTags  = "notes-app-tags"
	KeyPrefs = "notes-app-prefs"
	KeyMeta  = "notes-metadata"
)

// Legacy scheme keys, superseded by the descriptive scheme.
const (
	LegacyKeyNotes = "app.notes.v1"
	LegacyKeyTags  = "app.tags.v1"
	LegacyKeyPrefs = "app.preferences.v1"
	LegacyKeyMeta  = "app.meta.v1"
)

// DataKeys are the keys the manager persists and watches.
var DataKeys = []string{KeyNotes, KeyTags, KeyPrefs}

// LegacyKeys lists every superseded key, in migration order.
var LegacyKeys = []string{LegacyKeyNotes, LegacyKeyTags, LegacyKeyPrefs, LegacyKeyMeta}

// LegacyFor maps an active key to its legacy counterpart, "" if none.
func LegacyFor(key string) string {
	switch key {
	case KeyNotes:
		return LegacyKeyNotes
	case KeyTags:
		return LegacyKeyTags
	case KeyPrefs:
		return LegacyKeyPrefs
	case KeyMeta:
		return LegacyKeyMeta
	}
	return ""
}

const backupSep = ".bak."

// backupKey derives the timestamp-suffixed snapshot key for a base key.
// Nanosecond stamps are fixed-width, so lexicographic key order is
// chronological order.
func backupKey(base string, stampNano int64) string {
	return fmt.Sprintf("%s%s%019d", base, backupSep, stampNano)
}

// backupPrefix is the listing prefix for a base key's snapshots.
func backupPrefix(base string) string {
	return base + backupSep
}

// splitBackupKey returns the base key of a snapshot key, ok=false when the
// key is not a snapshot.
func splitBackupKey(key string) (base string, ok bool) {
	i := strings.LastIndex(key, backupSep)
	if i <= 0 {
		return "", false
	}
	stamp := key[i+len(backupSep):]
	if stamp == "" {
		return "", false
	}
	for _, r := range stamp {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return key[:i], true
}
