// Package transfer serializes the whole data set to and from the versioned
// JSON envelope, validating before anything is accepted.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/mulch/pkg/core"
	"github.com/aretw0/mulch/pkg/kv"
	"github.com/aretw0/mulch/pkg/persist"
)

// wrapped is the alternate export shape some tools produce: the envelope
// nested under "data" next to an export stamp. Import tolerates it.
type wrapped struct {
	Version    int              `json:"version"`
	ExportDate string           `json:"exportDate"`
	Data       *json.RawMessage `json:"data"`
}

// Export assembles the current envelope and serializes it pretty-printed.
// The assembled snapshot is validated first; in-process invariants should
// make that unreachable, but a failed check must not produce a corrupt file.
func Export(s core.State) ([]byte, error) {
	data := core.AppData{
		Version:     core.AppDataVersion,
		Notes:       s.Notes,
		Tags:        s.Tags,
		Preferences: s.Preferences,
	}
	if data.Notes == nil {
		data.Notes = []core.Note{}
	}
	if data.Tags == nil {
		data.Tags = []core.Tag{}
	}
	if !core.ValidPreferences(data.Preferences) {
		data.Preferences = core.DefaultPreferences()
	}

	if !core.ValidAppData(data) {
		return nil, kv.NewError(kv.KindParse, "",
			fmt.Errorf("assembled snapshot failed validation"))
	}
	return json.MarshalIndent(data, "", "  ")
}

// Import parses and validates an envelope. Any failure rejects the whole
// payload; nothing is partially applied. Both the bare envelope and the
// wrapped {version, exportDate, data} shape are accepted.
func Import(raw []byte) (core.AppData, error) {
	var data core.AppData

	payload := raw
	var w wrapped
	if err := json.Unmarshal(raw, &w); err != nil {
		return data, kv.NewError(kv.KindParse, "", fmt.Errorf("invalid JSON: %w", err))
	}
	if w.Data != nil {
		payload = *w.Data
	}

	if err := json.Unmarshal(payload, &data); err != nil {
		return data, kv.NewError(kv.KindParse, "", fmt.Errorf("invalid envelope: %w", err))
	}
	if data.Version != core.AppDataVersion {
		return core.AppData{}, kv.NewError(kv.KindParse, "",
			fmt.Errorf("unsupported version %d (want %d)", data.Version, core.AppDataVersion))
	}
	if !core.ValidAppData(data) {
		return core.AppData{}, kv.NewError(kv.KindParse, "",
			fmt.Errorf("envelope failed validation"))
	}
	return data, nil
}

// Apply replaces the stored notes, tags and preferences with the imported
// set and records the import timestamp in metadata. The payload must come
// from Import (already validated).
func Apply(ctx context.Context, m *persist.Manager, data core.AppData) error {
	if err := m.SaveNow(ctx, persist.KeyNotes, data.Notes); err != nil {
		return err
	}
	if err := m.SaveNow(ctx, persist.KeyTags, data.Tags); err != nil {
		return err
	}
	if err := m.SaveNow(ctx, persist.KeyPrefs, data.Preferences); err != nil {
		return err
	}

	now := time.Now()
	meta, _, err := kv.GetJSON[core.Meta](ctx, m.Store(), persist.KeyMeta)
	if err != nil {
		meta = core.Meta{}
	}
	meta.Version = core.AppDataVersion
	meta.SavedAt = now
	meta.ImportedAt = &now
	return kv.SetJSON(ctx, m.Store(), persist.KeyMeta, meta)
}
