package mulch_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/core"
)

// Demonstrates the typical lifecycle: open a vault, mutate state through
// actions, read it back through selectors, and close to flush pending writes.
func Example() {
	app, err := mulch.Open("./my-notes",
		mulch.WithAutoInit(true),
		mulch.WithWatch(true),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close(context.Background())

	state := app.Store.Dispatch(core.AddTag{Name: "ideas"})
	tagID := state.Tags[0].ID

	state = app.Store.Dispatch(core.AddNote{
		Title:  "Offline first",
		Body:   "Everything lives in the vault directory.",
		TagIDs: []string{tagID},
	})

	for _, note := range core.FilteredNotes(state) {
		fmt.Println(note.Title)
	}
}
