// Package mulch is the Composition Root for the mulch application.
//
// It connects the core state model (Domain Layer) with the persistence
// infrastructure (Storage Layer), wiring a reducer-driven state store to a
// debounced, backup-guarded key-value persistence manager.
//
// Philosophy:
//
// Mulch is an offline-first notes keeper. All data lives in a local vault
// directory as plain JSON values; there is no server, no sync protocol and
// no account. The state store is the sole mutator of the in-memory model,
// the persistence manager mirrors it to storage and recovers from corruption
// and quota exhaustion, and external processes touching the same vault are
// reconciled last-writer-wins.
//
// Features:
//
//   - **Reducer core**: a sealed action set is the only way state changes.
//   - **Debounced persistence**: bursts of edits collapse into single writes.
//   - **Backup snapshots**: every overwrite of notes or tags is preceded by a
//     timestamped snapshot; corrupted data is recovered from the newest
//     validating backup.
//   - **Quota recovery**: space-rejected writes prune backups and retry once
//     before surfacing a terminal storage signal.
//   - **Versioned export**: the whole data set round-trips through a single
//     validated JSON envelope.
//   - **External reconciliation**: fsnotify-backed watching adopts validated
//     changes made by other processes.
//
// Usage:
//
//	app, err := mulch.Open("./vault", mulch.WithAutoInit(true), mulch.WithLogger(logger))
//	if err != nil { ... }
//	defer app.Close(ctx)
//
//	app.Store.Dispatch(core.AddNote{Title: "hello", Body: "world"})
package mulch
