// Package storage owns one persisted document per file.
//
// A Manager holds the single live copy of a document of type T behind a
// read/write lock. Callers never keep references to it: they pass
// closures to Read and Write, which run with shared or exclusive access.
//
// Write returns as soon as the in-memory mutation is done. Persistence is
// eventual: a background saver, one per Manager, snapshots the latest
// value and runs backup rotation, encoding and the file write. Writes that
// arrive while a save is in flight coalesce into the next save, and saves
// never overlap, so the file on disk only ever moves forward in revision.
// Errors on this path are logged and kept in Status; the in-memory value
// stays correct and the Manager simply remains dirty until the next
// successful save. Callers that need durability use Flush or ForceSave.
//
// Construction is lenient: a corrupt file is logged and replaced in memory
// by the default value, so a damaged document never stops the application
// from starting. Reload is strict and reports decode errors without
// touching the in-memory value.
//
// A panic inside a Read or Write closure is recovered and reported as a
// LOCK error; the Manager is then poisoned and refuses further work.
package storage
