// Package backup keeps a bounded ring of numbered copies of a file.
//
// Slot n of "habits.json" is "habits.backupN" in the same directory. Slot 1
// always holds the most recent prior version. Rotate shifts every slot up
// by one, drops whatever falls past the bound, then copies the current
// primary file into slot 1. It must run before the primary is overwritten,
// so an interrupted rotation loses at most the freshness of one slot and
// never the primary together with every backup.
package backup
