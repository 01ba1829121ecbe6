// Package filesystem implements types.FS on top of afero. The OS and the
// in-memory backends share one adapter, so the atomic write path that
// storage relies on is the same in tests and in production.
package filesystem
