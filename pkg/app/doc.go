// Package app wires configuration, paths and the domain managers into one
// Context built at startup and closed at teardown.
package app
