// Package types defines the interfaces shared across myquest packages,
// chiefly the FS abstraction that storage, backup rotation and path
// resolution are written against.
package types
