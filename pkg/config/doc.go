// Package config handles configuration management for myquest.
// Values are layered from embedded defaults, the user's TOML (or YAML)
// file, MYQUEST_ environment variables and explicit overrides, in that
// order.
package config
