// Package codec converts stored documents to and from their on-disk text
// form.
//
// A Codec is chosen once per storage.Manager, either explicitly or from
// the file extension, and is never re-selected per call. Three codecs are
// provided:
//
//   - JSON: pretty-printed with two-space indentation (encoding/json)
//   - YAML: yaml.v3 emitter with two-space indentation
//   - TOML: pelletier/go-toml/v2, for documents whose root is a table
//
// Encode failures are reported with the ENCODE error code and Decode
// failures with DECODE, so callers can tell a corrupt file apart from an
// I/O problem.
package codec
