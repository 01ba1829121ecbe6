package codec

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/myquest/pkg/errors"
)

// Codec serializes a document to text and back.
type Codec interface {
	// Name is the identifier used in configuration ("json", "yaml", "toml").
	Name() string
	// Extension is the canonical file suffix, without the dot.
	Extension() string
	// Encode produces human-readable text for v.
	Encode(v any) ([]byte, error)
	// Decode parses data into v, which must be a non-nil pointer.
	Decode(data []byte, v any) error
}

var registry = map[string]Codec{}

// aliases maps alternative extensions onto registered codec names
var aliases = map[string]string{
	"yml": "yaml",
}

func register(c Codec) {
	registry[c.Name()] = c
}

func init() {
	register(JSON)
	register(YAML)
	register(TOML)
}

// ByName returns the codec registered under name (case-insensitive).
func ByName(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "."))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if c, ok := registry[key]; ok {
		return c, nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown data format %q", name).
		WithDetail("known", Names())
}

// ForPath picks a codec from the extension of path.
func ForPath(path string) (Codec, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "cannot infer data format of %s: no extension", path)
	}
	return ByName(ext)
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
