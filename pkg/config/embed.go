package config

import (
	_ "embed"

	"github.com/arthur-debert/myquest/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// GetDefaultsContent returns the embedded defaults file, comments included
func GetDefaultsContent() string {
	return string(defaultConfig)
}

// bytesProvider feeds an in-memory document to a koanf parser
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New(errors.ErrInternal, "bytesProvider requires a parser")
}
