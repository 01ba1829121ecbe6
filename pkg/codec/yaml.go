package codec

import (
	"bytes"

	"github.com/arthur-debert/myquest/pkg/errors"
	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

// YAML is the yaml.v3 codec.
var YAML Codec = yamlCodec{}

func (yamlCodec) Name() string      { return "yaml" }
func (yamlCodec) Extension() string { return "yaml" }

func (yamlCodec) Encode(v any) (out []byte, err error) {
	// yaml.v3 panics on some unsupported values (channels, funcs)
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Newf(errors.ErrEncode, "failed to encode YAML: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, errors.ErrEncode, "failed to encode YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrEncode, "failed to encode YAML")
	}
	return buf.Bytes(), nil
}

func (yamlCodec) Decode(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.ErrDecode, "failed to decode YAML")
	}
	return nil
}
