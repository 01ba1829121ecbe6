package codec

import (
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

type tomlCodec struct{}

// TOML is the go-toml/v2 codec. Only documents with a table root can be
// represented.
var TOML Codec = tomlCodec{}

func (tomlCodec) Name() string      { return "toml" }
func (tomlCodec) Extension() string { return "toml" }

func (tomlCodec) Encode(v any) ([]byte, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrEncode, "failed to encode TOML")
	}
	return data, nil
}

func (tomlCodec) Decode(data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.ErrDecode, "failed to decode TOML")
	}
	return nil
}
