package codec

import (
	"bytes"
	"encoding/json"

	"github.com/arthur-debert/myquest/pkg/errors"
)

type jsonCodec struct{}

// JSON is the pretty-printing JSON codec.
var JSON Codec = jsonCodec{}

func (jsonCodec) Name() string      { return "json" }
func (jsonCodec) Extension() string { return "json" }

func (jsonCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, errors.ErrEncode, "failed to encode JSON")
	}
	return buf.Bytes(), nil
}

func (jsonCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.ErrDecode, "failed to decode JSON")
	}
	return nil
}
