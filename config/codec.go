package config

import (
	"path/filepath"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec encodes configuration values as text.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type yamlCodec struct{}

func (yamlCodec) Name() string                       { return "yaml" }
func (yamlCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

type tomlCodec struct{}

func (tomlCodec) Name() string                       { return "toml" }
func (tomlCodec) Marshal(v any) ([]byte, error)      { return toml.Marshal(v) }
func (tomlCodec) Unmarshal(data []byte, v any) error { return toml.Unmarshal(data, v) }

var (
	JSON Codec = jsonCodec{}
	YAML Codec = yamlCodec{}
	TOML Codec = tomlCodec{}
)

var codecsByExt = map[string]Codec{
	".json": JSON,
	".yaml": YAML,
	".yml":  YAML,
	".toml": TOML,
}

// CodecFor picks a codec from the file extension of path.
func CodecFor(path string) (Codec, error) {
	const op smerrors.Op = "config.CodecFor"
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := codecsByExt[ext]; ok {
		return c, nil
	}
	return nil, smerrors.New(op).Msg(errMsgUnknownCodec + " (" + ext + ")")
}
