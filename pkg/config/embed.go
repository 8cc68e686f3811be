package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/kmoddb.toml
var defaultConfig []byte

// DefaultConfigContent returns the embedded default configuration
func DefaultConfigContent() string {
	return string(defaultConfig)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
