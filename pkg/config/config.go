// Package config holds the bus classification tables kmoddb injects into
// the alias parser and resolvers. The tables ship as an embedded TOML
// default and can be overridden by an on-disk file, so tests can
// substitute their own classifications.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/kmoddb/pkg/errors"
)

// EnvConfigFile overrides the path of the optional config file.
const EnvConfigFile = "KMODDB_CONFIG"

// BusConfig is the immutable bus classification used while loading and
// querying the alias index.
type BusConfig struct {
	// IgnoredBuses lists buses whose aliases are dropped silently.
	IgnoredBuses []string `koanf:"ignored"`

	// PlainBuses lists buses whose aliases are plain glob patterns,
	// indexed per bus. Order matters: alias prefix stripping scans the
	// list front to back.
	PlainBuses []string `koanf:"plain"`

	// NoKmodBuiltins lists drivers that never need a loadable module.
	NoKmodBuiltins []string
}

// Default returns the bus tables from the embedded configuration.
func Default() *BusConfig {
	cfg, err := load("")
	if err != nil {
		// The embedded defaults are validated by tests; failing to parse
		// them is a programming error.
		panic(err)
	}
	return cfg
}

// Load returns the bus tables from the embedded defaults, merged with the
// file at path when it exists. An empty path falls back to the
// KMODDB_CONFIG environment variable.
func Load(path string) (*BusConfig, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	return load(path)
}

func load(path string) (*BusConfig, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load embedded defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path)
			}
		}
	}

	cfg := &BusConfig{}
	if err := k.Unmarshal("buses", cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid bus tables")
	}
	cfg.NoKmodBuiltins = k.Strings("builtin.no_kmod")

	return cfg, nil
}

// IsIgnoredBus reports whether bus (possibly carrying a trailing glob
// star, as in "hid*") is in the ignored set.
func (c *BusConfig) IsIgnoredBus(bus string) bool {
	return contains(c.IgnoredBuses, bus) || contains(c.IgnoredBuses, strings.TrimSuffix(bus, "*"))
}

// IsPlainBus reports whether bus (possibly carrying a trailing glob star)
// is indexed as a plain bus.
func (c *BusConfig) IsPlainBus(bus string) bool {
	return contains(c.PlainBuses, bus) || contains(c.PlainBuses, strings.TrimSuffix(bus, "*"))
}

// PlainBusName returns the canonical plain bus name for bus, stripping a
// trailing glob star. The second return is false when bus is not plain.
func (c *BusConfig) PlainBusName(bus string) (string, bool) {
	if contains(c.PlainBuses, bus) {
		return bus, true
	}
	stripped := strings.TrimSuffix(bus, "*")
	if contains(c.PlainBuses, stripped) {
		return stripped, true
	}
	return "", false
}

// IsNoKmodBuiltin reports whether driver is satisfied without a loadable
// module regardless of the builtin set.
func (c *BusConfig) IsNoKmodBuiltin(driver string) bool {
	return contains(c.NoKmodBuiltins, driver)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
