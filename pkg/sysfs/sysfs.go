// Package sysfs enumerates device identification strings from the sysfs
// hierarchy: per-bus modalias files and the platform DMI string. It is
// the collaborator feeding detect's batch queries.
package sysfs

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kmoddb/pkg/errors"
	"github.com/arthur-debert/kmoddb/pkg/logging"
	"github.com/arthur-debert/kmoddb/pkg/types"
)

// Enumerator reads device metadata through an injected filesystem.
type Enumerator struct {
	fs     types.FS
	pather types.Pather
	logger zerolog.Logger
}

// New returns an enumerator over fs using pather's layout.
func New(fs types.FS, pather types.Pather) *Enumerator {
	return &Enumerator{
		fs:     fs,
		pather: pather,
		logger: logging.GetLogger("sysfs"),
	}
}

// BusModaliases returns the modalias string of every device on a bus,
// with the "<bus>:" prefix stripped. Devices without a modalias file are
// skipped; a missing bus directory is an error.
func (e *Enumerator) BusModaliases(bus string) ([]string, error) {
	dir := e.pather.SysDevicesDir(bus)
	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "%s devices directory not found: %s", bus, dir)
	}

	var modaliases []string
	seen := make(map[string]struct{})
	for _, entry := range entries {
		data, err := e.fs.ReadFile(filepath.Join(dir, entry.Name(), "modalias"))
		if err != nil {
			continue
		}
		modalias := strings.TrimPrefix(strings.TrimSpace(string(data)), bus+":")
		if _, dup := seen[modalias]; dup {
			continue
		}
		seen[modalias] = struct{}{}
		modaliases = append(modaliases, modalias)
	}

	e.logger.Debug().Str("bus", bus).Int("count", len(modaliases)).Msg("enumerated device modaliases")
	return modaliases, nil
}

// DMIModalias returns the platform DMI identification string.
func (e *Enumerator) DMIModalias() (string, error) {
	path := e.pather.DMIModalias()
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileNotFound, "%s not found, please provide a DMI string", path)
	}
	return strings.TrimSpace(string(data)), nil
}
