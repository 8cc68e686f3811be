// Package kmoddb ties the alias index and its query engines into one
// per-kernel-version session. A DB is built once (two sequential load
// passes over the on-disk metadata) and then serves arbitrarily many
// read-only queries; it never mutates kernel or filesystem state.
package kmoddb

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kmoddb/pkg/aliases"
	"github.com/arthur-debert/kmoddb/pkg/blockdev"
	"github.com/arthur-debert/kmoddb/pkg/config"
	"github.com/arthur-debert/kmoddb/pkg/detect"
	"github.com/arthur-debert/kmoddb/pkg/errors"
	"github.com/arthur-debert/kmoddb/pkg/filesystem"
	"github.com/arthur-debert/kmoddb/pkg/logging"
	"github.com/arthur-debert/kmoddb/pkg/paths"
	"github.com/arthur-debert/kmoddb/pkg/resolver"
	"github.com/arthur-debert/kmoddb/pkg/sysfs"
	"github.com/arthur-debert/kmoddb/pkg/types"
)

// DB is a loaded alias database for one kernel version.
type DB struct {
	kernelVersion string

	fs     types.FS
	pather *paths.Paths
	cfg    *config.BusConfig

	store    *aliases.Store
	resolver *resolver.Resolver
	detector *detect.Detector
	sysfs    *sysfs.Enumerator
	blockdev *blockdev.Resolver

	logger zerolog.Logger
}

// Option configures DB construction.
type Option func(*DB)

// WithFS substitutes the filesystem the database reads through.
func WithFS(fs types.FS) Option {
	return func(db *DB) { db.fs = fs }
}

// WithPaths substitutes the on-disk layout.
func WithPaths(p *paths.Paths) Option {
	return func(db *DB) { db.pather = p }
}

// WithConfig substitutes the bus classification tables.
func WithConfig(cfg *config.BusConfig) Option {
	return func(db *DB) { db.cfg = cfg }
}

// New builds the database for kernelVersion, or for the running kernel
// when kernelVersion is empty. Construction fails atomically: an unknown
// version or a missing data file produces no partial store.
func New(kernelVersion string, opts ...Option) (*DB, error) {
	db := &DB{
		kernelVersion: kernelVersion,
		fs:            filesystem.NewOS(),
		pather:        paths.New(),
		logger:        logging.GetLogger("kmoddb"),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.cfg == nil {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		db.cfg = cfg
	}

	if db.kernelVersion == "" {
		release, err := paths.CurrentKernelVersion()
		if err != nil {
			return nil, err
		}
		db.kernelVersion = release
	}

	if err := db.checkKernelVersion(); err != nil {
		return nil, err
	}
	if err := db.load(); err != nil {
		return nil, err
	}

	db.resolver = resolver.New(db.cfg, db.store)
	db.detector = detect.New(db.store)
	db.sysfs = sysfs.New(db.fs, db.pather)
	db.blockdev = blockdev.New(db.fs, db.pather, db.cfg, db.store, db.resolver)

	return db, nil
}

// KernelVersion returns the version this database was built for.
func (db *DB) KernelVersion() string {
	return db.kernelVersion
}

// Store exposes the read-only alias index.
func (db *DB) Store() *aliases.Store {
	return db.store
}

// checkKernelVersion validates the version against the metadata tree.
func (db *DB) checkKernelVersion() error {
	versions, err := db.pather.KernelVersions(db.fs)
	if err != nil {
		return err
	}
	for _, version := range versions {
		if version == db.kernelVersion {
			return nil
		}
	}
	return errors.Newf(errors.ErrUnknownKernelVersion,
		"unknown kernel version: %s. Available versions: %s",
		db.kernelVersion, strings.Join(versions, ", ")).
		WithDetail("kernelVersion", db.kernelVersion)
}

// load runs the two load passes: builtin modinfo first, then the alias
// table. Both files must exist before anything is parsed.
func (db *DB) load() error {
	defer logging.LogDuration(time.Now(), "load alias index")

	builtinPath := db.pather.BuiltinModinfo(db.kernelVersion)
	aliasPath := db.pather.ModulesAlias(db.kernelVersion)
	for _, path := range []string{builtinPath, aliasPath} {
		if _, err := db.fs.Stat(path); err != nil {
			return errors.Wrapf(err, errors.ErrMissingDataFile,
				"[%s] kernel module metadata file does not exist: %s", db.kernelVersion, path).
				WithDetail("path", path)
		}
	}

	builtinData, err := db.fs.ReadFile(builtinPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", builtinPath)
	}
	aliasData, err := db.fs.ReadFile(aliasPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", aliasPath)
	}

	db.store = aliases.NewStore(db.cfg)
	parser := aliases.NewParser(db.cfg, db.store)
	parser.LoadBuiltinModinfo(builtinData)
	parser.LoadAliasFile(aliasData)

	db.logger.Debug().
		Str("kernelVersion", db.kernelVersion).
		Int("builtin", len(db.store.Builtin())).
		Int("generic", db.store.Generic().Len()).
		Msg("alias index loaded")
	return nil
}

// Resolve resolves an alias to a module name, with an optional bus hint.
func (db *DB) Resolve(alias, bus string) (string, error) {
	return db.resolver.Resolve(alias, bus)
}

// ResolveOpenFirmware resolves an Open Firmware alias.
func (db *DB) ResolveOpenFirmware(alias string) (string, error) {
	return db.resolver.ResolveOpenFirmware(alias)
}

// ResolvePCI resolves a PCI modalias, reporting absence instead of
// failing.
func (db *DB) ResolvePCI(modalias string) (string, bool) {
	return db.resolver.ResolvePCI(modalias)
}

// DetectACPI returns the modules matching the currently attached ACPI
// devices.
func (db *DB) DetectACPI() (types.ModuleSet, error) {
	modaliases, err := db.sysfs.BusModaliases("acpi")
	if err != nil {
		return nil, err
	}
	return db.detector.ACPI(modaliases), nil
}

// DetectACPIModaliases returns the modules matching the given ACPI
// modalias strings.
func (db *DB) DetectACPIModaliases(modaliases []string) types.ModuleSet {
	return db.detector.ACPI(modaliases)
}

// DetectPCI returns the modules matching the currently attached PCI
// devices.
func (db *DB) DetectPCI() (types.ModuleSet, error) {
	modaliases, err := db.sysfs.BusModaliases("pci")
	if err != nil {
		return nil, err
	}
	return db.detector.PCI(modaliases), nil
}

// DetectPCIModaliases returns the modules matching the given PCI
// modalias strings.
func (db *DB) DetectPCIModaliases(modaliases []string) types.ModuleSet {
	return db.detector.PCI(modaliases)
}

// DetectDMI returns the modules matching a DMI string, reading the
// platform's own string when dmiStr is empty.
func (db *DB) DetectDMI(dmiStr string) (types.ModuleSet, error) {
	if dmiStr == "" {
		read, err := db.sysfs.DMIModalias()
		if err != nil {
			return nil, err
		}
		dmiStr = read
	}
	return db.detector.DMI(dmiStr), nil
}

// BlockDeviceModules returns the modules required by a block device and
// its ancestor chain.
func (db *DB) BlockDeviceModules(device string) (types.ModuleSet, error) {
	return db.blockdev.Modules(device)
}
