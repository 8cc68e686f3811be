// Package blockdev resolves the set of kernel modules a block device
// stack needs. It walks the device's sysfs ancestor chain and combines
// two signals at every level: the driver symlink (suppressed for builtin
// and no-kmod drivers) and the modalias file resolved through the alias
// index.
package blockdev

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kmoddb/pkg/aliases"
	"github.com/arthur-debert/kmoddb/pkg/config"
	"github.com/arthur-debert/kmoddb/pkg/errors"
	"github.com/arthur-debert/kmoddb/pkg/logging"
	"github.com/arthur-debert/kmoddb/pkg/resolver"
	"github.com/arthur-debert/kmoddb/pkg/types"
)

// Resolver walks block device hierarchies.
type Resolver struct {
	fs       types.FS
	pather   types.Pather
	cfg      *config.BusConfig
	store    *aliases.Store
	resolver *resolver.Resolver
	logger   zerolog.Logger
}

// New returns a block device resolver reading through fs.
func New(fs types.FS, pather types.Pather, cfg *config.BusConfig, store *aliases.Store, res *resolver.Resolver) *Resolver {
	return &Resolver{
		fs:       fs,
		pather:   pather,
		cfg:      cfg,
		store:    store,
		resolver: res,
		logger:   logging.GetLogger("blockdev"),
	}
}

// Modules returns the modules required by the named block device and its
// ancestors. Only a missing device is an error; unresolvable
// intermediate levels are logged and skipped.
func (r *Resolver) Modules(device string) (types.ModuleSet, error) {
	devPath, err := r.fs.Resolve(r.pather.BlockDevice(device))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDeviceNotFound, "block device not found: %s", device).
			WithDetail("device", device)
	}

	modules := types.NewModuleSet()
	for {
		driverName := r.collectDriver(devPath, modules)
		r.collectModalias(devPath, driverName, modules)

		parent := filepath.Dir(devPath)
		if parent == devPath {
			break
		}
		if _, err := r.fs.Stat(parent); err != nil {
			break
		}
		devPath = parent
	}

	return modules, nil
}

// collectDriver reads the driver symlink at devPath, adding the driver's
// module to the set unless the driver is builtin or needs no module.
// Returns the driver name, or "" when there is no driver link.
func (r *Resolver) collectDriver(devPath string, modules types.ModuleSet) string {
	driverLink := filepath.Join(devPath, "driver")
	if _, err := r.fs.Lstat(driverLink); err != nil {
		return ""
	}
	target, err := r.fs.Readlink(driverLink)
	if err != nil {
		return ""
	}
	driverName := filepath.Base(strings.TrimSpace(target))

	if r.store.IsBuiltin(driverName) || r.cfg.IsNoKmodBuiltin(driverName) {
		r.logger.Debug().Str("path", devPath).Str("driver", driverName).Msg("driver is builtin, skipping")
		return driverName
	}

	r.logger.Debug().Str("path", devPath).Str("driver", driverName).Msg("found driver symlink")
	driverPath, err := r.fs.Resolve(driverLink)
	if err != nil {
		return driverName
	}
	moduleLink := filepath.Join(driverPath, "module")
	if _, err := r.fs.Lstat(moduleLink); err != nil {
		return driverName
	}
	if moduleTarget, err := r.fs.Readlink(moduleLink); err == nil {
		modules.Add(filepath.Base(strings.TrimSpace(moduleTarget)))
	}
	return driverName
}

// collectModalias resolves the modalias file at devPath. An unknown
// alias is expected for builtin and no-kmod drivers; otherwise the
// driver name itself is tried as an alias before giving up on the level.
func (r *Resolver) collectModalias(devPath, driverName string, modules types.ModuleSet) {
	modaliasPath := filepath.Join(devPath, "modalias")
	if _, err := r.fs.Lstat(modaliasPath); err != nil {
		return
	}
	data, err := r.fs.ReadFile(modaliasPath)
	if err != nil {
		return
	}
	modalias := strings.TrimSpace(string(data))

	module, err := r.resolver.Resolve(modalias, "")
	if err == nil {
		modules.Add(module)
		return
	}

	switch {
	case r.store.IsBuiltin(driverName):
		r.logger.Debug().Str("path", devPath).Str("driver", driverName).Str("modalias", modalias).
			Msg("unknown alias for builtin module")
	case r.cfg.IsNoKmodBuiltin(driverName):
		r.logger.Debug().Str("path", devPath).Str("driver", driverName).Str("modalias", modalias).
			Msg("no kmod required for builtin driver")
	default:
		// Some driver names are themselves resolvable aliases.
		if driverName != "" {
			if module, err := r.resolver.Resolve(driverName, ""); err == nil {
				modules.Add(module)
				return
			}
		}
		r.logger.Warn().Str("path", devPath).Str("driver", driverName).Str("modalias", modalias).
			Msg("unknown alias")
	}
}
