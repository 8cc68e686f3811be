// Package detect answers batch hardware queries against the alias index:
// which modules match a set of ACPI or PCI modaliases, or the platform's
// DMI identification string.
package detect

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kmoddb/pkg/aliases"
	"github.com/arthur-debert/kmoddb/pkg/logging"
	"github.com/arthur-debert/kmoddb/pkg/types"
)

// Detector matches device identification strings against a read-only
// store.
type Detector struct {
	store  *aliases.Store
	logger zerolog.Logger
}

// New returns a detector over store.
func New(store *aliases.Store) *Detector {
	return &Detector{
		store:  store,
		logger: logging.GetLogger("detect"),
	}
}

// ACPI returns the modules whose acpi patterns match any of the given
// modalias strings (already stripped of their "acpi:" prefix).
func (d *Detector) ACPI(modaliases []string) types.ModuleSet {
	return d.matchBus("acpi", modaliases)
}

// PCI returns the modules whose pci patterns match any of the given
// modalias strings (already stripped of their "pci:" prefix).
func (d *Detector) PCI(modaliases []string) types.ModuleSet {
	return d.matchBus("pci", modaliases)
}

func (d *Detector) matchBus(bus string, modaliases []string) types.ModuleSet {
	modules := types.NewModuleSet()
	index, ok := d.store.PlainBus(bus)
	if !ok {
		return modules
	}
	index.Each(func(module string, recs []aliases.PlainRecord) bool {
		for _, rec := range recs {
			for _, modalias := range modaliases {
				if rec.Pattern.Match(modalias) {
					d.logger.Debug().Str("module", module).Str("bus", bus).Str("modalias", modalias).
						Msg("module matches device")
					modules.Add(module)
				}
			}
		}
		return true
	})
	return modules
}

// DMI returns the modules whose dmi records match the platform DMI
// string. The string is split on ':' with empty segments dropped; a
// record matches only when every one of its declared fields has a
// corresponding target field that glob-matches it. A record with more
// fields than the target always fails, wildcards included.
func (d *Detector) DMI(dmiStr string) types.ModuleSet {
	dmiStr = strings.TrimSpace(strings.TrimPrefix(dmiStr, "dmi:"))
	var target []string
	for _, part := range strings.Split(dmiStr, ":") {
		if part != "" {
			target = append(target, part)
		}
	}

	modules := types.NewModuleSet()
	d.store.Dmi().Each(func(module string, recs []aliases.DmiRecord) bool {
		for _, rec := range recs {
			if matchDmiRecord(rec, target) {
				d.logger.Debug().Str("module", module).Str("dmi", dmiStr).Msg("module matches dmi string")
				modules.Add(module)
				break
			}
		}
		return true
	})
	return modules
}

func matchDmiRecord(rec aliases.DmiRecord, target []string) bool {
	for i, field := range rec.Fields {
		if i >= len(target) {
			return false
		}
		if !field.Match(target[i]) {
			return false
		}
	}
	return true
}
