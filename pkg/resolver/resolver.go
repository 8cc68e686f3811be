// Package resolver answers single-alias queries against the loaded alias
// index: bus-prioritized first, then the generic index, then the Open
// Firmware fallback, then a last-chance platform retry.
package resolver

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kmoddb/pkg/aliases"
	"github.com/arthur-debert/kmoddb/pkg/config"
	"github.com/arthur-debert/kmoddb/pkg/errors"
	"github.com/arthur-debert/kmoddb/pkg/logging"
)

// Resolver resolves alias strings to module names over a read-only
// store.
type Resolver struct {
	cfg    *config.BusConfig
	store  *aliases.Store
	logger zerolog.Logger
}

// New returns a resolver over store, classifying buses per cfg.
func New(cfg *config.BusConfig, store *aliases.Store) *Resolver {
	return &Resolver{
		cfg:    cfg,
		store:  store,
		logger: logging.GetLogger("resolver"),
	}
}

// Resolve resolves a kernel module alias to a module name. bus is an
// optional hint; an explicit "<bus>:" prefix on the alias wins over it.
// Returns an ALIAS_NOT_FOUND error when nothing matches.
func (r *Resolver) Resolve(alias string, bus string) (string, error) {
	original := alias

	for _, busName := range r.cfg.PlainBuses {
		if strings.HasPrefix(alias, busName+":") {
			if bus != "" && bus != busName {
				r.logger.Warn().Str("alias", alias).Str("aliasBus", busName).Str("requestedBus", bus).
					Msg("alias bus prefix conflicts with requested bus")
			}
			bus = busName
			alias = strings.TrimSpace(strings.TrimPrefix(alias, busName+":"))
			break
		}
	}

	if bus != "" {
		if name, ok := r.cfg.PlainBusName(bus); !ok {
			r.logger.Warn().Str("bus", bus).Msg("bus is not a plain bus, alias resolution may not work as expected")
		} else if index, ok := r.store.PlainBus(name); ok {
			if module, ok := firstMatch(index, alias); ok {
				r.logger.Debug().Str("alias", alias).Str("bus", name).Str("module", module).Msg("resolved alias on bus")
				return module, nil
			}
		}
	}

	if module, ok := firstMatch(r.store.Generic(), alias); ok {
		r.logger.Debug().Str("alias", alias).Str("module", module).Msg("resolved alias in generic index")
		return module, nil
	}

	if module, err := r.ResolveOpenFirmware(original); err == nil {
		return module, nil
	}

	if bus != "platform" {
		if module, err := r.Resolve(alias, "platform"); err == nil {
			r.logger.Debug().Str("alias", alias).Str("module", module).Msg("resolved alias as platform alias")
			return module, nil
		}
	}

	return "", errors.Newf(errors.ErrAliasNotFound, "kernel module alias not found: %s", original).
		WithDetail("alias", original)
}

// ResolveOpenFirmware resolves an Open Firmware alias. When a direct
// match fails and the query carries no vendor qualifier, each pattern is
// retried with only its suffix after the last comma.
func (r *Resolver) ResolveOpenFirmware(alias string) (string, error) {
	alias = strings.TrimSpace(strings.TrimPrefix(alias, "of:"))

	var module string
	r.store.Of().Each(func(m string, recs []aliases.OfRecord) bool {
		for _, rec := range recs {
			if rec.Pattern.Match(alias) {
				r.logger.Info().Str("alias", alias).Str("module", m).Msg("resolved of alias")
				module = m
				return false
			}

			// Retry without the vendor qualifier.
			if !strings.Contains(alias, ",") && strings.Contains(rec.Pattern.Text, ",") {
				suffix := rec.Pattern.Text[strings.LastIndex(rec.Pattern.Text, ",")+1:]
				if p, err := aliases.CompilePattern(suffix); err == nil && p.Match(alias) {
					r.logger.Info().Str("alias", alias).Str("module", m).Msg("resolved of alias ignoring vendor id")
					module = m
					return false
				}
			}
		}
		return true
	})
	if module != "" {
		return module, nil
	}

	return "", errors.Newf(errors.ErrAliasNotFound, "open firmware alias not found: %s", alias).
		WithDetail("alias", alias)
}

// ResolvePCI resolves a PCI modalias. This is a best-effort shortcut: it
// reports absence instead of failing.
func (r *Resolver) ResolvePCI(modalias string) (string, bool) {
	modalias = strings.TrimSpace(strings.TrimPrefix(modalias, "pci:"))
	index, ok := r.store.PlainBus("pci")
	if !ok {
		return "", false
	}
	module, ok := firstMatch(index, modalias)
	if ok {
		r.logger.Info().Str("modalias", modalias).Str("module", module).Msg("resolved pci modalias")
	}
	return module, ok
}

// firstMatch scans an index in insertion order and returns the first
// module with a record matching alias.
func firstMatch(index *aliases.RecordMap[aliases.PlainRecord], alias string) (string, bool) {
	var module string
	index.Each(func(m string, recs []aliases.PlainRecord) bool {
		for _, rec := range recs {
			if rec.Pattern.Match(alias) {
				module = m
				return false
			}
		}
		return true
	})
	return module, module != ""
}
