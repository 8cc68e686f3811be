// Package aliases builds the in-memory alias index for one kernel
// version. Two on-disk sources feed it: modules.builtin.modinfo
// (NUL-separated records, also the source of the builtin set) and
// modules.alias (one "alias <spec> <module>" per line). Records are
// dispatched per bus into dedicated indexes with their patterns compiled
// up front.
package aliases

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kmoddb/pkg/config"
	"github.com/arthur-debert/kmoddb/pkg/errors"
	"github.com/arthur-debert/kmoddb/pkg/logging"
)

const aliasLinePrefix = "alias "

// ofAliasPrefix is the structural prefix every Open Firmware alias
// carries (wildcarded name, type and the compatible marker).
const ofAliasPrefix = "N*T*C"

// virtioAliasRe extracts the device and vendor id from a virtio alias of
// the form d<device id>v<vendor id>.
var virtioAliasRe = regexp.MustCompile(`d([0-9a-fA-F*]+)v([0-9a-fA-F*]*)`)

// Parser converts raw alias declarations into store records. Malformed
// records are skipped with a warning; the load never fails on a single
// alias.
type Parser struct {
	cfg    *config.BusConfig
	store  *Store
	logger zerolog.Logger
}

// NewParser returns a parser inserting into store, classifying buses per
// cfg.
func NewParser(cfg *config.BusConfig, store *Store) *Parser {
	return &Parser{
		cfg:    cfg,
		store:  store,
		logger: logging.GetLogger("aliases.parser"),
	}
}

// LoadBuiltinModinfo ingests the content of modules.builtin.modinfo.
// Records are NUL-separated "<module>.<key>=<value>" tokens; decoding is
// permissive and drops invalid byte sequences. Only alias records are
// used: each synthesizes an alias line for the regular dispatcher and
// marks its module as builtin.
func (p *Parser) LoadBuiltinModinfo(data []byte) {
	for _, raw := range bytes.Split(data, []byte{0}) {
		line := strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
		if line == "" || !strings.Contains(line, ".") || !strings.Contains(line, "=") {
			continue
		}
		module, rest, _ := strings.Cut(line, ".")
		key, value, _ := strings.Cut(rest, "=")
		if key != "alias" {
			continue
		}

		module = strings.TrimSpace(module)
		p.ProcessAlias(strings.TrimSpace(value) + " " + module)
		p.store.addBuiltin(module)
	}
}

// LoadAliasFile ingests the content of modules.alias. Lines not starting
// with the "alias " prefix are ignored.
func (p *Parser) LoadAliasFile(data []byte) {
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, aliasLinePrefix) {
			continue
		}
		p.ProcessAlias(line)
	}
}

// ProcessAlias dispatches a single "<spec> <module>" declaration (with or
// without the leading "alias " keyword) to the index for its bus.
func (p *Parser) ProcessAlias(line string) {
	line = strings.TrimSpace(strings.TrimPrefix(line, aliasLinePrefix))
	spec, module, ok := strings.Cut(line, " ")
	if !ok || spec == "" || module == "" {
		p.logger.Warn().Str("line", line).Msg("alias declaration without module name, skipping")
		return
	}
	module = strings.TrimSpace(module)

	bus, rest, ok := strings.Cut(spec, ":")
	if !ok {
		// No bus separator: a plain alias in the generic index.
		p.store.addGeneric(module, PlainRecord{Pattern: p.compile(spec, module)})
		return
	}

	switch {
	case p.cfg.IsIgnoredBus(bus):
		p.logger.Debug().Str("bus", bus).Str("module", module).Msg("ignoring alias on ignored bus")
	case p.cfg.IsPlainBus(bus):
		name, _ := p.cfg.PlainBusName(bus)
		p.store.addPlain(name, module, PlainRecord{Pattern: p.compile(rest, module), Bus: name})
	case bus == "cpu":
		p.processCpuAlias(spec, rest, module)
	case bus == "dmi" || bus == "dmi*":
		p.processDmiAlias(rest, module)
	case bus == "of":
		p.processOfAlias(rest, module)
	case bus == "virtio":
		p.processVirtioAlias(rest, module)
	default:
		p.logger.Error().Str("bus", bus).Str("spec", spec).Str("module", module).Msg("unknown bus type")
	}
}

// processCpuAlias parses a cpu alias of alternating key:value tokens.
// A fully-wildcard alias degrades to a bus-tagged generic record so full
// cpu: queries can still match it.
func (p *Parser) processCpuAlias(spec, rest, module string) {
	keys, err := aliasKeys(rest)
	if err != nil {
		p.logger.Warn().Err(err).Str("module", module).Str("spec", spec).Msg("malformed cpu alias, skipping")
		return
	}
	cpuType, ok := keys["type"]
	if !ok {
		p.logger.Warn().Str("module", module).Str("spec", spec).Msg("cpu alias without type key, skipping")
		return
	}
	features, ok := keys["feature"]
	if !ok {
		p.logger.Warn().Str("module", module).Str("spec", spec).Msg("cpu alias without feature key, skipping")
		return
	}

	var arch, info string
	if cpuType == "*" {
		if features == "*" {
			p.logger.Info().Str("module", module).Str("spec", spec).Msg("adding generic cpu alias")
			p.store.addGeneric(module, PlainRecord{Pattern: p.compile(spec, module), Bus: "cpu"})
			return
		}
		arch, info = "*", "*"
	} else {
		arch, info, ok = strings.Cut(cpuType, ",")
		if !ok {
			p.logger.Warn().Str("module", module).Str("type", cpuType).Msg("cpu type without arch,info separator, skipping")
			return
		}
	}

	p.store.cpu.add(module, CpuRecord{
		Arch:     p.compile(arch, module),
		Info:     p.compile(info, module),
		Features: p.compile(features, module),
	})
}

// processDmiAlias splits the alias into its ordered fields, dropping
// empty segments.
func (p *Parser) processDmiAlias(rest, module string) {
	var fields []Pattern
	for _, part := range strings.Split(rest, ":") {
		if part == "" {
			continue
		}
		fields = append(fields, p.compile(part, module))
	}
	p.store.dmi.add(module, DmiRecord{Fields: fields})
}

// processOfAlias strips the structural prefix and the trailing
// compatible marker from an Open Firmware alias.
func (p *Parser) processOfAlias(rest, module string) {
	if !strings.HasPrefix(rest, ofAliasPrefix) {
		p.logger.Warn().Str("module", module).Str("alias", rest).Msg("of alias does not start with N*T*C, skipping")
		return
	}
	if strings.HasSuffix(rest, "C*") {
		// Drop the compatible marker but keep the wildcard.
		rest = strings.TrimSuffix(rest, "C*") + "*"
	}
	matcher := strings.TrimPrefix(rest, ofAliasPrefix)
	p.store.of.add(module, OfRecord{Pattern: p.compile(matcher, module)})
}

// processVirtioAlias extracts the device and vendor id from a virtio
// alias.
func (p *Parser) processVirtioAlias(rest, module string) {
	m := virtioAliasRe.FindStringSubmatch(rest)
	if m == nil {
		p.logger.Warn().Str("module", module).Str("alias", rest).Msg("virtio alias does not match d<device>v<vendor>, skipping")
		return
	}
	p.store.virtio.add(module, VirtioRecord{
		DeviceID: p.compile(m[1], module),
		VendorID: p.compile(m[2], module),
	})
}

// compile compiles a glob pattern, degrading to a literal match when the
// pattern does not compile.
func (p *Parser) compile(text, module string) Pattern {
	pattern, err := CompilePattern(text)
	if err != nil {
		p.logger.Warn().Err(err).Str("module", module).Str("pattern", text).Msg("pattern does not compile, treating as literal")
		return Pattern{Text: text, g: literalGlob(text)}
	}
	return pattern
}

// aliasKeys decomposes an alternating key:value token sequence. An odd
// token count or a repeated key is a malformed record.
func aliasKeys(alias string) (map[string]string, error) {
	parts := strings.Split(alias, ":")
	if len(parts)%2 != 0 {
		return nil, errors.New(errors.ErrMalformedAlias, "expected key:value pairs separated by ':'")
	}
	keys := make(map[string]string, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		key := strings.TrimSpace(parts[i])
		if _, dup := keys[key]; dup {
			return nil, errors.Newf(errors.ErrMalformedAlias, "duplicate key in alias string: %s", key)
		}
		keys[key] = strings.TrimSpace(parts[i+1])
	}
	return keys, nil
}

// literalGlob matches its text exactly.
type literalGlob string

func (l literalGlob) Match(s string) bool {
	return string(l) == s
}
