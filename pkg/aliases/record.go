package aliases

import "github.com/gobwas/glob"

// Pattern is a shell-glob pattern (*, ?, [...], case-sensitive) compiled
// once at insert time and kept with its source text.
type Pattern struct {
	Text string
	g    glob.Glob
}

// CompilePattern compiles text into a Pattern.
func CompilePattern(text string) (Pattern, error) {
	g, err := glob.Compile(text)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Text: text, g: g}, nil
}

// MustCompilePattern compiles text, panicking on error. For tests and
// static patterns only.
func MustCompilePattern(text string) Pattern {
	p, err := CompilePattern(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether s matches the pattern.
func (p Pattern) Match(s string) bool {
	return p.g.Match(s)
}

// PlainRecord is a verbatim alias pattern, optionally tagged with the bus
// it was declared on.
type PlainRecord struct {
	Pattern Pattern
	Bus     string
}

// CpuRecord matches CPUs by architecture, vendor/family/model info and
// feature flags. Only produced when the alias's type field is not the
// universal wildcard.
type CpuRecord struct {
	Arch     Pattern
	Info     Pattern
	Features Pattern
}

// DmiRecord matches platform DMI strings field by field. Field order is
// the order the alias declared, with empty segments dropped.
type DmiRecord struct {
	Fields []Pattern
}

// OfRecord matches Open Firmware compatible strings, with the structural
// N*T*C prefix already stripped.
type OfRecord struct {
	Pattern Pattern
}

// VirtioRecord matches virtio devices by device and vendor id.
type VirtioRecord struct {
	DeviceID Pattern
	VendorID Pattern
}
