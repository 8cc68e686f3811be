package aliases

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/arthur-debert/kmoddb/pkg/config"
	"github.com/arthur-debert/kmoddb/pkg/types"
)

// RecordMap is an insertion-ordered mapping from module name to the
// records declared for it. Resolution returns the first match in
// insertion order, so a plain Go map cannot be used here.
type RecordMap[R any] struct {
	m *orderedmap.OrderedMap[string, []R]
}

func newRecordMap[R any]() *RecordMap[R] {
	return &RecordMap[R]{m: orderedmap.New[string, []R]()}
}

func (rm *RecordMap[R]) add(module string, rec R) {
	recs, _ := rm.m.Get(module)
	rm.m.Set(module, append(recs, rec))
}

// Len returns the number of modules with at least one record.
func (rm *RecordMap[R]) Len() int {
	return rm.m.Len()
}

// Get returns the records for a module.
func (rm *RecordMap[R]) Get(module string) ([]R, bool) {
	return rm.m.Get(module)
}

// Each calls fn for every module in insertion order until fn returns
// false.
func (rm *RecordMap[R]) Each(fn func(module string, recs []R) bool) {
	for pair := rm.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Store is the immutable-after-load alias index for one kernel version.
// It is populated by Parser during the two load passes and read-only
// afterwards, so concurrent readers need no locking.
type Store struct {
	builtin types.ModuleSet

	// generic holds aliases with no bus, plus bus-tagged degraded
	// records (fully-wildcard CPU aliases).
	generic *RecordMap[PlainRecord]

	// plain holds one index per plain bus (acpi, pci, usb, ...).
	plain map[string]*RecordMap[PlainRecord]

	cpu    *RecordMap[CpuRecord]
	dmi    *RecordMap[DmiRecord]
	of     *RecordMap[OfRecord]
	virtio *RecordMap[VirtioRecord]
}

// NewStore returns an empty store with one plain-bus index per bus in
// cfg.PlainBuses.
func NewStore(cfg *config.BusConfig) *Store {
	s := &Store{
		builtin: types.NewModuleSet(),
		generic: newRecordMap[PlainRecord](),
		plain:   make(map[string]*RecordMap[PlainRecord], len(cfg.PlainBuses)),
		cpu:     newRecordMap[CpuRecord](),
		dmi:     newRecordMap[DmiRecord](),
		of:      newRecordMap[OfRecord](),
		virtio:  newRecordMap[VirtioRecord](),
	}
	for _, bus := range cfg.PlainBuses {
		s.plain[bus] = newRecordMap[PlainRecord]()
	}
	return s
}

// IsBuiltin reports whether module is compiled into the kernel.
func (s *Store) IsBuiltin(module string) bool {
	return s.builtin.Has(module)
}

// Builtin returns the set of builtin module names.
func (s *Store) Builtin() types.ModuleSet {
	return s.builtin
}

// Generic returns the index of aliases with no dedicated bus.
func (s *Store) Generic() *RecordMap[PlainRecord] {
	return s.generic
}

// PlainBus returns the index for a plain bus.
func (s *Store) PlainBus(bus string) (*RecordMap[PlainRecord], bool) {
	rm, ok := s.plain[bus]
	return rm, ok
}

// Cpu returns the CPU alias index.
func (s *Store) Cpu() *RecordMap[CpuRecord] {
	return s.cpu
}

// Dmi returns the DMI alias index.
func (s *Store) Dmi() *RecordMap[DmiRecord] {
	return s.dmi
}

// Of returns the Open Firmware alias index.
func (s *Store) Of() *RecordMap[OfRecord] {
	return s.of
}

// Virtio returns the virtio alias index.
func (s *Store) Virtio() *RecordMap[VirtioRecord] {
	return s.virtio
}

func (s *Store) addBuiltin(module string) {
	s.builtin.Add(module)
}

func (s *Store) addGeneric(module string, rec PlainRecord) {
	s.generic.add(module, rec)
}

func (s *Store) addPlain(bus, module string, rec PlainRecord) {
	if rm, ok := s.plain[bus]; ok {
		rm.add(module, rec)
	}
}
