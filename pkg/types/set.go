package types

import "sort"

// ModuleSet is an unordered set of kernel module names.
type ModuleSet map[string]struct{}

// NewModuleSet returns a set containing the given names.
func NewModuleSet(names ...string) ModuleSet {
	s := make(ModuleSet, len(names))
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts a module name into the set.
func (s ModuleSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether the set contains name.
func (s ModuleSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds every member of other to the set.
func (s ModuleSet) Union(other ModuleSet) {
	for name := range other {
		s.Add(name)
	}
}

// Sorted returns the members in lexical order.
func (s ModuleSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
