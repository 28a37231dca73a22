// Package registry assigns globally unique output names to legacy objects.
//
// Legacy programs may give objects of different kinds the same name; the
// output language has a single namespace. Each object category has its own
// Registry, and all registries of one conversion share one NameSet so an
// output name is handed out at most once.
package registry

import (
	"strconv"
	"strings"
)

// Separator joins a base name and its discriminator.
const Separator = '_'

// NameSet is the set of output names already in use.
type NameSet struct {
	names map[string]struct{}
}

// NewNameSet returns an empty name set.
func NewNameSet() *NameSet {
	return &NameSet{names: make(map[string]struct{})}
}

// Add marks names as used.
func (s *NameSet) Add(names ...string) {
	for _, n := range names {
		s.names[n] = struct{}{}
	}
}

// Contains reports whether name is used.
func (s *NameSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of used names.
func (s *NameSet) Len() int {
	return len(s.names)
}

// MakeUnique returns the first of base_0, base_1, ... not yet used.
// The result is not added to the set.
func (s *NameSet) MakeUnique(base string) string {
	base = Identifier(base)
	prefix := base + string(Separator)
	for i := 0; ; i++ {
		candidate := prefix + strconv.Itoa(i)
		if !s.Contains(candidate) {
			return candidate
		}
	}
}

// Claim returns base if unused, otherwise a fresh name derived from it,
// and marks the result as used.
func (s *NameSet) Claim(base string) string {
	name := Identifier(base)
	if s.Contains(name) {
		name = s.MakeUnique(name)
	}
	s.Add(name)
	return name
}

// Identifier maps name onto [A-Za-z_][A-Za-z0-9_]*. Valid identifiers are
// returned unchanged.
func Identifier(name string) string {
	if IsIdentifier(name) {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case isLetter(r) || r == '_':
			b.WriteRune(r)
		case isDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// IsIdentifier reports whether name is a valid output identifier.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if isLetter(r) || r == '_' || (i > 0 && isDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
