// Package legalize builds the per-CPU-mode dispatch tables that select
// which legalization transform group rewrites an instruction.
//
// Transform groups are opaque named references; their rewrite rules
// live in the legalizer that consumes the table. Each CPU mode (one
// addressing/operation variant of an architecture) holds three tiers:
//
//   - an always-applies group, run unconditionally for every
//     instruction regardless of type,
//   - a type-specific map keyed by the controlling value type,
//   - a default group for types with no specific entry.
//
// The always-applies tier is independent of the other two: the
// consuming legalizer decides how it combines with the type lookup.
// A type matching neither a specific entry nor a default simply needs
// no legalization under that mode; that is a valid outcome, not an
// error.
package legalize

import (
	"errors"
	"fmt"

	"github.com/codegenlab/isadef/types"
)

// Declaration-time validation errors.
var (
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUndeclaredReference = errors.New("undeclared reference")
	ErrAlreadySet          = errors.New("already set")
	ErrDuplicateKey        = errors.New("duplicate key")
)

// TransformGroup is an opaque reference to a named set of rewrite
// rules. The zero value means "no group".
type TransformGroup struct {
	name string
}

// Name returns the group's name, or "" for the zero value.
func (g TransformGroup) Name() string { return g.name }

// IsNone reports whether g is the zero "no group" value.
func (g TransformGroup) IsNone() bool { return g.name == "" }

// GroupSet is the registry of transform groups known to one build.
// The rewrite engine registers its groups here; ISA definitions look
// them up by name.
type GroupSet struct {
	groups map[string]TransformGroup
}

// NewGroupSet returns an empty registry.
func NewGroupSet() *GroupSet {
	return &GroupSet{groups: map[string]TransformGroup{}}
}

// Add registers a transform group name.
func (s *GroupSet) Add(name string) (TransformGroup, error) {
	if _, ok := s.groups[name]; ok {
		return TransformGroup{}, fmt.Errorf("%w: transform group %q", ErrDuplicateName, name)
	}
	g := TransformGroup{name: name}
	s.groups[name] = g
	return g, nil
}

// ByName resolves a registered group.
func (s *GroupSet) ByName(name string) (TransformGroup, error) {
	g, ok := s.groups[name]
	if !ok {
		return TransformGroup{}, fmt.Errorf("%w: transform group %q", ErrUndeclaredReference, name)
	}
	return g, nil
}

// Mode is the legalization table of one CPU mode. It is mutable until
// sealed into a target descriptor; the order of Set* calls does not
// affect the final table.
type Mode struct {
	name          string
	alwaysApplies TransformGroup
	defaultGroup  TransformGroup
	byType        map[types.Type]TransformGroup
	sealed        bool
}

// NewMode starts an empty table for the named CPU mode.
func NewMode(name string) *Mode {
	return &Mode{
		name:   name,
		byType: map[types.Type]TransformGroup{},
	}
}

// Name returns the CPU mode's name.
func (m *Mode) Name() string { return m.name }

func (m *Mode) mustBeOpen(op string) {
	if m.sealed {
		panic("legalize: " + op + " on sealed mode " + m.name)
	}
}

// SetAlwaysApplies registers the group run for every instruction under
// this mode, independent of the type lookup.
func (m *Mode) SetAlwaysApplies(g TransformGroup) error {
	m.mustBeOpen("SetAlwaysApplies")
	if !m.alwaysApplies.IsNone() {
		return fmt.Errorf("%w: mode %q always-applies rule", ErrAlreadySet, m.name)
	}
	m.alwaysApplies = g
	return nil
}

// SetDefault registers the group for types with no specific entry.
func (m *Mode) SetDefault(g TransformGroup) error {
	m.mustBeOpen("SetDefault")
	if !m.defaultGroup.IsNone() {
		return fmt.Errorf("%w: mode %q default rule", ErrAlreadySet, m.name)
	}
	m.defaultGroup = g
	return nil
}

// SetForType registers the group overriding the default for one
// controlling value type.
func (m *Mode) SetForType(t types.Type, g TransformGroup) error {
	m.mustBeOpen("SetForType")
	if _, ok := m.byType[t]; ok {
		return fmt.Errorf("%w: mode %q already legalizes type %s", ErrDuplicateKey, m.name, t)
	}
	m.byType[t] = g
	return nil
}

// seal freezes the table. Called when the mode is packaged into a
// target descriptor.
func (m *Mode) seal() { m.sealed = true }

// AlwaysApplies returns the unconditional group, if one was set.
func (m *Mode) AlwaysApplies() (TransformGroup, bool) {
	return m.alwaysApplies, !m.alwaysApplies.IsNone()
}

// Default returns the default group, if one was set.
func (m *Mode) Default() (TransformGroup, bool) {
	return m.defaultGroup, !m.defaultGroup.IsNone()
}

// Lookup resolves the group for a controlling value type: the
// type-specific entry if present, else the default, else none. The
// always-applies group is deliberately not consulted here.
func (m *Mode) Lookup(t types.Type) (TransformGroup, bool) {
	if g, ok := m.byType[t]; ok {
		return g, true
	}
	return m.defaultGroup, !m.defaultGroup.IsNone()
}

// TypedEntries returns the number of type-specific entries.
func (m *Mode) TypedEntries() int { return len(m.byType) }

// Seal freezes a set of modes for packaging. Exposed for the target
// descriptor assembly; further Set* calls on a sealed mode panic.
func Seal(modes []*Mode) {
	for _, m := range modes {
		m.seal()
	}
}
