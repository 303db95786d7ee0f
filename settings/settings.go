// Package settings compiles the optional-feature description of one
// target architecture into a fixed bit-addressable descriptor.
//
// An architecture declares three kinds of settings, all sharing one
// namespace:
//   - boolean feature flags (hardware capabilities with a default),
//   - predicates (conjunctions of flags and earlier predicates),
//   - presets (named bundles forcing a set of flags/predicates on,
//     optionally extending earlier presets).
//
// Declarations go through a Builder and may only reference earlier
// declarations, so the reference graph is acyclic by construction.
// Builder.Finish assigns every flag and predicate a stable bit position
// (flags in declaration order, then predicates in declaration order)
// and compiles each preset into a bitmask over that layout.
//
// Usage:
//
//	b := settings.NewBuilder("x86")
//	sse41, _ := b.AddFlag("has_sse41", "SSE4.1 supported", false)
//	b.AddPredicate("use_sse41", settings.And("has_sse41"))
//	b.AddPreset("nehalem", []string{"has_sse41"}, nil)
//	group := b.Finish()
//	_ = group.FlagBit(sse41) // 0
package settings

import (
	"errors"
	"fmt"
)

// Declaration-time validation errors. They are deterministic and
// non-retryable; a builder that returned one must be abandoned.
var (
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUndeclaredReference = errors.New("undeclared reference")
)

// IDs handed out by the Builder. A flag's ID is also its final bit
// position; a predicate's final bit is flagCount + PredicateID.
type (
	FlagID      int
	PredicateID int
	PresetID    int
)

type entryKind uint8

const (
	kindFlag entryKind = iota
	kindPredicate
	kindPreset
)

func (k entryKind) String() string {
	switch k {
	case kindFlag:
		return "flag"
	case kindPredicate:
		return "predicate"
	default:
		return "preset"
	}
}

type nameEntry struct {
	kind  entryKind
	index int
}

// Flag is one declared boolean feature flag.
type Flag struct {
	// Name is unique within the group's namespace.
	Name string
	// Doc is the human-readable description.
	Doc string
	// Default is the value the flag takes when no build configuration
	// overrides it. Defaults are recorded in the descriptor but never
	// baked into preset masks.
	Default bool
}

// Preset is a compiled preset: the bits it forces on, as a mask over
// the group's finalized layout.
type Preset struct {
	Name string
	Mask Bits
}

type presetDecl struct {
	name    string
	implied []ref
	extends []PresetID
}

// Builder accumulates the declarations of one architecture. It is not
// safe for concurrent use; declarations are strictly ordered.
type Builder struct {
	name       string
	flags      []Flag
	predicates []compiledPredicate
	presets    []presetDecl
	names      map[string]nameEntry
	finished   bool
}

// NewBuilder starts an empty setting group for the named architecture.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		names: map[string]nameEntry{},
	}
}

func (b *Builder) mustBeOpen(op string) {
	if b.finished {
		panic("settings: " + op + " called after Finish")
	}
}

func (b *Builder) reserve(name string, kind entryKind, index int) error {
	if prev, ok := b.names[name]; ok {
		return fmt.Errorf("%w: %q already declared as a %s",
			ErrDuplicateName, name, prev.kind)
	}
	b.names[name] = nameEntry{kind: kind, index: index}
	return nil
}

// AddFlag declares a boolean feature flag.
func (b *Builder) AddFlag(name, doc string, def bool) (FlagID, error) {
	b.mustBeOpen("AddFlag")
	if err := b.reserve(name, kindFlag, len(b.flags)); err != nil {
		return 0, err
	}
	b.flags = append(b.flags, Flag{Name: name, Doc: doc, Default: def})
	return FlagID(len(b.flags) - 1), nil
}

// resolveLeaf maps a predicate or implied-set leaf name to the flag or
// predicate it denotes. Presets are not valid leaves.
func (b *Builder) resolveLeaf(name string) (ref, error) {
	e, ok := b.names[name]
	if !ok {
		return ref{}, fmt.Errorf("%w: %q is not declared", ErrUndeclaredReference, name)
	}
	if e.kind == kindPreset {
		return ref{}, fmt.Errorf("%w: %q is a preset, not a flag or predicate",
			ErrUndeclaredReference, name)
	}
	return ref{kind: e.kind, index: e.index, name: name}, nil
}

// AddPredicate declares a predicate. Every leaf of expr must already be
// declared; an unresolved leaf fails here, never at evaluation time.
func (b *Builder) AddPredicate(name string, expr Predicate) (PredicateID, error) {
	b.mustBeOpen("AddPredicate")
	leaves := make([]ref, len(expr.leaves))
	for i, leaf := range expr.leaves {
		r, err := b.resolveLeaf(leaf)
		if err != nil {
			return 0, err
		}
		leaves[i] = r
	}
	if err := b.reserve(name, kindPredicate, len(b.predicates)); err != nil {
		return 0, err
	}
	b.predicates = append(b.predicates, compiledPredicate{name: name, leaves: leaves})
	return PredicateID(len(b.predicates) - 1), nil
}

// AddPreset declares a preset. implied names flags and predicates the
// preset forces on; extends names earlier presets whose effective sets
// are unioned in. Union is commutative and idempotent, so the order of
// extends does not affect the compiled mask.
func (b *Builder) AddPreset(name string, implied []string, extends []string) (PresetID, error) {
	b.mustBeOpen("AddPreset")
	decl := presetDecl{name: name}
	for _, leaf := range implied {
		r, err := b.resolveLeaf(leaf)
		if err != nil {
			return 0, err
		}
		decl.implied = append(decl.implied, r)
	}
	for _, base := range extends {
		e, ok := b.names[base]
		if !ok || e.kind != kindPreset {
			return 0, fmt.Errorf("%w: %q is not a declared preset",
				ErrUndeclaredReference, base)
		}
		decl.extends = append(decl.extends, PresetID(e.index))
	}
	if err := b.reserve(name, kindPreset, len(b.presets)); err != nil {
		return 0, err
	}
	b.presets = append(b.presets, decl)
	return PresetID(len(b.presets) - 1), nil
}

// Finish assigns bit positions and compiles preset masks, returning the
// immutable group. The builder is dead afterwards: any further
// declaration panics.
func (b *Builder) Finish() *Group {
	b.mustBeOpen("Finish")
	b.finished = true

	g := &Group{
		name:       b.name,
		flags:      b.flags,
		predicates: b.predicates,
		numBits:    len(b.flags) + len(b.predicates),
	}

	// Presets only extend earlier presets, so one in-order pass sees
	// every base mask before it is needed.
	masks := make([]Bits, len(b.presets))
	for i, decl := range b.presets {
		mask := NewBits(g.numBits)
		for _, base := range decl.extends {
			mask = mask.Union(masks[base])
		}
		for _, r := range decl.implied {
			mask.Set(g.bitOf(r))
		}
		masks[i] = mask
		g.presets = append(g.presets, Preset{Name: decl.name, Mask: mask})
	}
	return g
}

// Group is a finalized settings descriptor: the fixed bit layout plus
// the compiled preset masks. It is immutable.
type Group struct {
	name       string
	flags      []Flag
	predicates []compiledPredicate
	presets    []Preset
	numBits    int
}

// Name returns the architecture name the group was built for.
func (g *Group) Name() string { return g.name }

// NumBits returns the total layout size: flags plus predicates.
func (g *Group) NumBits() int { return g.numBits }

// Flags returns the declared flags in bit order.
func (g *Group) Flags() []Flag {
	return append([]Flag(nil), g.flags...)
}

// Presets returns the compiled presets in declaration order.
func (g *Group) Presets() []Preset {
	return append([]Preset(nil), g.presets...)
}

// PresetByName looks up a compiled preset.
func (g *Group) PresetByName(name string) (Preset, bool) {
	for _, p := range g.presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// FlagBit returns the bit position of a flag.
func (g *Group) FlagBit(id FlagID) int { return int(id) }

// PredicateBit returns the bit position of a predicate.
func (g *Group) PredicateBit(id PredicateID) int {
	return len(g.flags) + int(id)
}

func (g *Group) bitOf(r ref) int {
	if r.kind == kindFlag {
		return r.index
	}
	return len(g.flags) + r.index
}

// DefaultValues returns a value vector with every flag at its declared
// default and every predicate bit clear.
func (g *Group) DefaultValues() Bits {
	v := NewBits(g.numBits)
	for i, f := range g.flags {
		if f.Default {
			v.Set(i)
		}
	}
	return v
}

// Eval evaluates a predicate against a concrete assignment of flag
// bits. Predicate leaves are evaluated recursively; the declare-order
// constraint makes the recursion finite.
func (g *Group) Eval(id PredicateID, values Bits) bool {
	for _, leaf := range g.predicates[id].leaves {
		if leaf.kind == kindFlag {
			if !values.Get(leaf.index) {
				return false
			}
			continue
		}
		if !g.Eval(PredicateID(leaf.index), values) {
			return false
		}
	}
	return true
}

// PredicateDeps returns the leaf names a predicate depends on, for
// consumers that order emitted predicates by their dependencies.
func (g *Group) PredicateDeps(id PredicateID) []string {
	return g.predicates[id].deps()
}
