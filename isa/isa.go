// Package isa assembles one target architecture's compiled tables into
// an immutable target descriptor.
//
// The descriptor packages the finalized settings group, register
// layout, and per-CPU-mode legalization tables together with the
// architecture's instruction set. The instruction set is opaque here:
// the definition compiler passes it through to the emitters and the
// lowering engine without interpreting it.
package isa

import (
	"errors"
	"fmt"
	"sort"

	"github.com/codegenlab/isadef/legalize"
	"github.com/codegenlab/isadef/regs"
	"github.com/codegenlab/isadef/settings"
)

var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrUnknownISA    = errors.New("unknown ISA")
)

// InstructionSet is the opaque token describing an architecture's
// available instructions.
type InstructionSet any

// TargetISA is the complete compiled description of one architecture.
// It is immutable once assembled.
type TargetISA struct {
	name         string
	instructions InstructionSet
	settings     *settings.Group
	regs         *regs.Layout
	modes        []*legalize.Mode
}

// New packages the compiled tables of one architecture. The CPU modes
// are sealed: mutating one afterwards panics.
func New(
	name string,
	instructions InstructionSet,
	s *settings.Group,
	r *regs.Layout,
	modes []*legalize.Mode,
) *TargetISA {
	modes = append([]*legalize.Mode(nil), modes...)
	legalize.Seal(modes)
	return &TargetISA{
		name:         name,
		instructions: instructions,
		settings:     s,
		regs:         r,
		modes:        modes,
	}
}

// Name returns the architecture name.
func (t *TargetISA) Name() string { return t.name }

// Instructions returns the opaque instruction set.
func (t *TargetISA) Instructions() InstructionSet { return t.instructions }

// Settings returns the finalized settings descriptor.
func (t *TargetISA) Settings() *settings.Group { return t.settings }

// Regs returns the finalized register layout.
func (t *TargetISA) Regs() *regs.Layout { return t.regs }

// Modes returns the CPU modes in definition order.
func (t *TargetISA) Modes() []*legalize.Mode {
	return append([]*legalize.Mode(nil), t.modes...)
}

// Mode looks a CPU mode up by name.
func (t *TargetISA) Mode(name string) (*legalize.Mode, bool) {
	for _, m := range t.modes {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// DefineFunc compiles one architecture's definitions against the
// build's transform-group registry.
type DefineFunc func(groups *legalize.GroupSet) (*TargetISA, error)

// Registry maps architecture names to their definition functions. It
// is owned by the build driver, not process-wide.
type Registry struct {
	defs map[string]DefineFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]DefineFunc{}}
}

// Register adds one architecture.
func (r *Registry) Register(name string, def DefineFunc) error {
	if _, ok := r.defs[name]; ok {
		return fmt.Errorf("%w: ISA %q", ErrDuplicateName, name)
	}
	r.defs[name] = def
	return nil
}

// Names returns the registered architecture names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile runs one architecture's definition function.
func (r *Registry) Compile(name string, groups *legalize.GroupSet) (*TargetISA, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownISA, name)
	}
	return def(groups)
}
