// Package regs compiles the physical register description of one
// target architecture.
//
// The register space is declared as banks (physically distinct pools
// such as integer, vector, and flag registers) and a forest of
// allocatable classes over them. Each bank gets exactly one top-level
// class spanning its whole unit range; subclasses cover contiguous
// sub-ranges of their parent, modeling instruction encodings that can
// only address part of a bank. Containment is validated when the
// subclass is declared, so the allocator's checks stay simple range
// comparisons.
//
// Usage:
//
//	b := regs.NewBuilder()
//	intRegs, _ := b.AddBank(regs.BankConfig{
//		Name: "IntRegs", Units: 16, Prefix: "r", TrackPressure: true,
//	})
//	gpr, _ := b.AddTopLevelClass("GPR", intRegs)
//	b.AddSubclass("GPR8", gpr, 0, 8)
//	layout, err := b.Finish()
package regs

import (
	"errors"
	"fmt"
	"strconv"
)

// Declaration-time validation errors.
var (
	ErrDuplicateName    = errors.New("duplicate name")
	ErrRangeOutOfBounds = errors.New("range out of bounds")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrAlreadySet       = errors.New("already set")
	ErrMissingTopLevel  = errors.New("bank has no top-level class")
	ErrBadUnitCount     = errors.New("unit count must be positive")
)

// IDs index the layout's bank and class tables.
type (
	BankID  int
	ClassID int
)

// noParent marks a top-level class.
const noParent ClassID = -1

// BankConfig describes one register bank.
type BankConfig struct {
	// Name is unique among banks and classes.
	Name string
	// Units is the number of physical registers in the bank.
	Units int
	// Prefix synthesizes unit names when Names does not cover a unit,
	// as prefix + unit index ("r8", "xmm3").
	Prefix string
	// Names optionally names the leading units explicitly. It may be
	// shorter than Units but never longer.
	Names []string
	// TrackPressure tells the allocator to model occupancy and spill
	// pressure for this bank.
	TrackPressure bool
}

// Bank is a declared register bank.
type Bank struct {
	BankConfig
	// TopLevel is the class spanning the whole bank. Set by Finish.
	TopLevel ClassID
}

// UnitName returns the printable name of one unit.
func (b *Bank) UnitName(unit int) string {
	if unit < len(b.Names) {
		return b.Names[unit]
	}
	return b.Prefix + strconv.Itoa(unit)
}

// Class is one allocatable register class: a contiguous unit range
// within a bank.
type Class struct {
	Name string
	Bank BankID
	// Start and Count give the absolute unit range [Start, Start+Count)
	// within the bank.
	Start, Count int

	parent   ClassID
	children []ClassID
}

// IsTopLevel reports whether the class spans its whole bank.
func (c *Class) IsTopLevel() bool { return c.parent == noParent }

// Parent returns the parent class, or ok=false for a top-level class.
func (c *Class) Parent() (ClassID, bool) {
	return c.parent, c.parent != noParent
}

// Children returns the direct subclasses in declaration order.
func (c *Class) Children() []ClassID {
	return append([]ClassID(nil), c.children...)
}

// Contains reports whether unit lies in the class's range.
func (c *Class) Contains(unit int) bool {
	return unit >= c.Start && unit < c.Start+c.Count
}

// Builder accumulates bank and class declarations. Banks and classes
// share one namespace scoped to the builder.
type Builder struct {
	banks    []Bank
	classes  []Class
	topLevel map[BankID]ClassID
	names    map[string]struct{}
	finished bool
}

// NewBuilder starts an empty register layout.
func NewBuilder() *Builder {
	return &Builder{
		topLevel: map[BankID]ClassID{},
		names:    map[string]struct{}{},
	}
}

func (b *Builder) mustBeOpen(op string) {
	if b.finished {
		panic("regs: " + op + " called after Finish")
	}
}

func (b *Builder) reserve(name string) error {
	if _, ok := b.names[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	b.names[name] = struct{}{}
	return nil
}

// AddBank declares a register bank.
func (b *Builder) AddBank(cfg BankConfig) (BankID, error) {
	b.mustBeOpen("AddBank")
	if cfg.Units <= 0 {
		return 0, fmt.Errorf("%w: bank %q declared with %d units",
			ErrBadUnitCount, cfg.Name, cfg.Units)
	}
	if len(cfg.Names) > cfg.Units {
		return 0, fmt.Errorf("%w: bank %q has %d units but %d names",
			ErrLengthMismatch, cfg.Name, cfg.Units, len(cfg.Names))
	}
	if err := b.reserve(cfg.Name); err != nil {
		return 0, err
	}
	cfg.Names = append([]string(nil), cfg.Names...)
	b.banks = append(b.banks, Bank{BankConfig: cfg, TopLevel: noParent})
	return BankID(len(b.banks) - 1), nil
}

// AddTopLevelClass declares the class spanning a bank's whole unit
// range. Each bank takes exactly one; a second fails with ErrAlreadySet.
func (b *Builder) AddTopLevelClass(name string, bank BankID) (ClassID, error) {
	b.mustBeOpen("AddTopLevelClass")
	if prev, ok := b.topLevel[bank]; ok {
		return 0, fmt.Errorf("%w: bank %q already has top-level class %q",
			ErrAlreadySet, b.banks[bank].Name, b.classes[prev].Name)
	}
	if err := b.reserve(name); err != nil {
		return 0, err
	}
	id := ClassID(len(b.classes))
	b.classes = append(b.classes, Class{
		Name:   name,
		Bank:   bank,
		Start:  0,
		Count:  b.banks[bank].Units,
		parent: noParent,
	})
	b.topLevel[bank] = id
	return id, nil
}

// AddSubclass declares a class covering [start, start+count) of its
// parent's bank. The range must be contained in the parent's range.
func (b *Builder) AddSubclass(name string, parent ClassID, start, count int) (ClassID, error) {
	b.mustBeOpen("AddSubclass")
	p := &b.classes[parent]
	if count <= 0 || start < p.Start || start+count > p.Start+p.Count {
		return 0, fmt.Errorf(
			"%w: subclass %q covers [%d, %d) but parent %q covers [%d, %d)",
			ErrRangeOutOfBounds, name, start, start+count,
			p.Name, p.Start, p.Start+p.Count)
	}
	if err := b.reserve(name); err != nil {
		return 0, err
	}
	id := ClassID(len(b.classes))
	b.classes = append(b.classes, Class{
		Name:   name,
		Bank:   p.Bank,
		Start:  start,
		Count:  count,
		parent: parent,
	})
	// Re-index: the append may have moved the backing array.
	b.classes[parent].children = append(b.classes[parent].children, id)
	return id, nil
}

// Finish validates that every bank has its top-level class and returns
// the immutable layout.
func (b *Builder) Finish() (*Layout, error) {
	b.mustBeOpen("Finish")
	for i := range b.banks {
		top, ok := b.topLevel[BankID(i)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingTopLevel, b.banks[i].Name)
		}
		b.banks[i].TopLevel = top
	}
	b.finished = true
	return &Layout{banks: b.banks, classes: b.classes}, nil
}

// Layout is the finalized register description: the bank table and the
// class forest. It is immutable.
type Layout struct {
	banks   []Bank
	classes []Class
}

// NumBanks returns the number of declared banks.
func (l *Layout) NumBanks() int { return len(l.banks) }

// NumClasses returns the number of declared classes.
func (l *Layout) NumClasses() int { return len(l.classes) }

// Bank returns one bank by ID.
func (l *Layout) Bank(id BankID) *Bank { return &l.banks[id] }

// Class returns one class by ID.
func (l *Layout) Class(id ClassID) *Class { return &l.classes[id] }

// ClassByName looks a class up by name.
func (l *Layout) ClassByName(name string) (*Class, bool) {
	for i := range l.classes {
		if l.classes[i].Name == name {
			return &l.classes[i], true
		}
	}
	return nil, false
}
