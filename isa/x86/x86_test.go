package x86_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/codegenlab/isadef/isa"
	"github.com/codegenlab/isadef/isa/x86"
	"github.com/codegenlab/isadef/legalize"
	"github.com/codegenlab/isadef/settings"
	"github.com/codegenlab/isadef/types"
)

// sharedGroups registers the transform groups the shared definitions
// normally provide.
func sharedGroups() *legalize.GroupSet {
	groups := legalize.NewGroupSet()
	for _, name := range []string{"expand_flags", "narrow", "widen", "x86_expand"} {
		if _, err := groups.Add(name); err != nil {
			panic(err)
		}
	}
	return groups
}

var _ = Describe("Define", func() {
	var target *isa.TargetISA

	BeforeEach(func() {
		var err error
		target, err = x86.Define(sharedGroups())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should fail without the shared transform groups", func() {
		_, err := x86.Define(legalize.NewGroupSet())
		Expect(err).To(MatchError(legalize.ErrUndeclaredReference))
	})

	Describe("settings", func() {
		It("should lay out 9 flags then 5 predicates", func() {
			g := target.Settings()
			Expect(g.NumBits()).To(Equal(14))
			flags := g.Flags()
			Expect(flags).To(HaveLen(9))
			Expect(flags[0].Name).To(Equal("has_sse3"))
			Expect(flags[8].Name).To(Equal("has_lzcnt"))
		})

		It("should satisfy use_sse42 under the nehalem preset", func() {
			g := target.Settings()
			nehalem, ok := g.PresetByName("nehalem")
			Expect(ok).To(BeTrue())

			values := g.DefaultValues().Union(nehalem.Mask)
			useSSE42 := settings.PredicateID(1) // second declared predicate
			Expect(g.PredicateDeps(useSSE42)).To(Equal([]string{"has_sse41", "has_sse42"}))
			Expect(g.Eval(useSSE42, values)).To(BeTrue())
			Expect(g.Eval(useSSE42, g.DefaultValues())).To(BeFalse())
		})

		It("should give every microarchitecture after haswell the same mask", func() {
			g := target.Settings()
			haswell, _ := g.PresetByName("haswell")
			for _, name := range []string{"broadwell", "skylake", "cannonlake", "icelake"} {
				p, ok := g.PresetByName(name)
				Expect(ok).To(BeTrue(), name)
				Expect(p.Mask.Equal(haswell.Mask)).To(BeTrue(), name)
			}
		})

		It("should leave the baseline preset mask empty", func() {
			g := target.Settings()
			baseline, _ := g.PresetByName("baseline")
			Expect(baseline.Mask.Equal(settings.NewBits(g.NumBits()))).To(BeTrue())
		})
	})

	Describe("registers", func() {
		It("should declare the three banks", func() {
			layout := target.Regs()
			Expect(layout.NumBanks()).To(Equal(3))
			Expect(layout.Bank(0).Name).To(Equal("IntRegs"))
			Expect(layout.Bank(0).TrackPressure).To(BeTrue())
			Expect(layout.Bank(2).Name).To(Equal("FlagRegs"))
			Expect(layout.Bank(2).TrackPressure).To(BeFalse())
			Expect(layout.Bank(2).UnitName(0)).To(Equal("rflags"))
		})

		It("should resolve ABCD to IntRegs units [0, 4)", func() {
			layout := target.Regs()
			abcd, ok := layout.ClassByName("ABCD")
			Expect(ok).To(BeTrue())
			Expect(layout.Bank(abcd.Bank).Name).To(Equal("IntRegs"))
			Expect(abcd.Start).To(Equal(0))
			Expect(abcd.Count).To(Equal(4))

			gpr8, _ := layout.ClassByName("GPR8")
			parent, ok := abcd.Parent()
			Expect(ok).To(BeTrue())
			Expect(layout.Class(parent)).To(Equal(gpr8))
		})

		It("should name mixed explicit and synthesized units", func() {
			layout := target.Regs()
			Expect(layout.Bank(0).UnitName(4)).To(Equal("rsp"))
			Expect(layout.Bank(0).UnitName(12)).To(Equal("r12"))
			Expect(layout.Bank(1).UnitName(3)).To(Equal("xmm3"))
		})
	})

	Describe("legalization", func() {
		It("should define the I64 and I32 modes", func() {
			Expect(target.Modes()).To(HaveLen(2))
			_, ok := target.Mode("I64")
			Expect(ok).To(BeTrue())
			_, ok = target.Mode("I32")
			Expect(ok).To(BeTrue())
		})

		It("should narrow i64 under the 32-bit mode via the default", func() {
			m, _ := target.Mode("I32")
			g, ok := m.Lookup(types.I64)
			Expect(ok).To(BeTrue())
			Expect(g.Name()).To(Equal("narrow"))
		})

		It("should expand i32 under both modes via the typed entry", func() {
			for _, name := range []string{"I32", "I64"} {
				m, _ := target.Mode(name)
				g, ok := m.Lookup(types.I32)
				Expect(ok).To(BeTrue(), name)
				Expect(g.Name()).To(Equal("x86_expand"), name)
			}
		})

		It("should widen the narrow integer types", func() {
			m, _ := target.Mode("I64")
			for _, t := range []types.Type{types.I8, types.I16} {
				g, ok := m.Lookup(t)
				Expect(ok).To(BeTrue())
				Expect(g.Name()).To(Equal("widen"))
			}
		})

		It("should expand flags unconditionally in both modes", func() {
			for _, name := range []string{"I32", "I64"} {
				m, _ := target.Mode(name)
				g, ok := m.AlwaysApplies()
				Expect(ok).To(BeTrue(), name)
				Expect(g.Name()).To(Equal("expand_flags"), name)
			}
		})

		It("should seal the modes inside the descriptor", func() {
			m, _ := target.Mode("I64")
			Expect(func() {
				m.SetForType(types.B1, legalize.TransformGroup{})
			}).To(Panic())
		})
	})

	Describe("instructions", func() {
		It("should carry the x86-specific catalog through opaquely", func() {
			insts, ok := target.Instructions().(*x86.Instructions)
			Expect(ok).To(BeTrue())
			Expect(insts.Ops).To(ContainElement("x86_udivmodx"))
		})
	})
})

func TestX86(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "x86 Suite")
}
