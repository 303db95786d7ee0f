// Package x86 defines the x86 target: its CPUID feature flags and the
// derived use_* predicates, microarchitecture presets, register banks
// and classes, and the legalization tables for the 32-bit and 64-bit
// CPU modes.
package x86

import (
	"github.com/codegenlab/isadef/isa"
	"github.com/codegenlab/isadef/legalize"
	"github.com/codegenlab/isadef/regs"
	"github.com/codegenlab/isadef/settings"
	"github.com/codegenlab/isadef/types"
)

func defineSettings() (*settings.Group, error) {
	b := settings.NewBuilder("x86")

	// CPUID.01H:ECX
	flags := []struct {
		name, doc string
	}{
		{"has_sse3", "SSE3: CPUID.01H:ECX.SSE3[bit 0]"},
		{"has_ssse3", "SSSE3: CPUID.01H:ECX.SSSE3[bit 9]"},
		{"has_sse41", "SSE4.1: CPUID.01H:ECX.SSE4_1[bit 19]"},
		{"has_sse42", "SSE4.2: CPUID.01H:ECX.SSE4_2[bit 20]"},
		{"has_popcnt", "POPCNT: CPUID.01H:ECX.POPCNT[bit 23]"},
		{"has_avx", "AVX: CPUID.01H:ECX.AVX[bit 28]"},
		// CPUID.(EAX=07H, ECX=0H):EBX
		{"has_bmi1", "BMI1: CPUID.(EAX=07H, ECX=0H):EBX.BMI1[bit 3]"},
		{"has_bmi2", "BMI2: CPUID.(EAX=07H, ECX=0H):EBX.BMI2[bit 8]"},
		// CPUID.EAX=80000001H:ECX
		{"has_lzcnt", "LZCNT: CPUID.EAX=80000001H:ECX.LZCNT[bit 5]"},
	}
	for _, f := range flags {
		if _, err := b.AddFlag(f.name, f.doc, false); err != nil {
			return nil, err
		}
	}

	predicates := []struct {
		name   string
		leaves []string
	}{
		{"use_sse41", []string{"has_sse41"}},
		{"use_sse42", []string{"has_sse41", "has_sse42"}},
		{"use_popcnt", []string{"has_popcnt", "has_sse42"}},
		{"use_bmi1", []string{"has_bmi1"}},
		{"use_lzcnt", []string{"has_lzcnt"}},
	}
	for _, p := range predicates {
		if _, err := b.AddPredicate(p.name, settings.And(p.leaves...)); err != nil {
			return nil, err
		}
	}

	presets := []struct {
		name    string
		implied []string
		extends []string
	}{
		{"baseline", nil, nil},
		{"nehalem", []string{"has_sse3", "has_ssse3", "has_sse41", "has_sse42", "has_popcnt"}, nil},
		{"haswell", []string{"has_bmi1", "has_bmi2", "has_lzcnt"}, []string{"nehalem"}},
		{"broadwell", nil, []string{"haswell"}},
		{"skylake", nil, []string{"broadwell"}},
		{"cannonlake", nil, []string{"skylake"}},
		{"icelake", nil, []string{"cannonlake"}},
		{"znver1", []string{
			"has_sse3", "has_ssse3", "has_sse41", "has_sse42",
			"has_popcnt", "has_bmi1", "has_bmi2", "has_lzcnt",
		}, nil},
	}
	for _, p := range presets {
		if _, err := b.AddPreset(p.name, p.implied, p.extends); err != nil {
			return nil, err
		}
	}

	return b.Finish(), nil
}

func defineRegisters() (*regs.Layout, error) {
	b := regs.NewBuilder()

	intRegs, err := b.AddBank(regs.BankConfig{
		Name:          "IntRegs",
		Units:         16,
		Prefix:        "r",
		Names:         []string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"},
		TrackPressure: true,
	})
	if err != nil {
		return nil, err
	}
	floatRegs, err := b.AddBank(regs.BankConfig{
		Name:          "FloatRegs",
		Units:         16,
		Prefix:        "xmm",
		TrackPressure: true,
	})
	if err != nil {
		return nil, err
	}
	flagRegs, err := b.AddBank(regs.BankConfig{
		Name:  "FlagRegs",
		Units: 1,
		Names: []string{"rflags"},
	})
	if err != nil {
		return nil, err
	}

	gpr, err := b.AddTopLevelClass("GPR", intRegs)
	if err != nil {
		return nil, err
	}
	fpr, err := b.AddTopLevelClass("FPR", floatRegs)
	if err != nil {
		return nil, err
	}
	if _, err := b.AddTopLevelClass("FLAG", flagRegs); err != nil {
		return nil, err
	}

	gpr8, err := b.AddSubclass("GPR8", gpr, 0, 8)
	if err != nil {
		return nil, err
	}
	if _, err := b.AddSubclass("ABCD", gpr8, 0, 4); err != nil {
		return nil, err
	}
	if _, err := b.AddSubclass("FPR8", fpr, 0, 8); err != nil {
		return nil, err
	}

	return b.Finish()
}

// Define compiles the x86 target descriptor. The groups registry must
// already hold the shared transform groups the modes reference.
func Define(groups *legalize.GroupSet) (*isa.TargetISA, error) {
	group, err := defineSettings()
	if err != nil {
		return nil, err
	}
	layout, err := defineRegisters()
	if err != nil {
		return nil, err
	}

	expandFlags, err := groups.ByName("expand_flags")
	if err != nil {
		return nil, err
	}
	narrow, err := groups.ByName("narrow")
	if err != nil {
		return nil, err
	}
	widen, err := groups.ByName("widen")
	if err != nil {
		return nil, err
	}
	x86Expand, err := groups.ByName("x86_expand")
	if err != nil {
		return nil, err
	}

	// CPU modes for 32-bit and 64-bit operation.
	x86_32 := legalize.NewMode("I32")
	x86_64 := legalize.NewMode("I64")

	for _, m := range []*legalize.Mode{x86_32, x86_64} {
		if err := m.SetAlwaysApplies(expandFlags); err != nil {
			return nil, err
		}
		if err := m.SetDefault(narrow); err != nil {
			return nil, err
		}
		typed := []struct {
			t types.Type
			g legalize.TransformGroup
		}{
			{types.B1, expandFlags},
			{types.I8, widen},
			{types.I16, widen},
			{types.I32, x86Expand},
			{types.F32, x86Expand},
			{types.F64, x86Expand},
		}
		for _, e := range typed {
			if err := m.SetForType(e.t, e.g); err != nil {
				return nil, err
			}
		}
	}
	// I64 is only legal in 64-bit mode; the 32-bit mode narrows it via
	// the default rule.
	if err := x86_64.SetForType(types.I64, x86Expand); err != nil {
		return nil, err
	}

	modes := []*legalize.Mode{x86_64, x86_32}
	return isa.New("x86", defineInstructions(), group, layout, modes), nil
}
