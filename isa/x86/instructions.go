package x86

// Instructions is the x86-specific instruction catalog carried by the
// target descriptor. The definition compiler does not interpret it;
// the lowering engine and the emitters do.
type Instructions struct {
	// Ops names the instructions only x86 lowering introduces, in
	// addition to the architecture-independent set.
	Ops []string
}

func defineInstructions() *Instructions {
	return &Instructions{
		Ops: []string{
			"x86_udivmodx",
			"x86_sdivmodx",
			"x86_umulx",
			"x86_smulx",
			"x86_cvtt2si",
			"x86_fmin",
			"x86_fmax",
			"x86_push",
			"x86_pop",
			"x86_bsr",
			"x86_bsf",
		},
	}
}
