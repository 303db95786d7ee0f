// Command isadef compiles the definition tables of a target
// architecture and dumps the resulting descriptor for inspection.
//
// Usage:
//
//	isadef [-isa name]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/codegenlab/isadef/isa"
	"github.com/codegenlab/isadef/isa/x86"
	"github.com/codegenlab/isadef/legalize"
)

// sharedGroupNames are the architecture-independent transform groups
// the rewrite engine provides. The real group bodies live there; the
// definition compiler only needs the names.
var sharedGroupNames = []string{
	"expand",
	"expand_flags",
	"narrow",
	"widen",
	"x86_expand",
}

func run(name string) error {
	groups := legalize.NewGroupSet()
	for _, g := range sharedGroupNames {
		if _, err := groups.Add(g); err != nil {
			return err
		}
	}

	registry := isa.NewRegistry()
	if err := registry.Register("x86", x86.Define); err != nil {
		return err
	}

	target, err := registry.Compile(name, groups)
	if err != nil {
		return fmt.Errorf("available ISAs: %s: %w",
			strings.Join(registry.Names(), ", "), err)
	}

	settings := target.Settings()
	layout := target.Regs()
	fmt.Printf("ISA %s: %d setting bits, %d banks, %d classes, %d CPU modes\n",
		target.Name(), settings.NumBits(),
		layout.NumBanks(), layout.NumClasses(), len(target.Modes()))
	spew.Dump(target)
	return nil
}

func main() {
	name := flag.String("isa", "x86", "architecture to compile")
	flag.Parse()

	if err := run(*name); err != nil {
		fmt.Fprintln(os.Stderr, "isadef:", err)
		os.Exit(1)
	}
}
