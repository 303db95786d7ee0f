package settings

// Predicate is an unresolved boolean expression: the conjunction of the
// named leaves, each of which must be a previously declared flag or
// predicate. Leaves are resolved when the predicate is declared on a
// Builder, not when it is evaluated.
type Predicate struct {
	leaves []string
}

// And builds the conjunction of the named flags and predicates.
// An empty conjunction is permitted and evaluates to true.
func And(leaves ...string) Predicate {
	return Predicate{leaves: append([]string(nil), leaves...)}
}

// ref is a resolved leaf: a bit owner inside one setting group.
type ref struct {
	kind  entryKind
	index int
	name  string
}

// compiledPredicate is a Predicate whose leaves resolved against the
// declarations made so far.
type compiledPredicate struct {
	name   string
	leaves []ref
}

// deps lists the leaf names in declaration order of the expression.
// Consumers use it to order predicate emission.
func (p compiledPredicate) deps() []string {
	out := make([]string, len(p.leaves))
	for i, l := range p.leaves {
		out[i] = l.name
	}
	return out
}
