package settings

// Bits is a fixed-size bit vector addressing the finalized setting
// layout: one bit per flag, then one bit per predicate.
type Bits []uint64

// NewBits returns an all-zero vector with room for n bits.
func NewBits(n int) Bits {
	return make(Bits, (n+63)/64)
}

// Get reports whether bit i is set. Bits beyond the vector read as 0.
func (b Bits) Get(i int) bool {
	w := i / 64
	if w >= len(b) {
		return false
	}
	return b[w]&(1<<(i%64)) != 0
}

// Set sets bit i.
func (b Bits) Set(i int) {
	b[i/64] |= 1 << (i % 64)
}

// Union returns a new vector with every bit set in either operand.
func (b Bits) Union(o Bits) Bits {
	out := make(Bits, max(len(b), len(o)))
	copy(out, b)
	for i, w := range o {
		out[i] |= w
	}
	return out
}

// Equal reports whether both vectors set exactly the same bits.
func (b Bits) Equal(o Bits) bool {
	long, short := b, o
	if len(o) > len(b) {
		long, short = o, b
	}
	for i, w := range long {
		var ow uint64
		if i < len(short) {
			ow = short[i]
		}
		if w != ow {
			return false
		}
	}
	return true
}
