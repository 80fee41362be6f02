// Package alphabet implements Alphabet, the mapping between the input
// character set ('$','A','C','G','T','N', plus lowercase) and the compact
// comp values (0..5) the run-length BWT stores, together with the
// cumulative character-count table C used by LF-mapping.
package alphabet

// MaxSigma is the number of distinct input byte values an Alphabet can map.
const MaxSigma = 256

// DefaultComp2Char is the comp-to-character table of the default DNA
// alphabet: '$' (endmarker), A, C, G, T, N.
var DefaultComp2Char = [...]byte{'$', 'A', 'C', 'G', 'T', 'N'}

// DefaultSigma is the size of the default alphabet.
const DefaultSigma = len(DefaultComp2Char)

func buildDefaultChar2Comp() [MaxSigma]byte {
	var c2c [MaxSigma]byte
	for i := range c2c {
		c2c[i] = 5
	}
	c2c[0] = 0
	c2c['$'] = 0
	pairs := []struct {
		upper, lower, comp byte
	}{
		{'A', 'a', 1},
		{'C', 'c', 2},
		{'G', 'g', 3},
		{'T', 't', 4},
	}
	for _, p := range pairs {
		c2c[p.upper] = p.comp
		c2c[p.lower] = p.comp
	}
	return c2c
}

// DefaultChar2Comp is the character-to-comp table of the default alphabet.
var DefaultChar2Comp = buildDefaultChar2Comp()

// Alphabet maps between raw characters and the dense comp values used
// internally, and tracks the cumulative count C[] of each comp value.
type Alphabet struct {
	char2comp [MaxSigma]byte
	comp2char []byte
	c         []uint64 // length sigma+1, cumulative character counts
	sigma     int
}

// NewDefault returns the default five-symbol DNA alphabet plus endmarker.
func NewDefault() *Alphabet {
	a := &Alphabet{
		char2comp: DefaultChar2Comp,
		comp2char: append([]byte(nil), DefaultComp2Char[:]...),
		c:         make([]uint64, DefaultSigma+1),
		sigma:     DefaultSigma,
	}
	return a
}

// WithCounts returns a copy of the default alphabet whose C[] table is
// initialized from per-comp-value counts (length sigma).
func WithCounts(counts []uint64) *Alphabet {
	a := NewDefault()
	for i, v := range counts {
		a.c[i+1] = a.c[i] + v
	}
	return a
}

// Sorted returns the "rfm-sdsl" alphabet: comp values for T and N swapped,
// so that comp values sort in the same order as sdsl-lite's rank-select
// FM-index convention ($, A, C, G, N, T).
func Sorted() *Alphabet {
	a := NewDefault()
	a.comp2char[4], a.comp2char[5] = a.comp2char[5], a.comp2char[4]
	a.char2comp['N'], a.char2comp['T'] = a.char2comp['T'], a.char2comp['N']
	a.char2comp['n'], a.char2comp['t'] = a.char2comp['t'], a.char2comp['n']
	return a
}

// Sigma returns the alphabet size.
func (a *Alphabet) Sigma() int {
	return a.sigma
}

// Char2Comp maps a raw character to its comp value.
func (a *Alphabet) Char2Comp(c byte) byte {
	return a.char2comp[c]
}

// Comp2Char maps a comp value back to its raw character.
func (a *Alphabet) Comp2Char(comp byte) byte {
	return a.comp2char[comp]
}

// C returns the cumulative character count preceding comp value comp:
// the number of characters in the BWT strictly smaller than comp.
func (a *Alphabet) C(comp int) uint64 {
	return a.c[comp]
}

// SetCounts sets the per-comp-value counts and recomputes C[].
func (a *Alphabet) SetCounts(counts []uint64) {
	for i, v := range counts {
		a.c[i+1] = a.c[i] + v
	}
}

// Count returns the number of occurrences of comp value comp.
func (a *Alphabet) Count(comp int) uint64 {
	return a.c[comp+1] - a.c[comp]
}

// Total returns the total number of characters (C[sigma]).
func (a *Alphabet) Total() uint64 {
	return a.c[a.sigma]
}
