package testutil

import "github.com/jltsiren/bwt-merge/internal/bwt"

// RefIndex is a full, unsampled FM-index built directly from a BWT's
// decoded comp stream: one occurrence-count entry per position per comp
// value, with no block sampling. It answers backward-search counts the
// same way internal/fmindex.FMIndex does, but independently, so it can
// serve as an oracle for FMIndex itself (not just for the BWT it wraps).
type RefIndex struct {
	bwtComps []byte
	cum      [bwt.Sigma + 1]uint64
	occ      [bwt.Sigma][]uint64 // occ[c][i] = count of c in bwtComps[0:i]
}

// NewRefIndex extracts b's full comp stream and builds the reference
// occurrence table over it.
func NewRefIndex(b *bwt.BWT) *RefIndex {
	comps := b.Extract(0, b.Size()-1)
	return newRefIndexFromComps(comps)
}

func newRefIndexFromComps(comps []byte) *RefIndex {
	ri := &RefIndex{bwtComps: comps}

	var freq [bwt.Sigma]uint64
	for _, c := range comps {
		freq[c]++
	}
	for c := 1; c <= bwt.Sigma; c++ {
		ri.cum[c] = ri.cum[c-1] + freq[c-1]
	}

	n := len(comps)
	for c := 0; c < bwt.Sigma; c++ {
		ri.occ[c] = make([]uint64, n+1)
	}
	for i, c := range comps {
		for k := 0; k < bwt.Sigma; k++ {
			ri.occ[k][i+1] = ri.occ[k][i]
		}
		ri.occ[c][i+1]++
	}
	return ri
}

// Count returns the number of suffixes of the collection represented by
// this BWT that start with pattern, via ordinary backward search over the
// full occurrence table.
func (ri *RefIndex) Count(pattern []byte) uint64 {
	if len(pattern) == 0 {
		return uint64(len(ri.bwtComps))
	}
	for _, c := range pattern {
		if int(c) >= bwt.Sigma {
			return 0
		}
	}
	i := len(pattern) - 1
	c := pattern[i]
	sp := ri.cum[c]
	ep := ri.cum[c+1]
	for i--; i >= 0 && sp < ep; i-- {
		c = pattern[i]
		newSp := ri.cum[c] + ri.occ[c][sp]
		newEp := ri.cum[c] + ri.occ[c][ep]
		sp, ep = newSp, newEp
	}
	if ep <= sp {
		return 0
	}
	return ep - sp
}
