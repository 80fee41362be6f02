// Package statsutil exposes sequence-level statistics over a built BWT:
// per-comp character counts and a stable content hash, the external
// "sequence-statistics helper" collaborator spec.md §1 names but leaves
// unspecified.
package statsutil

import "github.com/jltsiren/bwt-merge/internal/bwt"

// SequenceStats reports aggregate statistics over one BWT.
type SequenceStats struct {
	Sequences uint64
	Size      uint64
	Counts    [bwt.Sigma]uint64
	Hash      uint64
}

// Collect computes SequenceStats for b. bwt.Hash walks the run stream
// once; the sequence and character counts come from the BWT's per-comp
// samples without a further scan.
func Collect(b *bwt.BWT) SequenceStats {
	return SequenceStats{
		Sequences: b.Sequences(),
		Size:      b.Size(),
		Counts:    b.CharacterCounts(),
		Hash:      b.Hash(),
	}
}

// Equal reports whether two BWTs carry the same content: same size,
// same per-comp counts, and the same hash. Hash equality is probabilistic
// (FNV-1a collisions are possible); Equal is intended for property tests
// comparing a computed result against a trusted oracle, not as a
// cryptographic equality check.
func Equal(a, b SequenceStats) bool {
	return a.Size == b.Size && a.Sequences == b.Sequences && a.Counts == b.Counts && a.Hash == b.Hash
}
