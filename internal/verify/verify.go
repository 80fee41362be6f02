// Package verify implements pattern-file verification: backward search a
// list of patterns against the input indexes and their merged output,
// reporting any occurrence-count mismatch without aborting, per the
// "Verification mode" paragraph of the error-handling design.
package verify

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jltsiren/bwt-merge/internal/alphabet"
	"github.com/jltsiren/bwt-merge/internal/fmindex"
)

// Mismatch records one pattern whose merged occurrence count disagrees
// with the sum of its counts across every input.
type Mismatch struct {
	Pattern     string
	CountInputs []uint64
	CountOut    uint64
}

// Report summarizes one verification run.
type Report struct {
	Patterns   int
	Mismatches []Mismatch
}

// OK reports whether every pattern's counts reconciled.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0
}

// ReadPatterns reads one pattern per non-empty line from r.
func ReadPatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("verify: reading pattern file: %w", err)
	}
	return patterns, nil
}

// Run backward searches every pattern against each of inputs and against
// merged, returning a Report listing every pattern for which count_out(p)
// != sum(count_input(p)). It never returns an error for a mismatch:
// mismatches are data, not failures, per the verification-mode error
// taxonomy. inputs holds one FM-index per operand of the merge that
// produced merged -- two in the common case, but callers folding more
// than two files together (the CLI's "input1 input2 [input3 …]"
// surface) should call Run once per fold step while each step's operands
// are still live, since the pipeline's BWTs are consumed destructively
// once merged; a caller holding every original file's FM-index at once
// may also call Run a single time across all of them.
func Run(patterns []string, alpha *alphabet.Alphabet, inputs []*fmindex.FMIndex, merged *fmindex.FMIndex) (Report, error) {
	report := Report{Patterns: len(patterns)}
	for _, p := range patterns {
		comps, err := toComps(alpha, p)
		if err != nil {
			return report, err
		}
		counts := make([]uint64, len(inputs))
		var sum uint64
		for i, in := range inputs {
			counts[i] = in.Count(comps)
			sum += counts[i]
		}
		countOut := merged.Count(comps)
		if countOut != sum {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Pattern:     p,
				CountInputs: counts,
				CountOut:    countOut,
			})
		}
	}
	return report, nil
}

// toComps translates a raw-character pattern into comp values via alpha,
// rejecting characters outside the DNA-plus-endmarker alphabet. Unset
// entries of Alphabet.Char2Comp's table silently fall back to 'N', so
// membership has to be checked against the known character set directly
// rather than trusting the mapped comp value.
func toComps(alpha *alphabet.Alphabet, pattern string) ([]byte, error) {
	comps := make([]byte, len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if !isKnownChar(c) {
			return nil, fmt.Errorf("verify: pattern %q: character %q is not in the alphabet", pattern, c)
		}
		comps[i] = alpha.Char2Comp(c)
	}
	return comps, nil
}

func isKnownChar(c byte) bool {
	switch c {
	case '$', 'A', 'a', 'C', 'c', 'G', 'g', 'T', 't', 'N', 'n':
		return true
	default:
		return false
	}
}
