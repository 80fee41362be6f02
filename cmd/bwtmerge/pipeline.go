package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/jltsiren/bwt-merge/internal/alphabet"
	"github.com/jltsiren/bwt-merge/internal/bwt"
	"github.com/jltsiren/bwt-merge/internal/fmindex"
	"github.com/jltsiren/bwt-merge/internal/formats"
	"github.com/jltsiren/bwt-merge/internal/interleave"
	"github.com/jltsiren/bwt-merge/internal/mergebuffer"
	"github.com/jltsiren/bwt-merge/internal/mergeconfig"
	"github.com/jltsiren/bwt-merge/internal/rankarray"
	"github.com/jltsiren/bwt-merge/internal/rankbuild"
	"github.com/jltsiren/bwt-merge/internal/statsutil"
	"github.com/jltsiren/bwt-merge/internal/tempfile"
	"github.com/jltsiren/bwt-merge/internal/telemetry"
	"github.com/jltsiren/bwt-merge/internal/verify"
)

// decodedInput is one input file's BWT plus the alphabetic order its
// native-format header declared, if any.
type decodedInput struct {
	path  string
	bwt   *bwt.BWT
	order formats.Order
}

func readInput(fs afero.Fs, path, format string) (decodedInput, error) {
	f, err := fs.Open(path)
	if err != nil {
		return decodedInput{}, fmt.Errorf("bwtmerge: open input %s: %w", path, err)
	}
	defer f.Close()

	if format == "" || format == "native" {
		b, order, err := formats.ReadNative(f)
		if err != nil {
			return decodedInput{}, fmt.Errorf("bwtmerge: decode %s: %w", path, err)
		}
		return decodedInput{path: path, bwt: b, order: order}, nil
	}
	b, err := formats.Decode(format, f)
	if err != nil {
		return decodedInput{}, fmt.Errorf("bwtmerge: decode %s: %w", path, err)
	}
	return decodedInput{path: path, bwt: b, order: formats.OrderDefault}, nil
}

// ordersCompatible reports whether two alphabetic-order flags can be
// merged: "any" or "unknown" opts out of the check (a custom alphabet
// the engine can't second-guess), otherwise both must name the same
// canonical order, per spec.md §7's "alphabets of A and B differ"
// semantic-error category.
func ordersCompatible(a, b formats.Order) bool {
	if a == formats.OrderAny || a == formats.OrderUnknown {
		return true
	}
	if b == formats.OrderAny || b == formats.OrderUnknown {
		return true
	}
	return a == b
}

// inputFormatFor picks the -i format for the i'th input: the matching
// entry if the list is long enough, the sole entry if only one was
// given (applied to every input), otherwise the native default.
func inputFormatFor(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	if len(list) == 1 {
		return list[0]
	}
	return ""
}

// mergeFiles reads every input in order, folds them pairwise into a
// single BWT, encodes the result to output, and runs pattern-file
// verification incrementally at each fold step if params.VerifyPatternFile
// is set.
func mergeFiles(ctx context.Context, fs afero.Fs, log zerolog.Logger, params mergeconfig.Parameters, inputPaths []string, outputPath string) error {
	alloc, err := tempfile.New(fs, params.TempDir)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := alloc.RemoveAll(); rmErr != nil {
			log.Warn().Err(rmErr).Msg("cleaning up spill directory")
		}
	}()

	formatList := params.InputFormatList()
	decoded := make([]decodedInput, len(inputPaths))
	for i, path := range inputPaths {
		in, rerr := readInput(fs, path, inputFormatFor(formatList, i))
		if rerr != nil {
			return rerr
		}
		decoded[i] = in
	}
	for i := 1; i < len(decoded); i++ {
		if !ordersCompatible(decoded[0].order, decoded[i].order) {
			return fmt.Errorf("bwtmerge: alphabet order of %s does not match %s", decoded[i].path, decoded[0].path)
		}
	}

	var patterns []string
	if params.VerifyPatternFile != "" {
		patterns, err = readPatternFile(fs, params.VerifyPatternFile)
		if err != nil {
			return err
		}
	}

	report := verify.Report{Patterns: len(patterns)}
	acc := decoded[0].bwt
	for i := 1; i < len(decoded); i++ {
		next := decoded[i].bwt

		var faPrev, fbNext *fmindex.FMIndex
		if patterns != nil {
			faPrev = fmindex.New(acc)
			fbNext = fmindex.New(next)
		}

		merged, err := mergeTwo(ctx, fs, log, params, alloc, acc, next)
		if err != nil {
			return fmt.Errorf("bwtmerge: merging %s: %w", decoded[i].path, err)
		}

		if patterns != nil {
			step, err := verify.Run(patterns, alphabet.NewDefault(), []*fmindex.FMIndex{faPrev, fbNext}, fmindex.New(merged))
			if err != nil {
				return err
			}
			report.Mismatches = append(report.Mismatches, step.Mismatches...)
		}
		acc = merged
	}

	tmpPath := outputPath + ".tmp"
	if err := writeOutput(fs, tmpPath, acc, params.OutputFormat); err != nil {
		fs.Remove(tmpPath)
		return err
	}
	if err := fs.Rename(tmpPath, outputPath); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("bwtmerge: rename output into place: %w", err)
	}

	if patterns != nil {
		if report.OK() {
			log.Info().Int("patterns", report.Patterns).Msg("verification passed")
		} else {
			log.Warn().Int("patterns", report.Patterns).Int("mismatches", len(report.Mismatches)).Msg("verification found mismatches")
		}
	}
	return nil
}

func readPatternFile(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bwtmerge: open pattern file %s: %w", path, err)
	}
	defer f.Close()
	return verify.ReadPatterns(f)
}

func writeOutput(fs afero.Fs, path string, b *bwt.BWT, format string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("bwtmerge: create output %s: %w", path, err)
	}
	defer f.Close()
	if err := formats.Encode(format, f, b); err != nil {
		return fmt.Errorf("bwtmerge: encode output %s: %w", path, err)
	}
	return nil
}

// mergeTwo runs the rank-array build, flush, and interleave stages
// merging b into a, returning the spliced BWT. Per DESIGN NOTES
// "Destructive parameters", a and b are consumed and must not be used
// again after this call.
func mergeTwo(ctx context.Context, fs afero.Fs, log zerolog.Logger, params mergeconfig.Parameters, alloc *tempfile.Allocator, a, b *bwt.BWT) (*bwt.BWT, error) {
	fa := fmindex.New(a)
	fb := fmindex.New(b)

	mb := mergebuffer.New(fs, alloc, params.MergeBufferCount)
	rbParams := rankbuild.Params{
		Threads:           params.Threads,
		SequenceBlocks:    params.SequenceBlocks,
		RunsPerBuffer:     params.RunsPerBuffer,
		ThreadBufferBytes: params.ThreadBufferBytes,
		ShortRange:        params.ShortRange,
	}

	buildStage := telemetry.StartStage(log, "rank-array-build")
	if err := rankbuild.Run(ctx, fa, fb, rbParams, mb); err != nil {
		return nil, fmt.Errorf("build rank array: %w", err)
	}
	if err := mb.Flush(); err != nil {
		return nil, fmt.Errorf("flush merge buffer: %w", err)
	}
	spillFiles := mb.SpillFiles()
	buildStage.Done(map[string]uint64{"spill_files": uint64(len(spillFiles))})

	ra := rankarray.New(fs, spillFiles)
	if err := ra.Open(); err != nil {
		return nil, fmt.Errorf("open rank array: %w", err)
	}
	defer ra.Close()

	interleaveStage := telemetry.StartStage(log, "interleave")
	merged, err := interleave.Merge(a, b, ra, params.RunsPerBuffer)
	if err != nil {
		return nil, fmt.Errorf("interleave: %w", err)
	}
	stats := statsutil.Collect(merged)
	interleaveStage.Done(map[string]uint64{"size": stats.Size, "sequences": stats.Sequences})

	return merged, nil
}
