package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jltsiren/bwt-merge/internal/mergeconfig"
	"github.com/jltsiren/bwt-merge/internal/telemetry"
)

// stdout, stderr and fs are seams tests override, in the style of the
// teacher corpus's own introspection tool (tool/util.go's package-level
// stdout/stderr/osExit vars).
var stdout = io.Writer(os.Stdout)
var stderr = io.Writer(os.Stderr)

// T is the bwt-merge command-line tool: one cobra command wiring the
// merge pipeline end to end.
type T struct {
	Root *cobra.Command
	fs   afero.Fs
}

// New builds the bwt-merge command tree with its default OS filesystem.
func New() *T {
	return newWithFs(afero.NewOsFs())
}

func newWithFs(fs afero.Fs) *T {
	t := &T{fs: fs}
	defaults := mergeconfig.Defaults()

	t.Root = &cobra.Command{
		Use:   "bwt-merge input1 input2 [input3 ...] output",
		Short: "Merge two or more run-length encoded BWTs without reconstructing their strings.",
		Long: `
bwt-merge merges two or more Burrows-Wheeler transforms of disjoint
sequence collections into the BWT of their union, without ever
materializing the underlying strings. Inputs are merged pairwise, in
the order given; the final positional argument is the output path.
`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          t.run,
	}
	mergeconfig.BindFlags(t.Root.Flags(), defaults)
	return t
}

func (t *T) run(cmd *cobra.Command, args []string) error {
	params, err := mergeconfig.Load(viper.New(), cmd.Flags())
	if err != nil {
		return errors.Wrap(err, "bwtmerge: loading configuration")
	}

	inputs, output := args[:len(args)-1], args[len(args)-1]

	log := telemetry.New(stderr, telemetry.NewRunID(), true)
	if err := mergeFiles(context.Background(), t.fs, log, params, inputs, output); err != nil {
		fmt.Fprintf(stderr, "bwt-merge: %v\n", err)
		return errors.WithStack(err)
	}
	return nil
}
