package mergeconfig

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFlagOverrides(t *testing.T) {
	defaults := Defaults()
	fs := pflag.NewFlagSet("bwtmerge", pflag.ContinueOnError)
	BindFlags(fs, defaults)
	require.NoError(t, fs.Parse([]string{"-t", "8", "-s", "16", "-r", "10", "-b", "2", "-o", "rope"}))

	params, err := Load(viper.New(), fs)
	require.NoError(t, err)

	require.Equal(t, 8, params.Threads)
	require.Equal(t, 16, params.SequenceBlocks)
	require.Equal(t, 10, params.RunsPerBuffer)
	require.Equal(t, 2<<20, params.ThreadBufferBytes)
	require.Equal(t, "rope", params.OutputFormat)
}

func TestLoadAppliesShortRangeOverride(t *testing.T) {
	defaults := Defaults()
	fs := pflag.NewFlagSet("bwtmerge", pflag.ContinueOnError)
	BindFlags(fs, defaults)
	require.NoError(t, fs.Parse([]string{"--short-range", "7"}))

	params, err := Load(viper.New(), fs)
	require.NoError(t, err)
	require.Equal(t, 7, params.ShortRange)
}

func TestLoadDefaultsShortRangeWhenUnset(t *testing.T) {
	defaults := Defaults()
	fs := pflag.NewFlagSet("bwtmerge", pflag.ContinueOnError)
	BindFlags(fs, defaults)
	require.NoError(t, fs.Parse(nil))

	params, err := Load(viper.New(), fs)
	require.NoError(t, err)
	require.Equal(t, DefaultShortRange, params.ShortRange)
}

func TestSanitizeClampsSequenceBlocksToThreads(t *testing.T) {
	p := Parameters{Threads: 8, SequenceBlocks: 2, RunsPerBuffer: 1, ThreadBufferBytes: 1, MergeBufferCount: 1, ShortRange: 1}
	p.Sanitize()
	require.Equal(t, 8, p.SequenceBlocks)
}

func TestSanitizeClampsNonPositiveToPositive(t *testing.T) {
	p := Parameters{Threads: -1, SequenceBlocks: -1, RunsPerBuffer: 0, ThreadBufferBytes: -5, MergeBufferCount: 0, ShortRange: 0}
	p.Sanitize()
	require.Equal(t, 1, p.Threads)
	require.Equal(t, 1, p.SequenceBlocks)
	require.Equal(t, 1, p.RunsPerBuffer)
	require.Equal(t, 1<<20, p.ThreadBufferBytes)
	require.Equal(t, 1, p.MergeBufferCount)
	require.Equal(t, DefaultShortRange, p.ShortRange)
	require.Equal(t, ".", p.TempDir)
}

func TestInputFormatListSplitsOnComma(t *testing.T) {
	p := Parameters{InputFormats: "native,rope"}
	require.Equal(t, []string{"native", "rope"}, p.InputFormatList())

	empty := Parameters{}
	require.Nil(t, empty.InputFormatList())
}
