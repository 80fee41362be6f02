package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoverageCheckerDetectsFullNonOverlappingCoverage(t *testing.T) {
	c := NewCoverageChecker()
	c.Visit(0, 2)
	c.Visit(3, 5)
	c.Visit(6, 6)
	require.Zero(t, c.Overlaps())
	require.True(t, c.FullyCovers(7))
}

func TestCoverageCheckerDetectsOverlap(t *testing.T) {
	c := NewCoverageChecker()
	c.Visit(0, 3)
	c.Visit(2, 5)
	require.Equal(t, uint64(2), c.Overlaps())
	require.False(t, c.FullyCovers(6))
}

func TestCoverageCheckerDetectsGap(t *testing.T) {
	c := NewCoverageChecker()
	c.Visit(0, 2)
	c.Visit(4, 5)
	require.Zero(t, c.Overlaps())
	require.False(t, c.FullyCovers(6))
}

func TestCoverageCheckerEmptyRangeFullyCoversZero(t *testing.T) {
	c := NewCoverageChecker()
	require.True(t, c.FullyCovers(0))
}
