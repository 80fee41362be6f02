package formats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jltsiren/bwt-merge/internal/bwt"
)

func sampleComps() []byte {
	// two sequences' worth of comps, long enough to exercise multi-run
	// encoding and a rope run split across more than 31 repeats.
	comps := []byte{0, 1, 2, 3, 4, 0}
	for i := 0; i < 40; i++ {
		comps = append(comps, 1)
	}
	comps = append(comps, 0)
	return comps
}

func TestNativeRoundTrip(t *testing.T) {
	b := bwt.FromComps(sampleComps())

	var buf bytes.Buffer
	require.NoError(t, WriteNative(&buf, b, OrderDefault))

	got, order, err := ReadNative(&buf)
	require.NoError(t, err)
	require.Equal(t, OrderDefault, order)
	require.Equal(t, b.Size(), got.Size())
	require.Equal(t, b.Hash(), got.Hash())
	require.Equal(t, b.CharacterCounts(), got.CharacterCounts())
}

func TestNativeRejectsBadTag(t *testing.T) {
	_, _, err := ReadNative(bytes.NewReader(make([]byte, 24)))
	require.Error(t, err)
}

func TestPlainRoundTrip(t *testing.T) {
	comps := sampleComps()
	b := bwt.FromComps(comps)

	var buf bytes.Buffer
	require.NoError(t, WritePlain(&buf, b))
	require.Equal(t, comps, buf.Bytes())

	got, err := ReadPlain(&buf)
	require.NoError(t, err)
	require.Equal(t, b.Hash(), got.Hash())
}

func TestRopeRoundTripSplitsLongRuns(t *testing.T) {
	b := bwt.FromComps(sampleComps())

	var buf bytes.Buffer
	require.NoError(t, WriteRope(&buf, b))

	got, err := ReadRope(&buf)
	require.NoError(t, err)
	require.Equal(t, b.Size(), got.Size())
	require.Equal(t, b.Hash(), got.Hash())
	require.Equal(t, b.CharacterCounts(), got.CharacterCounts())
}

// TestRopeBodyLayoutMatchesReferenceEncoding pins the rope/sga body byte
// layout to bwtmerge::RopeData::encode in the original C++ tool: comp in
// the high 3 bits, the literal run length (not length-1) in the low 5
// bits, i.e. body == (comp << 5) | length.
func TestRopeBodyLayoutMatchesReferenceEncoding(t *testing.T) {
	comps := []byte{3, 3, 3, 3, 3, 1}
	b := bwt.FromComps(comps)

	var buf bytes.Buffer
	require.NoError(t, WriteRope(&buf, b))

	body := buf.Bytes()[4:]
	require.Equal(t, []byte{(3 << 5) | 5, (1 << 5) | 1}, body)
}

func TestRopeRejectsBadTag(t *testing.T) {
	_, err := ReadRope(bytes.NewReader(make([]byte, 4)))
	require.Error(t, err)
}

func TestSgaRoundTrip(t *testing.T) {
	b := bwt.FromComps(sampleComps())

	var buf bytes.Buffer
	require.NoError(t, WriteSga(&buf, b))

	got, err := ReadSga(&buf)
	require.NoError(t, err)
	require.Equal(t, b.Size(), got.Size())
	require.Equal(t, b.Hash(), got.Hash())
}

func TestRfmSdslRoundTripPadsToEightBytes(t *testing.T) {
	b := bwt.FromComps(sampleComps())

	var buf bytes.Buffer
	require.NoError(t, WriteRfmSdsl(&buf, b))
	require.Zero(t, buf.Len()%8)

	got, err := ReadRfmSdsl(&buf)
	require.NoError(t, err)
	require.Equal(t, b.Hash(), got.Hash())
}

func TestDecodeEncodeDispatchRoundTripsEveryFormat(t *testing.T) {
	b := bwt.FromComps(sampleComps())

	for _, format := range []string{"native", "plain", "rope", "sga", "rfm", "sdsl"} {
		var buf bytes.Buffer
		require.NoError(t, Encode(format, &buf, b), format)

		got, err := Decode(format, &buf)
		require.NoError(t, err, format)
		require.Equal(t, b.Hash(), got.Hash(), format)
		require.Equal(t, b.Size(), got.Size(), format)
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	_, err := Decode("bogus", bytes.NewReader(nil))
	require.Error(t, err)
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	b := bwt.FromComps(sampleComps())
	err := Encode("bogus", &bytes.Buffer{}, b)
	require.Error(t, err)
}
