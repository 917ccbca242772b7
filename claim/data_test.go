package claim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testPrefix = "hns:"

func TestCreateDataParseDataRoundtrip(t *testing.T) {
	hash := []byte("0123456789abcdef")

	text, err := CreateData(hash, 500, false, testPrefix)
	require.NoError(t, err)
	require.Contains(t, text, testPrefix)

	parsed, err := ParseData([]byte(text), testPrefix, 0)
	require.NoError(t, err)
	require.Equal(t, hash, parsed.Hash)
	require.EqualValues(t, 500, parsed.Fee)
	require.False(t, parsed.Forked)
}

func TestCreateDataRejectsForkedWithNonzeroFee(t *testing.T) {
	_, err := CreateData([]byte("0123456789abcdef"), 1, true, testPrefix)
	require.Error(t, err)
}

func TestCreateDataRejectsOutOfRangeHashLength(t *testing.T) {
	_, err := CreateData([]byte("a"), 0, false, testPrefix)
	require.Error(t, err)

	_, err = CreateData(make([]byte, 41), 0, false, testPrefix)
	require.Error(t, err)
}

func TestParseDataRejectsMissingPrefix(t *testing.T) {
	text, err := CreateData([]byte("0123456789abcdef"), 0, false, testPrefix)
	require.NoError(t, err)

	_, err = ParseData([]byte(text), "other:", 0)
	require.Error(t, err)
}

func TestParseDataRejectsTamperedChecksum(t *testing.T) {
	text, err := CreateData([]byte("0123456789abcdef"), 0, false, testPrefix)
	require.NoError(t, err)

	tampered := []byte(text)
	tampered[len(tampered)-1] ^= 0xff

	_, err = ParseData(tampered, testPrefix, 0)
	require.Error(t, err)
}

func TestParseDataRejectsForkedWithNonzeroFee(t *testing.T) {
	// Hand-construct a body with forked=true but a nonzero fee varint,
	// bypassing CreateData's own guard, to confirm ParseData independently
	// rejects the same inconsistency on the decode side.
	hash := []byte("0123456789abcdef")

	body := []byte{0, byte(len(hash))}
	body = append(body, hash...)
	body = append(body, 5) // fee = 5 (single-byte varint)
	body = append(body, 1) // forked = true

	sum := checksum(body)
	body = append(body, sum...)

	text := testPrefix + claimEncoding.EncodeToString(body)
	_, err := ParseData([]byte(text), testPrefix, 0)
	require.Error(t, err)
}

func TestParseDataRejectsTruncatedInput(t *testing.T) {
	_, err := ParseData([]byte(testPrefix+"AA"), testPrefix, 0)
	require.Error(t, err)
}

func TestParseDataRejectsFeeAboveCap(t *testing.T) {
	text, err := CreateData([]byte("0123456789abcdef"), 500, false, testPrefix)
	require.NoError(t, err)

	_, err = ParseData([]byte(text), testPrefix, 499)
	require.Error(t, err)

	_, err = ParseData([]byte(text), testPrefix, 500)
	require.NoError(t, err)
}
