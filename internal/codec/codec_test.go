package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimLeft(t *testing.T) {
	cases := []struct {
		name       string
		src        []byte
		zeroAsNull bool
		want       []byte
	}{
		{"no leading zero", []byte{0x01, 0x23}, true, []byte{0x01, 0x23}},
		{"leading zero trimmed", []byte{0x00, 0x01}, true, []byte{0x01}},
		{"all zero, zeroAsNull", []byte{0x00, 0x00}, true, []byte{}},
		{"all zero, not null", []byte{0x00, 0x00}, false, []byte{0x00}},
		{"empty input", []byte{}, true, []byte{}},
		{"empty input not null", []byte{}, false, []byte{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, TrimLeft(c.src, c.zeroAsNull))
		})
	}
}

func TestBinToHexRoundTrip(t *testing.T) {
	// Law 1: hex_to_bin(bin_to_hex(B, None, No, false)) = B
	for _, b := range [][]byte{
		{},
		{0x00},
		{0x01, 0x23, 0xab},
		{0x00, 0x00, 0x01},
	} {
		hex := BinToHex(b, TrimNone, false, false)
		back, err := HexToBin(hex, TrimNone, false)
		require.NoError(t, err)
		assert.Equal(t, b, back)
	}
}

func TestBinToHexQuantity(t *testing.T) {
	assert.Equal(t, "100ab", BinToHex([]byte{0x01, 0x00, 0xab}, TrimQuantity, false, true))
	assert.Equal(t, "0", BinToHex([]byte{0x00}, TrimQuantity, false, false))
	assert.Equal(t, "", BinToHex([]byte{0x00}, TrimQuantity, false, true))
}

func TestBinToHexUnformatted(t *testing.T) {
	assert.Equal(t, "0100ab", BinToHex([]byte{0x01, 0x00, 0xab}, TrimUnformatted, false, true))
	assert.Equal(t, "00", BinToHex([]byte{0x00}, TrimUnformatted, false, false))
	assert.Equal(t, "", BinToHex([]byte{0x00}, TrimUnformatted, false, true))
}

func TestHexToBin(t *testing.T) {
	// Scenario D
	got, err := HexToBin("0x0123", TrimQuantity, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x23}, got)

	got, err = HexToBin("00", TrimQuantity, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got)

	got, err = HexToBin("00", TrimQuantity, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, got)
}

func TestHexToBinOddLength(t *testing.T) {
	got, err := HexToBin("0x123", TrimNone, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x23}, got)
}

func TestHexToBinRejectsInvalidChars(t *testing.T) {
	_, err := HexToBin("0xzz", TrimNone, false)
	assert.Error(t, err)

	_, err = HexToBin("0x1 2", TrimNone, false)
	assert.Error(t, err)
}

func TestHexToBinPrefixRequiresLengthOverTwo(t *testing.T) {
	// len("0x") == 2, not > 2, so "0x" itself is not treated as a prefix
	// and must be parsed as the literal hex digits "0x" — which are
	// invalid, so this must error.
	_, err := HexToBin("0x", TrimNone, false)
	assert.Error(t, err)
}

func TestUint32ToBigEndian(t *testing.T) {
	// Law 2: zero always trims to {0x00}, never empty, at this layer.
	assert.Equal(t, []byte{0x00}, Uint32ToBigEndian(0))
	assert.Equal(t, []byte{0x01}, Uint32ToBigEndian(1))
	assert.Equal(t, []byte{0x01, 0x00}, Uint32ToBigEndian(256))
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, Uint32ToBigEndian(0xffffffff))
}

func TestUint64ToBigEndian(t *testing.T) {
	assert.Equal(t, []byte{0x00}, Uint64ToBigEndian(0))
	assert.Equal(t, []byte{0x01, 0x00}, Uint64ToBigEndian(256))
}

func TestHtonlNtohl(t *testing.T) {
	b := Htonl(0x01020304)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, b)

	n, err := Ntohl(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), n)

	_, err = Ntohl([]byte{0x01, 0x02})
	assert.Error(t, err)
}
