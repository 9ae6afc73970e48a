package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eip155TestKey is the EIP-155 example secret key, 0x46 repeated 32 times.
var eip155TestKey = strings.Repeat("46", 32)

func mustKey(t *testing.T, hexKey string) [32]byte {
	t.Helper()
	b, err := hex.DecodeString(hexKey)
	require.NoError(t, err)
	var k [32]byte
	copy(k[32-len(b):], b)
	return k
}

func TestSetSecretRejectsZero(t *testing.T) {
	_, err := SetSecret([32]byte{})
	require.Error(t, err)
	var bErr *Error
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, bwerr.BadKey, bErr.Kind)
}

func TestSetSecretRejectsOutOfRange(t *testing.T) {
	k := mustKey(t, "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")
	_, err := SetSecret(k)
	require.Error(t, err)
}

func TestSetSecretDerivesKnownAddress(t *testing.T) {
	// Scenario C: secret_key = 1, the well-known base-point address.
	k := mustKey(t, "0000000000000000000000000000000000000000000000000000000000000001")
	acc, err := SetSecret(k)
	require.NoError(t, err)
	assert.Equal(t, "7e5f4552091a69125d5dfcb7b8c2659029395bdf", hex.EncodeToString(acc.Address[:]))
}

func TestSetSecretDeterministic(t *testing.T) {
	k := mustKey(t, eip155TestKey)
	acc1, err := SetSecret(k)
	require.NoError(t, err)
	acc2, err := SetSecret(k)
	require.NoError(t, err)
	assert.Equal(t, acc1.PublicKey, acc2.PublicKey)
	assert.Equal(t, acc1.Address, acc2.Address)
}

func TestGenerateAccountRetriesAndSucceeds(t *testing.T) {
	// A reader that returns one all-zero draw (rejected) then a valid one.
	zero := make([]byte, 32)
	valid, _ := hex.DecodeString("0000000000000000000000000000000000000000000000000000000000000001")
	r := bytes.NewReader(append(append([]byte{}, zero...), valid...))

	acc, err := GenerateAccount(r)
	require.NoError(t, err)
	assert.NotEqual(t, [32]byte{}, acc.SecretKey)
}

func TestSignProducesValidParity(t *testing.T) {
	k := mustKey(t, eip155TestKey)
	acc, err := SetSecret(k)
	require.NoError(t, err)

	var digest [32]byte
	for i := range digest {
		digest[i] = byte(i)
	}
	r, s, parity, err := acc.Sign(digest)
	require.NoError(t, err)
	assert.NotEqual(t, [32]byte{}, r)
	assert.NotEqual(t, [32]byte{}, s)
	assert.True(t, parity == 0 || parity == 1)
}

func TestZeroClearsSecret(t *testing.T) {
	k := mustKey(t, "0000000000000000000000000000000000000000000000000000000000000001")
	acc, err := SetSecret(k)
	require.NoError(t, err)
	acc.Zero()
	assert.Equal(t, [32]byte{}, acc.SecretKey)
}
