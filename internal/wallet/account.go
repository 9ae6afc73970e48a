// Package wallet implements the KeyPair and Signer components: secp256k1
// secret-key validation, public-key and address derivation via
// Keccak-256, and the ECDSA signing primitive RawTx calls to produce
// (r, s, parity).
package wallet

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
	"golang.org/x/crypto/sha3"
)

// Error is wallet's Kind-tagged error type; see bwerr.Error.
type Error = bwerr.Error

// secp256k1Order is n, the order of the secp256k1 base point. A valid
// secret key k must satisfy 1 <= k < n.
var secp256k1Order, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// maxGenerateAttempts bounds GenerateAccount's retry loop, mirroring
// BoatWalletGeneratePrivkey's bound in the original implementation.
const maxGenerateAttempts = 100

// Account holds a secp256k1 key pair and its derived Ethereum address.
// PublicKey is the uncompressed X||Y with no 0x04 prefix (64 bytes);
// Address is the low 20 bytes of Keccak256(PublicKey).
type Account struct {
	SecretKey [32]byte
	PublicKey [64]byte
	Address   [20]byte
}

// SetSecret validates k as a secp256k1 scalar (1 <= k < n) and, on
// success, derives PublicKey and Address. On failure it returns a nil
// Account and a BadKey error.
func SetSecret(k [32]byte) (*Account, error) {
	kInt := new(big.Int).SetBytes(k[:])
	if kInt.Sign() == 0 {
		return nil, bwerr.New("wallet.SetSecret", bwerr.BadKey, fmt.Errorf("secret key is zero"))
	}
	if kInt.Cmp(secp256k1Order) >= 0 {
		return nil, bwerr.New("wallet.SetSecret", bwerr.BadKey, fmt.Errorf("secret key >= curve order"))
	}

	privKey, pubKey := btcec.PrivKeyFromBytes(k[:])
	defer privKey.Zero()

	uncompressed := pubKey.SerializeUncompressed() // 0x04 || X(32) || Y(32)

	acc := &Account{SecretKey: k}
	copy(acc.PublicKey[:], uncompressed[1:])
	addr := keccak256(acc.PublicKey[:])
	copy(acc.Address[:], addr[12:])

	return acc, nil
}

// GenerateAccount draws secret keys from rnd (typically crypto/rand.Reader)
// and retries until SetSecret accepts one, up to maxGenerateAttempts. An
// RNG read failure is propagated immediately as ExternalModuleFailure.
func GenerateAccount(rnd io.Reader) (*Account, error) {
	if rnd == nil {
		rnd = rand.Reader
	}

	var lastErr error
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		var k [32]byte
		if _, err := io.ReadFull(rnd, k[:]); err != nil {
			return nil, bwerr.New("wallet.GenerateAccount", bwerr.ExternalModuleFailure, err)
		}
		acc, err := SetSecret(k)
		if err == nil {
			return acc, nil
		}
		lastErr = err
	}
	return nil, bwerr.New("wallet.GenerateAccount", bwerr.BadKey, fmt.Errorf("no valid key after %d attempts: %w", maxGenerateAttempts, lastErr))
}

// Zero overwrites the secret key with zero bytes. Callers must call this
// on every exit path once the secret key is no longer needed.
func (a *Account) Zero() {
	for i := range a.SecretKey {
		a.SecretKey[i] = 0
	}
}

// Sign ECDSA-signs a 32-byte digest with the account's secret key over
// secp256k1, returning (r, s, parity) with (r, s) normalized to low-S
// form by the underlying signer.
func (a *Account) Sign(digest [32]byte) (r, s [32]byte, parity byte, err error) {
	privKey, _ := btcec.PrivKeyFromBytes(a.SecretKey[:])
	defer privKey.Zero()

	sig := btcecdsa.SignCompact(privKey, digest[:], false)
	if len(sig) != 65 {
		return r, s, 0, bwerr.New("wallet.Account.Sign", bwerr.ExternalModuleFailure, fmt.Errorf("unexpected compact signature length %d", len(sig)))
	}

	parity = sig[0] - 27
	copy(r[:], sig[1:33])
	copy(s[:], sig[33:65])
	return r, s, parity, nil
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
