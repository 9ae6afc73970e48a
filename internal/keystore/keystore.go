// Package keystore implements KeyStore: encrypted persistence and
// restoration of an account plus its network metadata, using AES-256-CBC
// under a password-derived key and a Keccak-256 integrity hash, with the
// IV-independent-decryption convention so no IV needs to be stored.
package keystore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/codec"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/wallet"
	"golang.org/x/crypto/sha3"
)

// Error is keystore's Kind-tagged error type; see bwerr.Error.
type Error = bwerr.Error

// disposableBlockLen is the size of the IV-independent-decryption block D
// prepended to the plaintext body before encryption.
const disposableBlockLen = aes.BlockSize

// ReasonableMaxLen bounds the declared plaintext length on load, guarding
// against a corrupt or hostile length field driving an oversized read.
const ReasonableMaxLen = 8192

// Save writes acc and net, encrypted under password, to w. The caller
// decides whether password includes a trailing NUL; Load must be called
// with the identical byte framing.
func Save(w io.Writer, acc *wallet.Account, net wallet.NetworkInfo, password []byte) error {
	if _, err := wallet.SetSecret(acc.SecretKey); err != nil {
		return bwerr.New("keystore.Save", bwerr.BadKey, fmt.Errorf("refusing to save invalid secret key: %w", err))
	}

	body := encodeBody(acc, net)
	defer zero(body)

	key := keccak256(password)
	defer zero(key)

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return bwerr.New("keystore.Save", bwerr.ExternalModuleFailure, err)
	}

	d := make([]byte, disposableBlockLen)
	if _, err := rand.Read(d); err != nil {
		return bwerr.New("keystore.Save", bwerr.ExternalModuleFailure, err)
	}

	plain := append(append([]byte{}, d...), body...)
	defer zero(plain)
	unpaddedLen := len(plain)
	plainPadded := padZero(plain, aes.BlockSize)

	hash := keccak256(body)

	block, err := aes.NewCipher(key)
	if err != nil {
		return bwerr.New("keystore.Save", bwerr.ExternalModuleFailure, err)
	}
	ciphertext := make([]byte, len(plainPadded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plainPadded)

	if _, err := w.Write(hash); err != nil {
		return bwerr.New("keystore.Save", bwerr.ExternalModuleFailure, err)
	}
	if _, err := w.Write(codec.Htonl(uint32(unpaddedLen))); err != nil {
		return bwerr.New("keystore.Save", bwerr.ExternalModuleFailure, err)
	}
	if _, err := w.Write(ciphertext); err != nil {
		return bwerr.New("keystore.Save", bwerr.ExternalModuleFailure, err)
	}

	return nil
}

// Load reads and decrypts a key-store blob from r under password,
// verifying its integrity hash and re-validating the secret key range.
// A MAC mismatch or an out-of-range key both surface through
// BadChecksum/BadKey respectively; a wrong password manifests as the
// former, since the derived key differs and decryption yields garbage.
func Load(r io.Reader, password []byte) (*wallet.Account, wallet.NetworkInfo, error) {
	var header [36]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.InvalidLength, err)
	}
	hash := header[:32]
	unpaddedLen, err := codec.Ntohl(header[32:36])
	if err != nil {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.InvalidLength, err)
	}
	if unpaddedLen > ReasonableMaxLen {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.InvalidLength, fmt.Errorf("declared length %d exceeds max %d", unpaddedLen, ReasonableMaxLen))
	}

	ciphertextLen := roundUp(int(unpaddedLen), aes.BlockSize)
	ciphertext := make([]byte, ciphertextLen)
	if _, err := io.ReadFull(r, ciphertext); err != nil {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.InvalidLength, err)
	}

	key := keccak256(password)
	defer zero(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.ExternalModuleFailure, err)
	}
	iv := make([]byte, aes.BlockSize) // arbitrary: the leading disposable block absorbs it
	plainPadded := make([]byte, len(ciphertext))
	defer zero(plainPadded)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plainPadded, ciphertext)

	if int(unpaddedLen) < disposableBlockLen {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.InvalidLength, fmt.Errorf("declared length %d shorter than disposable block", unpaddedLen))
	}
	body := plainPadded[disposableBlockLen:unpaddedLen]

	if !bytes.Equal(keccak256(body), hash) {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.BadChecksum, fmt.Errorf("integrity hash mismatch"))
	}

	acc, net, err := decodeBody(body)
	if err != nil {
		return nil, wallet.NetworkInfo{}, err
	}

	if _, err := wallet.SetSecret(acc.SecretKey); err != nil {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.Load", bwerr.BadKey, err)
	}

	return acc, net, nil
}

// encodeBody serializes Body in the field order secret_key(32) ||
// public_key(64) || address(20) || chain_id_be(4) || eip155(1) ||
// url_len_be(4) || url_bytes(N).
func encodeBody(acc *wallet.Account, net wallet.NetworkInfo) []byte {
	url := []byte(net.NodeURL)

	out := make([]byte, 0, 32+64+20+4+1+4+len(url))
	out = append(out, acc.SecretKey[:]...)
	out = append(out, acc.PublicKey[:]...)
	out = append(out, acc.Address[:]...)
	out = append(out, codec.Htonl(net.ChainID)...)
	if net.EIP155 {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, codec.Htonl(uint32(len(url)))...)
	out = append(out, url...)
	return out
}

func decodeBody(body []byte) (*wallet.Account, wallet.NetworkInfo, error) {
	const fixedLen = 32 + 64 + 20 + 4 + 1 + 4
	if len(body) < fixedLen {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.decodeBody", bwerr.InvalidLength, fmt.Errorf("body too short: %d bytes", len(body)))
	}

	var acc wallet.Account
	copy(acc.SecretKey[:], body[0:32])
	copy(acc.PublicKey[:], body[32:96])
	copy(acc.Address[:], body[96:116])

	chainID, err := codec.Ntohl(body[116:120])
	if err != nil {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.decodeBody", bwerr.InvalidLength, err)
	}
	eip155 := body[120] != 0

	urlLen, err := codec.Ntohl(body[121:125])
	if err != nil {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.decodeBody", bwerr.InvalidLength, err)
	}
	if len(body) != fixedLen+int(urlLen) {
		return nil, wallet.NetworkInfo{}, bwerr.New("keystore.decodeBody", bwerr.InvalidLength, fmt.Errorf("url length %d inconsistent with body size %d", urlLen, len(body)))
	}
	url := string(body[fixedLen:])

	net := wallet.NetworkInfo{ChainID: chainID, EIP155: eip155, NodeURL: url}
	return &acc, net, nil
}

func padZero(data []byte, blockSize int) []byte {
	rem := len(data) % blockSize
	if rem == 0 {
		return data
	}
	return append(data, make([]byte, blockSize-rem)...)
}

func roundUp(n, multiple int) int {
	if n%multiple == 0 {
		return n
	}
	return n + (multiple - n%multiple)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
