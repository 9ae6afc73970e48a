// Package codec implements the big-endian and hex byte-stream conversions
// shared by the RLP encoder and the key-store: leading-zero trimming,
// length-preserving padding, and the Quantity/Unformatted hex conventions
// used at the JSON-RPC boundary.
package codec

import (
	"fmt"
	"log/slog"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
)

// Error is codec's Kind-tagged error type; see bwerr.Error.
type Error = bwerr.Error

// TrimMode selects how hex encoding trims leading zeros.
type TrimMode int

const (
	// TrimNone performs no trimming; every input byte is encoded.
	TrimNone TrimMode = iota
	// TrimQuantity trims every leading hex nibble that is zero, matching
	// Ethereum's JSON-RPC "quantity" convention (e.g. 0x1 not 0x01).
	TrimQuantity
	// TrimUnformatted trims only whole leading zero bytes, matching
	// Ethereum's JSON-RPC "unformatted data" convention.
	TrimUnformatted
)

var logger = slog.Default().With("component", "codec")

// TrimLeft drops leading 0x00 bytes from src. If src is non-empty and
// every byte is zero, it returns an empty slice when zeroAsNull is true
// and a single 0x00 byte otherwise; an empty src is returned as-is. The
// returned slice aliases src's backing array.
func TrimLeft(src []byte, zeroAsNull bool) []byte {
	i := 0
	for i < len(src) && src[i] == 0 {
		i++
	}
	if i == len(src) {
		if zeroAsNull {
			return src[len(src):]
		}
		if len(src) == 0 {
			return src
		}
		return src[len(src)-1:]
	}
	return src[i:]
}

// BinToHex renders src as lowercase hex ASCII under the given trim mode.
// prefix0x prepends "0x" to the result. If trimming would produce an empty
// string and zeroAsNull is false, it emits the canonical zero literal for
// the mode ("0" for Quantity, "00" for Unformatted); TrimNone never
// produces an empty result for non-empty input and ignores zeroAsNull.
func BinToHex(src []byte, mode TrimMode, prefix0x, zeroAsNull bool) string {
	var body string
	switch mode {
	case TrimNone:
		body = encodeHex(src)
	case TrimUnformatted:
		trimmed := TrimLeft(src, true)
		if len(trimmed) == 0 {
			if !zeroAsNull {
				body = "00"
			}
		} else {
			body = encodeHex(trimmed)
		}
	case TrimQuantity:
		trimmed := TrimLeft(src, true)
		hex := encodeHex(trimmed)
		// drop a single leading '0' nibble, since a trimmed byte string
		// may still start with a zero high nibble (e.g. 0x0a -> "0a")
		for len(hex) > 1 && hex[0] == '0' {
			hex = hex[1:]
		}
		if hex == "" {
			if !zeroAsNull {
				body = "0"
			}
		} else {
			body = hex
		}
	default:
		body = encodeHex(src)
	}

	if prefix0x {
		return "0x" + body
	}
	return body
}

// HexToBin parses a hex ASCII string into bytes. A "0x"/"0X" prefix is
// accepted only when the total input length exceeds 2. Odd-length input
// (after prefix removal) is treated as implicitly left-padded with one
// zero nibble. Any non-hex character, including whitespace, is an error.
// When mode is TrimNone the decoded bytes are returned as-is; any other
// mode applies TrimLeft with the given zeroAsNull policy.
func HexToBin(src string, mode TrimMode, zeroAsNull bool) ([]byte, error) {
	s := src
	if len(s) > 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}

	odd := len(s)%2 != 0
	if odd {
		logger.Debug("hex_to_bin: odd-length input implicitly zero-padded", "input", src)
		s = "0" + s
	}

	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, ok := nibble(s[2*i])
		if !ok {
			return nil, bwerr.New("codec.HexToBin", bwerr.InvalidLength, fmt.Errorf("invalid hex character %q", s[2*i]))
		}
		lo, ok := nibble(s[2*i+1])
		if !ok {
			return nil, bwerr.New("codec.HexToBin", bwerr.InvalidLength, fmt.Errorf("invalid hex character %q", s[2*i+1]))
		}
		out[i] = hi<<4 | lo
	}

	if mode == TrimNone {
		return out, nil
	}
	return TrimLeft(out, zeroAsNull), nil
}

// Uint32ToBigEndian renders x as big-endian bytes, left-trimmed. Unlike
// TrimLeft, the trimmed form of zero is always {0x00} (length 1, never
// empty) — callers that need an empty encoding for a zero-value numeric
// field (the RLP content-encoding rule) must trim that case themselves.
func Uint32ToBigEndian(x uint32) []byte {
	raw := []byte{byte(x >> 24), byte(x >> 16), byte(x >> 8), byte(x)}
	trimmed := TrimLeft(raw, false)
	if len(trimmed) == 0 {
		return []byte{0}
	}
	return trimmed
}

// Uint64ToBigEndian renders x as big-endian bytes, left-trimmed, with the
// same zero-is-{0x00} convention as Uint32ToBigEndian.
func Uint64ToBigEndian(x uint64) []byte {
	raw := []byte{
		byte(x >> 56), byte(x >> 48), byte(x >> 40), byte(x >> 32),
		byte(x >> 24), byte(x >> 16), byte(x >> 8), byte(x),
	}
	trimmed := TrimLeft(raw, false)
	if len(trimmed) == 0 {
		return []byte{0}
	}
	return trimmed
}

// Htonl converts a host-order uint32 to big-endian (network order) bytes,
// always 4 bytes wide, no trimming.
func Htonl(x uint32) []byte {
	return []byte{byte(x >> 24), byte(x >> 16), byte(x >> 8), byte(x)}
}

// Ntohl converts 4 big-endian bytes to a host-order uint32.
func Ntohl(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, bwerr.New("codec.Ntohl", bwerr.InvalidLength, fmt.Errorf("want 4 bytes, got %d", len(b)))
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

const hexDigits = "0123456789abcdef"

func encodeHex(src []byte) string {
	out := make([]byte, len(src)*2)
	for i, b := range src {
		out[2*i] = hexDigits[b>>4]
		out[2*i+1] = hexDigits[b&0x0f]
	}
	return string(out)
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
