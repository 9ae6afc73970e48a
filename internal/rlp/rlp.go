// Package rlp implements the subset of Recursive Length Prefix encoding
// needed for legacy Ethereum transactions: single-field string/list
// encoding, plus the backward-growing "prefix-header" mode used to wrap
// an already-encoded run of fields in an outer list header without
// materializing a nested structure.
package rlp

import (
	"fmt"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
)

// Error is rlp's Kind-tagged error type; see bwerr.Error.
type Error = bwerr.Error

// Kind distinguishes an RLP string field from an RLP list field.
type Kind int

const (
	// String is an RLP byte-string field.
	String Kind = iota
	// List is an RLP list field (its payload is the concatenation of
	// already-encoded child items).
	List
)

// ReasonableMaxLen is the default hard ceiling on a single field's
// length; inputs longer than this are rejected.
const ReasonableMaxLen = 8192

const (
	strBase  = 0x80
	listBase = 0xC0
)

// HeaderSlack is the minimum number of bytes a caller must reserve
// immediately before a field's payload to use EncodePrefixHeader safely:
// one length-of-length byte plus up to 8 bytes of big-endian length.
const HeaderSlack = 9

// EncodeContent writes the RLP header and payload for field into dst,
// which must have enough room starting at offset, and returns the offset
// one past the last byte written. maxLen overrides ReasonableMaxLen when
// non-zero; pass 0 to use the default.
func EncodeContent(dst []byte, offset int, field []byte, kind Kind, maxLen int) (int, error) {
	header, err := header(field, kind, maxLen)
	if err != nil {
		return 0, err
	}
	n := copy(dst[offset:], header)
	offset += n
	n = copy(dst[offset:], field)
	offset += n
	return offset, nil
}

// EncodePrefixHeader writes the RLP header for field (already present at
// dst[payloadStart:payloadStart+len(field)]) immediately before
// payloadStart, growing backward. It returns the new start offset of the
// combined header+payload run. The caller must have reserved at least
// HeaderSlack bytes before payloadStart. field must alias
// dst[payloadStart:payloadStart+len(field)] (its content is not
// rewritten, only the header is placed before it).
func EncodePrefixHeader(dst []byte, payloadStart int, field []byte, kind Kind, maxLen int) (int, error) {
	header, err := header(field, kind, maxLen)
	if err != nil {
		return 0, err
	}
	if payloadStart < len(header) {
		return 0, bwerr.New("rlp.EncodePrefixHeader", bwerr.IncompatibleArguments, fmt.Errorf("insufficient header slack: need %d bytes before offset %d", len(header), payloadStart))
	}
	start := payloadStart - len(header)
	copy(dst[start:payloadStart], header)
	return start, nil
}

// header computes the RLP header bytes for field under kind. A single
// string byte <= 0x7F has no header (the empty slice is returned and the
// caller must copy the byte itself via EncodeContent/EncodePrefixHeader,
// which is handled transparently since header() returns an empty prefix
// in that case).
func header(field []byte, kind Kind, maxLen int) ([]byte, error) {
	limit := maxLen
	if limit <= 0 {
		limit = ReasonableMaxLen
	}
	l := len(field)
	if l > limit {
		return nil, bwerr.New("rlp.header", bwerr.InvalidLength, fmt.Errorf("field length %d exceeds reasonable max %d", l, limit))
	}

	base := byte(strBase)
	if kind == List {
		base = listBase
	}

	if kind == String && l == 1 && field[0] <= 0x7F {
		return nil, nil
	}

	if l <= 55 {
		return []byte{base + byte(l)}, nil
	}

	lbe := trimBigEndian(uint64(l))
	if len(lbe) > 8 {
		return nil, bwerr.New("rlp.header", bwerr.RlpEncoding, fmt.Errorf("length-of-length overflow"))
	}
	out := make([]byte, 0, 1+len(lbe))
	out = append(out, base+55+byte(len(lbe)))
	out = append(out, lbe...)
	return out, nil
}

func trimBigEndian(x uint64) []byte {
	raw := []byte{
		byte(x >> 56), byte(x >> 48), byte(x >> 40), byte(x >> 32),
		byte(x >> 24), byte(x >> 16), byte(x >> 8), byte(x),
	}
	i := 0
	for i < len(raw)-1 && raw[i] == 0 {
		i++
	}
	return raw[i:]
}

// EncodedLen returns the number of bytes EncodeContent/EncodePrefixHeader
// would produce for field under kind, without writing anything.
func EncodedLen(field []byte, kind Kind, maxLen int) (int, error) {
	h, err := header(field, kind, maxLen)
	if err != nil {
		return 0, err
	}
	return len(h) + len(field), nil
}
