package tx

// Fields holds the six caller-supplied fields of an Ethereum legacy
// transaction (nonce through data); RawTx computes the remaining three
// (v, r, s) when it signs. Numeric fields are stored big-endian, left-trimmed, with a zero value
// encoded as the empty byte slice — the convention RLP content encoding
// expects. Recipient is the one exception: always exactly 20 bytes,
// never trimmed.
type Fields struct {
	Nonce     []byte
	GasPrice  []byte
	GasLimit  []byte
	Recipient [20]byte
	Value     []byte
	Data      []byte
}
