package tx

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eip155TestKey is the EIP-155 example secret key, 0x46 repeated 32 times.
var eip155TestKey = strings.Repeat("46", 32)

// stubClient implements rpc.Client, recording the signed hex payload and
// answering receipt polls with receiptSeq's statuses in order, then ""
// (pending) once they run out.
type stubClient struct {
	sentHex     string
	receiptSeq  []string
	receiptCall int
}

func (s *stubClient) GetTransactionCount(ctx context.Context, address, blockTag string) (string, error) {
	return "0x0", nil
}
func (s *stubClient) GasPrice(ctx context.Context) (string, error) { return "0x0", nil }
func (s *stubClient) GetBalance(ctx context.Context, address, blockTag string) (string, error) {
	return "0x0", nil
}
func (s *stubClient) SendRawTransaction(ctx context.Context, signedTxHex string) (string, error) {
	s.sentHex = signedTxHex
	return "0x" + hex.EncodeToString(make([]byte, 32)), nil
}
func (s *stubClient) GetTransactionReceiptStatus(ctx context.Context, txHash string) (string, error) {
	if s.receiptCall < len(s.receiptSeq) {
		v := s.receiptSeq[s.receiptCall]
		s.receiptCall++
		return v, nil
	}
	return "", nil
}
func (s *stubClient) GetStorageAt(ctx context.Context, address, position, blockTag string) (string, error) {
	return "0x0", nil
}
func (s *stubClient) Call(ctx context.Context, to, gas, gasPrice, data string) (string, error) {
	return "0x", nil
}

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestSendEIP155Vector(t *testing.T) {
	// Scenario A: the canonical EIP-155 example.
	var secret [32]byte
	secretBytes := hexBytes(t, eip155TestKey)
	copy(secret[:], secretBytes)

	acc, err := wallet.SetSecret(secret)
	require.NoError(t, err)

	w := wallet.New(acc, wallet.NetworkInfo{ChainID: 1, EIP155: true, NodeURL: "https://node.example"})

	b := NewBuilder()
	b.fields.Nonce = hexBytes(t, "09")
	b.fields.GasPrice = hexBytes(t, "04a817c800")
	require.NoError(t, b.SetGasLimit(hexBytes(t, "5208")))
	var recipient [20]byte
	copy(recipient[:], hexBytes(t, "3535353535353535353535353535353535353535"))
	b.SetRecipient(recipient)
	b.SetValue(hexBytes(t, "0de0b6b3a7640000"))
	b.SetData(nil)

	raw := New(w, b.Fields(), DefaultConfig())
	client := &stubClient{receiptSeq: []string{"0x1"}}

	hash, err := raw.Send(context.Background(), client)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	want := "0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
	assert.Equal(t, want, client.sentHex)
	assert.Equal(t, Confirmed, raw.State())
}

func TestSendLegacyVReturnsLowValues(t *testing.T) {
	var secret [32]byte
	secretBytes := hexBytes(t, eip155TestKey)
	copy(secret[:], secretBytes)
	acc, err := wallet.SetSecret(secret)
	require.NoError(t, err)

	w := wallet.New(acc, wallet.NetworkInfo{EIP155: false})

	b := NewBuilder()
	b.fields.Nonce = hexBytes(t, "00")
	b.fields.GasPrice = hexBytes(t, "01")
	require.NoError(t, b.SetGasLimit(hexBytes(t, "5208")))
	var recipient [20]byte
	copy(recipient[:], hexBytes(t, "3535353535353535353535353535353535353535"))
	b.SetRecipient(recipient)
	b.SetValue(nil)
	b.SetData(nil)

	raw := New(w, b.Fields(), DefaultConfig())
	client := &stubClient{receiptSeq: []string{"0x1"}}

	_, err = raw.Send(context.Background(), client)
	require.NoError(t, err)

	raw2, err := hex.DecodeString(strings.TrimPrefix(client.sentHex, "0x"))
	require.NoError(t, err)
	items, err := decodeRLPStringList(raw2)
	require.NoError(t, err)
	require.Len(t, items, 9)

	v := beUint(items[6])
	assert.True(t, v == 27 || v == 28, "legacy v must be 27 or 28, got %d", v)
}

// decodeRLPStringList decodes a top-level RLP list whose items are all
// RLP strings, returning each item's raw content bytes.
func decodeRLPStringList(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	b0 := data[0]
	var payload []byte
	switch {
	case b0 >= 0xc0 && b0 <= 0xf7:
		payload = data[1 : 1+int(b0-0xc0)]
	case b0 >= 0xf8:
		lenOfLen := int(b0 - 0xf7)
		n := beUint(data[1 : 1+lenOfLen])
		payload = data[1+lenOfLen : 1+lenOfLen+int(n)]
	default:
		return nil, fmt.Errorf("not a list header: 0x%02x", b0)
	}

	var items [][]byte
	for i := 0; i < len(payload); {
		c0 := payload[i]
		switch {
		case c0 <= 0x7f:
			items = append(items, payload[i:i+1])
			i++
		case c0 <= 0xb7:
			n := int(c0 - 0x80)
			items = append(items, payload[i+1:i+1+n])
			i += 1 + n
		default:
			lenOfLen := int(c0 - 0xb7)
			n := int(beUint(payload[i+1 : i+1+lenOfLen]))
			items = append(items, payload[i+1+lenOfLen:i+1+lenOfLen+n])
			i += 1 + lenOfLen + n
		}
	}
	return items, nil
}

func beUint(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func TestSendTimesOutWithoutError(t *testing.T) {
	var secret [32]byte
	secretBytes := hexBytes(t, "0000000000000000000000000000000000000000000000000000000000000001")
	copy(secret[:], secretBytes)
	acc, err := wallet.SetSecret(secret)
	require.NoError(t, err)

	w := wallet.New(acc, wallet.NetworkInfo{ChainID: 1, EIP155: true})

	b := NewBuilder()
	b.fields.Nonce = []byte{}
	b.fields.GasPrice = hexBytes(t, "01")
	require.NoError(t, b.SetGasLimit(hexBytes(t, "5208")))
	var recipient [20]byte
	copy(recipient[:], hexBytes(t, "3535353535353535353535353535353535353535"))
	b.SetRecipient(recipient)

	cfg := DefaultConfig()
	cfg.MineInterval = time.Millisecond
	cfg.WaitPendingTimeout = 3 * time.Millisecond

	raw := New(w, b.Fields(), cfg)
	client := &stubClient{} // empty receiptSeq: every receipt poll reports pending

	_, err = raw.Send(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, TimedOut, raw.State())
}
