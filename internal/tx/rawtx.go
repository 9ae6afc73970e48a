package tx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/codec"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/rlp"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/rpc"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/wallet"
	"golang.org/x/crypto/sha3"
)

// State is one step in RawTx's linear lifecycle.
type State int

const (
	Fresh State = iota
	Encoded1
	Signed
	Encoded2
	Submitted
	Confirmed
	TimedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Encoded1:
		return "encoded1"
	case Signed:
		return "signed"
	case Encoded2:
		return "encoded2"
	case Submitted:
		return "submitted"
	case Confirmed:
		return "confirmed"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config bounds RawTx's receipt-polling loop and RLP field-size limit.
type Config struct {
	// MineInterval is how often the receipt-polling loop re-checks
	// status. Default 3s, matching the original implementation.
	MineInterval time.Duration
	// WaitPendingTimeout bounds the total time the polling loop may run
	// before giving up and returning TimedOut. Default 30s.
	WaitPendingTimeout time.Duration
	// ReasonableMaxLen caps any single RLP field's length. Default 8192.
	ReasonableMaxLen int
}

// DefaultConfig returns the original implementation's constants.
func DefaultConfig() Config {
	return Config{
		MineInterval:       3 * time.Second,
		WaitPendingTimeout: 30 * time.Second,
		ReasonableMaxLen:   rlp.ReasonableMaxLen,
	}
}

// RawTx is the two-pass EIP-155 encode/sign/submit/poll state machine.
type RawTx struct {
	state  State
	wallet *wallet.Wallet
	fields Fields
	cfg    Config
	logger *slog.Logger

	hash [32]byte
}

// New returns a fresh RawTx bound to w (account + network) and fields.
func New(w *wallet.Wallet, fields Fields, cfg Config) *RawTx {
	if cfg.MineInterval <= 0 {
		cfg.MineInterval = DefaultConfig().MineInterval
	}
	if cfg.WaitPendingTimeout <= 0 {
		cfg.WaitPendingTimeout = DefaultConfig().WaitPendingTimeout
	}
	if cfg.ReasonableMaxLen <= 0 {
		cfg.ReasonableMaxLen = rlp.ReasonableMaxLen
	}
	return &RawTx{
		state:  Fresh,
		wallet: w,
		fields: fields,
		cfg:    cfg,
		logger: slog.Default().With("component", "raw_tx"),
	}
}

// State returns the current lifecycle state.
func (t *RawTx) State() State {
	return t.state
}

// Hash returns the 32-byte transaction hash once Send has progressed
// past Submitted.
func (t *RawTx) Hash() [32]byte {
	return t.hash
}

// Send runs the full algorithm: two-pass RLP encoding, Keccak-256
// digesting, ECDSA signing, hex-encoding, submission, and bounded
// receipt polling. A timed-out or mined-but-reverted transaction is not
// an error — the caller must inspect the final State.
func (t *RawTx) Send(ctx context.Context, client rpc.Client) (string, error) {
	// Pass 1: placeholder v/r/s (EIP-155) or none at all (legacy),
	// yielding the digest that gets signed.
	var placeholderV, emptyRS []byte
	eip155 := t.wallet.Network.EIP155
	if eip155 {
		placeholderV = codec.TrimLeft(codec.Htonl(t.wallet.Network.ChainID), true)
	}

	message1, err := t.encodeList(placeholderV, emptyRS, emptyRS, eip155)
	if err != nil {
		t.state = Failed
		return "", fmt.Errorf("raw_tx: encode pass 1: %w", err)
	}
	t.state = Encoded1

	digest := keccak256(message1)
	defer zero(digest)
	t.state = Signed

	r, s, parity, err := t.wallet.Account.Sign([32]byte(digest))
	if err != nil {
		t.state = Failed
		return "", fmt.Errorf("raw_tx: sign: %w", err)
	}
	// rTrim/sTrim below reslice r[:]/s[:] rather than copy, so zeroing r
	// and s at return also clears rTrim and sTrim.
	defer zero(r[:])
	defer zero(s[:])

	rTrim := codec.TrimLeft(r[:], true)
	sTrim := codec.TrimLeft(s[:], true)

	v, err := computeV(eip155, t.wallet.Network.ChainID, parity)
	if err != nil {
		t.state = Failed
		return "", fmt.Errorf("raw_tx: compute v: %w", err)
	}

	message2, err := t.encodeList(v, rTrim, sTrim, true)
	if err != nil {
		t.state = Failed
		return "", fmt.Errorf("raw_tx: encode pass 2: %w", err)
	}
	defer zero(message2)
	t.state = Encoded2

	signedHex := codec.BinToHex(message2, codec.TrimUnformatted, true, true)

	t.logger.Info("submitting transaction", "to", codec.BinToHex(t.fields.Recipient[:], codec.TrimUnformatted, true, true))

	hashHex, err := client.SendRawTransaction(ctx, signedHex)
	if err != nil {
		t.state = Failed
		return "", fmt.Errorf("raw_tx: send raw transaction: %w", err)
	}
	t.state = Submitted

	hashBytes, err := codec.HexToBin(hashHex, codec.TrimNone, false)
	if err == nil && len(hashBytes) == 32 {
		copy(t.hash[:], hashBytes)
	}
	t.logger.Info("transaction submitted", "tx_hash", hashHex)

	t.pollReceipt(ctx, client, hashHex)

	return hashHex, nil
}

// pollReceipt polls the transaction's receipt status every MineInterval
// until it mines, times out, or ctx is cancelled. It never returns an
// error: a timeout is not a send failure per the protocol.
func (t *RawTx) pollReceipt(ctx context.Context, client rpc.Client, hashHex string) {
	deadline := time.Now().Add(t.cfg.WaitPendingTimeout)
	ticker := time.NewTicker(t.cfg.MineInterval)
	defer ticker.Stop()

	for {
		if time.Now().After(deadline) {
			t.state = TimedOut
			t.logger.Debug("receipt poll timed out", "tx_hash", hashHex)
			return
		}

		status, err := client.GetTransactionReceiptStatus(ctx, hashHex)
		if err != nil {
			t.logger.Warn("receipt poll failed, retrying", "error", err)
		} else {
			switch status {
			case "":
				// pending, keep polling
			case "0x1":
				t.state = Confirmed
				t.logger.Info("transaction confirmed", "tx_hash", hashHex)
				return
			case "0x0":
				t.state = Failed
				t.logger.Info("transaction mined but reverted", "tx_hash", hashHex)
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// encodeList RLP-encodes the nine (or six, for a legacy pass-1 digest)
// transaction fields as a single list. includeVRS controls whether v, r,
// s are appended.
func (t *RawTx) encodeList(v, r, s []byte, includeVRS bool) ([]byte, error) {
	items := [][]byte{
		t.fields.Nonce,
		t.fields.GasPrice,
		t.fields.GasLimit,
		t.fields.Recipient[:],
		t.fields.Value,
		t.fields.Data,
	}
	if includeVRS {
		items = append(items, v, r, s)
	}

	buf := make([]byte, rlp.HeaderSlack)
	offset := rlp.HeaderSlack
	for _, item := range items {
		n, err := rlp.EncodedLen(item, rlp.String, t.cfg.ReasonableMaxLen)
		if err != nil {
			return nil, bwerr.New("raw_tx.encodeList", bwerr.RlpEncoding, err)
		}
		buf = append(buf, make([]byte, n)...)
		newOffset, err := rlp.EncodeContent(buf, offset, item, rlp.String, t.cfg.ReasonableMaxLen)
		if err != nil {
			return nil, bwerr.New("raw_tx.encodeList", bwerr.RlpEncoding, err)
		}
		offset = newOffset
	}

	payload := buf[rlp.HeaderSlack:offset]
	start, err := rlp.EncodePrefixHeader(buf, rlp.HeaderSlack, payload, rlp.List, t.cfg.ReasonableMaxLen)
	if err != nil {
		return nil, bwerr.New("raw_tx.encodeList", bwerr.RlpEncoding, err)
	}

	return buf[start:offset], nil
}

// computeV derives the EIP-155 or legacy v value and returns it
// big-endian, left-trimmed, bounded to 4 bytes.
func computeV(eip155 bool, chainID uint32, parity byte) ([]byte, error) {
	var v uint64
	if eip155 {
		v = 2*uint64(chainID) + uint64(parity) + 35
	} else {
		v = uint64(parity) + 27
	}

	raw := []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
	trimmed := codec.TrimLeft(raw, true)
	if len(trimmed) > 4 {
		return nil, bwerr.New("raw_tx.computeV", bwerr.InvalidLength, fmt.Errorf("v does not fit in 4 bytes"))
	}
	return trimmed, nil
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
