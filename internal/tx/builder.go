// Package tx implements TxBuilder (the transaction field setters)
// and RawTx (the EIP-155 two-pass encode/sign/submit/poll state machine).
package tx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/codec"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/rpc"
)

// Error is tx's Kind-tagged error type; see bwerr.Error.
type Error = bwerr.Error

// Builder accumulates the six caller-supplied transaction fields (see
// Fields) via typed setters.
// Once a secret key is set on the owning wallet, setters may be called
// in any order prior to RawTx.Send.
type Builder struct {
	fields Fields
	logger *slog.Logger
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{logger: slog.Default().With("component", "tx_builder")}
}

// SetNonce queries client for address's current transaction count at the
// "latest" block and stores it as the nonce.
func (b *Builder) SetNonce(ctx context.Context, client rpc.Client, address [20]byte) error {
	addrHex := codec.BinToHex(address[:], codec.TrimUnformatted, true, true)
	quantity, err := client.GetTransactionCount(ctx, addrHex, "latest")
	if err != nil {
		return fmt.Errorf("tx_builder: set nonce: %w", err)
	}
	nonce, err := codec.HexToBin(quantity, codec.TrimQuantity, true)
	if err != nil {
		return fmt.Errorf("tx_builder: set nonce: decode: %w", err)
	}
	b.logger.Debug("nonce set", "nonce_hex", quantity)
	b.fields.Nonce = nonce
	return nil
}

// SetGasPrice stores value as the gas price; if value is nil, it queries
// client for the current network gas price instead.
func (b *Builder) SetGasPrice(ctx context.Context, client rpc.Client, value []byte) error {
	if value != nil {
		b.fields.GasPrice = codec.TrimLeft(value, true)
		return nil
	}
	quantity, err := client.GasPrice(ctx)
	if err != nil {
		return fmt.Errorf("tx_builder: set gas price: %w", err)
	}
	gasPrice, err := codec.HexToBin(quantity, codec.TrimQuantity, true)
	if err != nil {
		return fmt.Errorf("tx_builder: set gas price: decode: %w", err)
	}
	b.logger.Debug("gas price set", "gas_price_hex", quantity)
	b.fields.GasPrice = gasPrice
	return nil
}

// SetGasLimit stores value as the gas limit. There is no RPC fallback:
// the caller must always supply one.
func (b *Builder) SetGasLimit(value []byte) error {
	if value == nil {
		return bwerr.New("tx_builder.SetGasLimit", bwerr.NullArgument, fmt.Errorf("gas limit is required"))
	}
	b.fields.GasLimit = codec.TrimLeft(value, true)
	return nil
}

// SetRecipient stores addr verbatim; it is never trimmed.
func (b *Builder) SetRecipient(addr [20]byte) {
	b.fields.Recipient = addr
}

// SetValue stores value; a nil value encodes as empty (a zero-wei
// transfer).
func (b *Builder) SetValue(value []byte) {
	if value == nil {
		b.fields.Value = nil
		return
	}
	b.fields.Value = codec.TrimLeft(value, true)
}

// SetData stores data verbatim; a nil value encodes as empty.
func (b *Builder) SetData(data []byte) {
	b.fields.Data = data
}

// Fields returns a copy of the accumulated fields, ready for RawTx.
func (b *Builder) Fields() Fields {
	return b.fields
}
