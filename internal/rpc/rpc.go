// Package rpc defines the JSON-RPC client contract RawTx and TxBuilder
// consume. The transport itself (internal/rpc/httprpc) is an external
// collaborator described only by this interface — callers may substitute
// any implementation, including a mock, without the core knowing.
package rpc

import (
	"context"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
)

// Error is rpc's Kind-tagged error type; see bwerr.Error.
type Error = bwerr.Error

// Client is the synchronous JSON-RPC surface the core requires. Every
// method blocks for exactly one request/response round trip and accepts
// a context for cancellation and per-request timeouts.
type Client interface {
	// GetTransactionCount returns the eth_getTransactionCount hex quantity
	// for address at blockTag ("latest", "earliest", "pending", or a
	// block number string).
	GetTransactionCount(ctx context.Context, address, blockTag string) (string, error)

	// GasPrice returns the eth_gasPrice hex quantity.
	GasPrice(ctx context.Context) (string, error)

	// GetBalance returns the eth_getBalance hex quantity for address at
	// blockTag.
	GetBalance(ctx context.Context, address, blockTag string) (string, error)

	// SendRawTransaction submits a "0x"-prefixed signed transaction and
	// returns the transaction hash.
	SendRawTransaction(ctx context.Context, signedTxHex string) (string, error)

	// GetTransactionReceiptStatus returns the eth_getTransactionReceipt
	// status field: "" (pending), "0x0" (mined, failed), or "0x1" (mined,
	// success).
	GetTransactionReceiptStatus(ctx context.Context, txHash string) (string, error)

	// GetStorageAt returns the eth_getStorageAt hex value at position for
	// address at blockTag.
	GetStorageAt(ctx context.Context, address, position, blockTag string) (string, error)

	// Call performs a read-only eth_call against to with the given gas,
	// gasPrice, and data (all hex-encoded per the JSON-RPC convention).
	Call(ctx context.Context, to, gas, gasPrice, data string) (string, error)
}
