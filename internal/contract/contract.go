// Package contract exposes the read-only contract operations the
// original boatwallet library offered alongside transaction sending:
// eth_call and eth_getStorageAt. Neither mutates chain state, so neither
// touches the RawTx state machine.
package contract

import (
	"context"
	"fmt"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/rpc"
)

// Caller wraps an rpc.Client with the two read-only contract operations.
type Caller struct {
	client rpc.Client
}

// New returns a Caller backed by client.
func New(client rpc.Client) *Caller {
	return &Caller{client: client}
}

// Call performs a read-only eth_call against the contract at to, passing
// data as the hex-encoded function selector plus arguments. gas and
// gasPrice are optional hex quantities; pass "" to omit them.
func (c *Caller) Call(ctx context.Context, to, gas, gasPrice, data string) (string, error) {
	result, err := c.client.Call(ctx, to, gas, gasPrice, data)
	if err != nil {
		return "", fmt.Errorf("contract: call: %w", err)
	}
	return result, nil
}

// StorageAt reads a single 32-byte storage slot at position for the
// contract at address, as of blockTag.
func (c *Caller) StorageAt(ctx context.Context, address, position, blockTag string) (string, error) {
	result, err := c.client.GetStorageAt(ctx, address, position, blockTag)
	if err != nil {
		return "", fmt.Errorf("contract: get storage at: %w", err)
	}
	return result, nil
}
