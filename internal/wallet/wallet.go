package wallet

import (
	"context"
	"fmt"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/codec"
)

// NetworkInfo carries the chain metadata a Wallet needs to sign and
// submit transactions: the chain id (only meaningful when EIP155 is
// set), the replay-protection toggle, and the JSON-RPC node URL.
type NetworkInfo struct {
	ChainID uint32
	EIP155  bool
	NodeURL string
}

// Wallet is Account plus NetworkInfo: the single active account a host
// process owns. There is no package-level singleton — callers hold their
// own *Wallet and serialize access to it themselves; Wallet does no
// locking of its own.
type Wallet struct {
	Account *Account
	Network NetworkInfo
}

// New pairs acc with net into a Wallet value.
func New(acc *Account, net NetworkInfo) *Wallet {
	return &Wallet{Account: acc, Network: net}
}

// BalanceClient is the subset of internal/rpc.Client that Balance needs,
// kept narrow so wallet does not import the rpc package's full surface.
type BalanceClient interface {
	GetBalance(ctx context.Context, address, blockTag string) (string, error)
}

// Balance queries the node for the wallet's current balance at the
// "latest" block, returning the raw wei quantity as a big-endian byte
// string (left-trimmed, zero-as-null).
func (w *Wallet) Balance(ctx context.Context, client BalanceClient) ([]byte, error) {
	addrHex := codec.BinToHex(w.Account.Address[:], codec.TrimUnformatted, true, true)
	quantityHex, err := client.GetBalance(ctx, addrHex, "latest")
	if err != nil {
		return nil, fmt.Errorf("wallet: get balance: %w", err)
	}
	return codec.HexToBin(quantityHex, codec.TrimQuantity, true)
}

// Zero releases the account's secret key. Call on wallet teardown and on
// every error path that held a reference to the secret key.
func (w *Wallet) Zero() {
	if w.Account != nil {
		w.Account.Zero()
	}
}
