// Command boatwalletctl is a demo CLI exercising the wallet core end to
// end: account generation, encrypted key-store persistence, balance
// queries, and signed transaction submission against a JSON-RPC node.
//
// It loads its configuration the way gipsh-polymarket-bot-go's bot does:
// OS environment variables, with a .env file (if present) filling in any
// that are unset, and a command's flags overriding both where the
// command has one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/codec"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/config"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/contract"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/keystore"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/rpc/httprpc"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/tx"
	"github.com/olehkaliuzhnyi/boatwallet-go/internal/wallet"
)

func main() {
	logger := slog.Default().With("component", "boatwalletctl")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.FromDotEnv(".env")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		cancel()
	}()

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:])
	case "address":
		err = runAddress(os.Args[2:])
	case "balance":
		err = runBalance(ctx, cfg, os.Args[2:])
	case "send":
		err = runSend(ctx, cfg, os.Args[2:])
	case "call":
		err = runCall(ctx, cfg, os.Args[2:])
	case "storage-at":
		err = runStorageAt(ctx, cfg, os.Args[2:])
	case "keystore-save":
		err = runKeystoreSave(os.Args[2:])
	case "keystore-load":
		err = runKeystoreLoad(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: boatwalletctl <command> [flags]

commands:
  generate                          print a fresh secret key and address
  address -key <hex>                print the address for a secret key
  balance -key <hex>                query the account's balance
  send -key <hex> -to <addr> -value <hex> -gas-limit <hex> [-data <hex>]
  call -to <addr> -data <hex> [-gas <hex>] [-gas-price <hex>]
  storage-at -address <addr> -position <hex>
  keystore-save -key <hex> -out <path> -password <pw>
  keystore-load -in <path> -password <pw>`)
}

func mustClient(cfg config.Config) (*httprpc.Client, error) {
	if cfg.NodeURL == "" {
		return nil, fmt.Errorf("NODE_URL is not set")
	}
	return httprpc.New(cfg.NodeURL, cfg.RPCTimeout)
}

func parseSecretKey(hexKey string) ([32]byte, error) {
	var k [32]byte
	b, err := codec.HexToBin(hexKey, codec.TrimNone, false)
	if err != nil {
		return k, fmt.Errorf("decode secret key: %w", err)
	}
	if len(b) != 32 {
		return k, fmt.Errorf("secret key must be 32 bytes, got %d", len(b))
	}
	copy(k[:], b)
	return k, nil
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	fs.Parse(args)

	acc, err := wallet.GenerateAccount(nil)
	if err != nil {
		return fmt.Errorf("generate account: %w", err)
	}
	defer acc.Zero()

	fmt.Printf("secret_key: %s\n", codec.BinToHex(acc.SecretKey[:], codec.TrimNone, false, false))
	fmt.Printf("address:    %s\n", codec.BinToHex(acc.Address[:], codec.TrimUnformatted, true, true))
	return nil
}

func runAddress(args []string) error {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	keyHex := fs.String("key", "", "secret key, hex-encoded")
	fs.Parse(args)

	k, err := parseSecretKey(*keyHex)
	if err != nil {
		return err
	}
	acc, err := wallet.SetSecret(k)
	if err != nil {
		return fmt.Errorf("set secret: %w", err)
	}
	defer acc.Zero()

	fmt.Println(codec.BinToHex(acc.Address[:], codec.TrimUnformatted, true, true))
	return nil
}

func runBalance(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	keyHex := fs.String("key", cfg.PrivateKeyHex, "secret key, hex-encoded")
	fs.Parse(args)

	k, err := parseSecretKey(*keyHex)
	if err != nil {
		return err
	}
	acc, err := wallet.SetSecret(k)
	if err != nil {
		return fmt.Errorf("set secret: %w", err)
	}
	defer acc.Zero()

	client, err := mustClient(cfg)
	if err != nil {
		return err
	}

	w := wallet.New(acc, wallet.NetworkInfo{ChainID: cfg.ChainID, EIP155: cfg.EIP155, NodeURL: cfg.NodeURL})
	balance, err := w.Balance(ctx, client)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}

	fmt.Printf("%s wei\n", codec.BinToHex(balance, codec.TrimQuantity, false, true))
	return nil
}

func runSend(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	keyHex := fs.String("key", cfg.PrivateKeyHex, "secret key, hex-encoded")
	toHex := fs.String("to", "", "recipient address, hex-encoded")
	valueHex := fs.String("value", "0x0", "value in wei, hex-encoded")
	gasLimitHex := fs.String("gas-limit", "0x5208", "gas limit, hex-encoded")
	gasPriceHex := fs.String("gas-price", "", "gas price, hex-encoded (queries the node if omitted)")
	dataHex := fs.String("data", "", "call data, hex-encoded")
	fs.Parse(args)

	k, err := parseSecretKey(*keyHex)
	if err != nil {
		return err
	}
	acc, err := wallet.SetSecret(k)
	if err != nil {
		return fmt.Errorf("set secret: %w", err)
	}
	defer acc.Zero()

	toBytes, err := codec.HexToBin(*toHex, codec.TrimNone, false)
	if err != nil || len(toBytes) != 20 {
		return fmt.Errorf("invalid recipient address %q", *toHex)
	}
	var to [20]byte
	copy(to[:], toBytes)

	client, err := mustClient(cfg)
	if err != nil {
		return err
	}

	idempotencyKey := uuid.New().String()
	logger := slog.Default().With("component", "boatwalletctl", "idempotency_key", idempotencyKey)
	logger.Info("preparing transaction", "to", *toHex)

	b := tx.NewBuilder()
	if err := b.SetNonce(ctx, client, acc.Address); err != nil {
		return fmt.Errorf("set nonce: %w", err)
	}

	var gasPrice []byte
	if *gasPriceHex != "" {
		gasPrice, err = codec.HexToBin(*gasPriceHex, codec.TrimNone, true)
		if err != nil {
			return fmt.Errorf("decode gas price: %w", err)
		}
	}
	if err := b.SetGasPrice(ctx, client, gasPrice); err != nil {
		return fmt.Errorf("set gas price: %w", err)
	}

	gasLimit, err := codec.HexToBin(*gasLimitHex, codec.TrimNone, true)
	if err != nil {
		return fmt.Errorf("decode gas limit: %w", err)
	}
	if err := b.SetGasLimit(gasLimit); err != nil {
		return fmt.Errorf("set gas limit: %w", err)
	}

	b.SetRecipient(to)

	value, err := codec.HexToBin(*valueHex, codec.TrimNone, true)
	if err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	b.SetValue(value)

	var data []byte
	if *dataHex != "" {
		data, err = codec.HexToBin(*dataHex, codec.TrimNone, false)
		if err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	b.SetData(data)

	w := wallet.New(acc, wallet.NetworkInfo{ChainID: cfg.ChainID, EIP155: cfg.EIP155, NodeURL: cfg.NodeURL})
	raw := tx.New(w, b.Fields(), tx.Config{
		MineInterval:       cfg.MineInterval,
		WaitPendingTimeout: cfg.WaitPendingTimeout,
		ReasonableMaxLen:   cfg.ReasonableMaxLen,
	})

	hash, err := raw.Send(ctx, client)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	logger.Info("transaction sent", "hash", hash, "state", raw.State())
	fmt.Println(hash)
	return nil
}

func runCall(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	toHex := fs.String("to", "", "contract address, hex-encoded")
	dataHex := fs.String("data", "", "call data, hex-encoded")
	gasHex := fs.String("gas", "", "gas, hex-encoded")
	gasPriceHex := fs.String("gas-price", "", "gas price, hex-encoded")
	fs.Parse(args)

	client, err := mustClient(cfg)
	if err != nil {
		return err
	}

	caller := contract.New(client)
	result, err := caller.Call(ctx, *toHex, *gasHex, *gasPriceHex, *dataHex)
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}
	fmt.Println(result)
	return nil
}

func runStorageAt(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("storage-at", flag.ExitOnError)
	addressHex := fs.String("address", "", "contract address, hex-encoded")
	positionHex := fs.String("position", "0x0", "storage slot, hex-encoded")
	fs.Parse(args)

	client, err := mustClient(cfg)
	if err != nil {
		return err
	}

	caller := contract.New(client)
	result, err := caller.StorageAt(ctx, *addressHex, *positionHex, "latest")
	if err != nil {
		return fmt.Errorf("storage at: %w", err)
	}
	fmt.Println(result)
	return nil
}

func runKeystoreSave(args []string) error {
	fs := flag.NewFlagSet("keystore-save", flag.ExitOnError)
	keyHex := fs.String("key", "", "secret key, hex-encoded")
	out := fs.String("out", "", "output key-store file path")
	password := fs.String("password", "", "key-store password")
	nodeURL := fs.String("node-url", "", "node URL to persist alongside the account")
	chainID := fs.Uint("chain-id", 1, "chain id to persist")
	eip155 := fs.Bool("eip155", true, "persist EIP-155 replay protection")
	fs.Parse(args)

	if *out == "" || *password == "" {
		return fmt.Errorf("both -out and -password are required")
	}

	k, err := parseSecretKey(*keyHex)
	if err != nil {
		return err
	}
	acc, err := wallet.SetSecret(k)
	if err != nil {
		return fmt.Errorf("set secret: %w", err)
	}
	defer acc.Zero()

	f, err := os.OpenFile(*out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	net := wallet.NetworkInfo{ChainID: uint32(*chainID), EIP155: *eip155, NodeURL: *nodeURL}
	if err := keystore.Save(f, acc, net, []byte(*password)); err != nil {
		return fmt.Errorf("save key-store: %w", err)
	}
	fmt.Printf("saved key-store to %s\n", *out)
	return nil
}

func runKeystoreLoad(args []string) error {
	fs := flag.NewFlagSet("keystore-load", flag.ExitOnError)
	in := fs.String("in", "", "input key-store file path")
	password := fs.String("password", "", "key-store password")
	fs.Parse(args)

	if *in == "" || *password == "" {
		return fmt.Errorf("both -in and -password are required")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open key-store file: %w", err)
	}
	defer f.Close()

	acc, net, err := keystore.Load(f, []byte(*password))
	if err != nil {
		return fmt.Errorf("load key-store: %w", err)
	}
	defer acc.Zero()

	fmt.Printf("address:  %s\n", codec.BinToHex(acc.Address[:], codec.TrimUnformatted, true, true))
	fmt.Printf("chain_id: %d\n", net.ChainID)
	fmt.Printf("eip155:   %t\n", net.EIP155)
	fmt.Printf("node_url: %s\n", net.NodeURL)
	return nil
}
