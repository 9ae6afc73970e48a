// Package httprpc is a concrete JSON-RPC-over-HTTP implementation of
// internal/rpc.Client. It is the one piece of the external RPC
// collaborator the repo makes runnable; any other transport the host
// prefers can substitute for it behind the same interface.
package httprpc

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/olehkaliuzhnyi/boatwallet-go/internal/bwerr"
)

// Client posts JSON-RPC 2.0 envelopes to a single upstream node URL over
// net/http. Request ids increase monotonically from a random 32-bit
// seed, per the RPC contract.
type Client struct {
	nodeURL    string
	httpClient *http.Client
	nextID     uint64
	logger     *slog.Logger
}

// New returns a Client targeting nodeURL. timeout bounds every request's
// connection and total round-trip time.
func New(nodeURL string, timeout time.Duration) (*Client, error) {
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, bwerr.New("httprpc.New", bwerr.ExternalModuleFailure, err)
	}

	return &Client{
		nodeURL: nodeURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		nextID: uint64(binary.BigEndian.Uint32(seed[:])),
		logger: slog.Default().With("component", "httprpc"),
	}, nil
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, params ...any) (string, error) {
	id := atomic.AddUint64(&c.nextID, 1)

	body, err := json.Marshal(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return "", bwerr.New("httprpc.call", bwerr.JsonParse, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nodeURL, bytes.NewReader(body))
	if err != nil {
		return "", bwerr.New("httprpc.call", bwerr.ExternalModuleFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("rpc request", "method", method, "id", id)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", bwerr.New("httprpc.call", bwerr.RpcFailure, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", bwerr.New("httprpc.call", bwerr.RpcFailure, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", bwerr.New("httprpc.call", bwerr.RpcFailure, fmt.Errorf("http status %d: %s", httpResp.StatusCode, string(respBody)))
	}

	var rpcResp response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return "", bwerr.New("httprpc.call", bwerr.JsonParse, fmt.Errorf("unmarshal response: %w", err))
	}
	if rpcResp.Error != nil {
		return "", bwerr.New("httprpc.call", bwerr.RpcFailure, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}
	if len(rpcResp.Result) == 0 {
		return "", bwerr.New("httprpc.call", bwerr.JsonParse, fmt.Errorf("response missing result"))
	}

	var result string
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return "", bwerr.New("httprpc.call", bwerr.JsonParse, fmt.Errorf("result is not a string: %w", err))
	}
	return result, nil
}

// GetTransactionCount implements rpc.Client.
func (c *Client) GetTransactionCount(ctx context.Context, address, blockTag string) (string, error) {
	return c.call(ctx, "eth_getTransactionCount", address, blockTag)
}

// GasPrice implements rpc.Client.
func (c *Client) GasPrice(ctx context.Context) (string, error) {
	return c.call(ctx, "eth_gasPrice")
}

// GetBalance implements rpc.Client.
func (c *Client) GetBalance(ctx context.Context, address, blockTag string) (string, error) {
	return c.call(ctx, "eth_getBalance", address, blockTag)
}

// SendRawTransaction implements rpc.Client.
func (c *Client) SendRawTransaction(ctx context.Context, signedTxHex string) (string, error) {
	return c.call(ctx, "eth_sendRawTransaction", signedTxHex)
}

type receipt struct {
	Status string `json:"status"`
}

// GetTransactionReceiptStatus implements rpc.Client. It issues
// eth_getTransactionReceipt and extracts the status field, treating a
// null receipt (transaction still pending) as the empty string.
func (c *Client) GetTransactionReceiptStatus(ctx context.Context, txHash string) (string, error) {
	id := atomic.AddUint64(&c.nextID, 1)

	body, err := json.Marshal(request{JSONRPC: "2.0", ID: id, Method: "eth_getTransactionReceipt", Params: []any{txHash}})
	if err != nil {
		return "", bwerr.New("httprpc.GetTransactionReceiptStatus", bwerr.JsonParse, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nodeURL, bytes.NewReader(body))
	if err != nil {
		return "", bwerr.New("httprpc.GetTransactionReceiptStatus", bwerr.ExternalModuleFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", bwerr.New("httprpc.GetTransactionReceiptStatus", bwerr.RpcFailure, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", bwerr.New("httprpc.GetTransactionReceiptStatus", bwerr.RpcFailure, err)
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return "", bwerr.New("httprpc.GetTransactionReceiptStatus", bwerr.JsonParse, err)
	}
	if rpcResp.Error != nil {
		return "", bwerr.New("httprpc.GetTransactionReceiptStatus", bwerr.RpcFailure, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return "", nil
	}

	var r receipt
	if err := json.Unmarshal(rpcResp.Result, &r); err != nil {
		return "", bwerr.New("httprpc.GetTransactionReceiptStatus", bwerr.JsonParse, err)
	}
	return r.Status, nil
}

// GetStorageAt implements rpc.Client.
func (c *Client) GetStorageAt(ctx context.Context, address, position, blockTag string) (string, error) {
	return c.call(ctx, "eth_getStorageAt", address, position, blockTag)
}

type callParams struct {
	To       string `json:"to"`
	Gas      string `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Call implements rpc.Client.
func (c *Client) Call(ctx context.Context, to, gas, gasPrice, data string) (string, error) {
	return c.call(ctx, "eth_call", callParams{To: to, Gas: gas, GasPrice: gasPrice, Data: data}, "latest")
}
