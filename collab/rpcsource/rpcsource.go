// Package rpcsource implements collab.BlockSource against a NEAR RPC
// endpoint over JSON-RPC 2.0 / HTTPS, the wire format fixed by this
// light client's external interface (next_light_client_block).
package rpcsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/near/lightclientd/header"
)

// DefaultTimeout is the per-call deadline applied when the caller's
// context carries no deadline of its own.
const DefaultTimeout = 30 * time.Second

// RPCError is a JSON-RPC 2.0 error object, returned verbatim when the
// remote node answers with one (as opposed to a transport failure,
// which surfaces as a plain wrapped error).
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpcsource: rpc error %d: %s", e.Code, e.Message)
}

type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      string      `json:"id"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      string          `json:"id"`
}

type nextLightClientBlockParams struct {
	LastBlockHash string `json:"last_block_hash"`
}

// Source is a collab.BlockSource backed by a single NEAR RPC endpoint.
// Like the teacher's common.RawRequest, the HTTP transport is a struct
// field (Client) rather than a package-level value, so a caller can
// substitute its own *http.Client without touching global state.
type Source struct {
	Endpoint string
	Client   *http.Client
}

// New returns a Source posting to endpoint with a default HTTP client.
func New(endpoint string) *Source {
	return &Source{Endpoint: endpoint, Client: http.DefaultClient}
}

// FetchNext implements collab.BlockSource.
func (s *Source) FetchNext(ctx context.Context, lastBlockHash header.LightClientBlockLiteView) (*header.LightClientBlockView, error) {
	return s.FetchByHash(ctx, lastBlockHash.Hash().ToBase58())
}

// FetchByHash calls next_light_client_block with lastBlockHashBase58
// passed through verbatim as last_block_hash, for callers (bootstrap)
// that already hold a literal block hash rather than a LiteView to
// derive one from.
func (s *Source) FetchByHash(ctx context.Context, lastBlockHashBase58 string) (*header.LightClientBlockView, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	reqBody := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  "next_light_client_block",
		Params:  nextLightClientBlockParams{LastBlockHash: lastBlockHashBase58},
		ID:      "lightclientd",
	}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("rpcsource: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("rpcsource: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rpcsource: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rpcsource: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpcsource: http status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("rpcsource: decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return nil, nil
	}

	var view header.LightClientBlockView
	if err := json.Unmarshal(rpcResp.Result, &view); err != nil {
		return nil, fmt.Errorf("rpcsource: decode result: %w", err)
	}
	return &view, nil
}
