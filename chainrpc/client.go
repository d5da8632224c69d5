// Package chainrpc is a thin JSON-RPC client for a chain node, covering the
// handful of calls the CLI needs: block and storage retrieval, genesis hash,
// runtime version.
package chainrpc

import (
	"context"
	"fmt"

	"github.com/ybbus/jsonrpc/v3"

	"github.com/rpcpool/polkadot-faithful/scaleinfo"
)

// Client wraps a node JSON-RPC endpoint.
type Client struct {
	rpc jsonrpc.RPCClient
}

// NewClient creates a client for an HTTP(S) JSON-RPC endpoint.
func NewClient(endpoint string) *Client {
	return &Client{rpc: jsonrpc.NewClient(endpoint)}
}

// Block is a block as returned by chain_getBlock: header fields plus the
// hex-encoded extrinsics.
type Block struct {
	Header struct {
		Number     string `json:"number"`
		ParentHash string `json:"parentHash"`
	} `json:"header"`
	Extrinsics []string `json:"extrinsics"`
}

type signedBlock struct {
	Block Block `json:"block"`
}

// GetBlock fetches a block by hash; an empty hash fetches the head block.
func (c *Client) GetBlock(ctx context.Context, blockHash string) (*Block, error) {
	var out signedBlock
	var err error
	if blockHash == "" {
		err = c.rpc.CallFor(ctx, &out, "chain_getBlock")
	} else {
		err = c.rpc.CallFor(ctx, &out, "chain_getBlock", blockHash)
	}
	if err != nil {
		return nil, fmt.Errorf("chain_getBlock: %w", err)
	}
	return &out.Block, nil
}

// GetBlockHash fetches the hash of a block by number.
func (c *Client) GetBlockHash(ctx context.Context, number uint64) (string, error) {
	var out string
	if err := c.rpc.CallFor(ctx, &out, "chain_getBlockHash", number); err != nil {
		return "", fmt.Errorf("chain_getBlockHash: %w", err)
	}
	return out, nil
}

// GenesisHash fetches the chain genesis hash (the hash of block zero).
func (c *Client) GenesisHash(ctx context.Context) ([32]byte, error) {
	var out [32]byte
	printed, err := c.GetBlockHash(ctx, 0)
	if err != nil {
		return out, err
	}
	raw, err := scaleinfo.DecodeHex(printed)
	if err != nil {
		return out, fmt.Errorf("genesis hash: %w", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("genesis hash: expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// GetStorage fetches a raw storage value under the given full key. A nil
// result means the key holds no value.
func (c *Client) GetStorage(ctx context.Context, key []byte) ([]byte, error) {
	var out *string
	if err := c.rpc.CallFor(ctx, &out, "state_getStorage", fmt.Sprintf("0x%x", key)); err != nil {
		return nil, fmt.Errorf("state_getStorage: %w", err)
	}
	if out == nil {
		return nil, nil
	}
	return scaleinfo.DecodeHex(*out)
}

// RuntimeVersion is the subset of state_getRuntimeVersion the CLI reports.
type RuntimeVersion struct {
	SpecName           string `json:"specName"`
	ImplName           string `json:"implName"`
	SpecVersion        uint32 `json:"specVersion"`
	TransactionVersion uint32 `json:"transactionVersion"`
}

// GetRuntimeVersion fetches the node's runtime version.
func (c *Client) GetRuntimeVersion(ctx context.Context) (*RuntimeVersion, error) {
	var out RuntimeVersion
	if err := c.rpc.CallFor(ctx, &out, "state_getRuntimeVersion"); err != nil {
		return nil, fmt.Errorf("state_getRuntimeVersion: %w", err)
	}
	return &out, nil
}
