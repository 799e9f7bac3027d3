package utils

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrNetworkMismatch is returned when the endpoint serves a different chain than the selected table
	ErrNetworkMismatch = errors.New("rpc endpoint serves a different network")
)

// EthClient wraps the ethereum client with the chain id it was dialed against
type EthClient struct {
	*ethclient.Client
	chainID        *big.Int
	confirmTimeout time.Duration
}

// createHTTPClient creates the HTTP client used for RPC calls. Transfers are
// sequential so a small keep-alive pool is enough.
func createHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// NewEthClient dials the endpoint and records its chain id.
// confirmTimeout bounds each WaitMined call; zero waits indefinitely.
func NewEthClient(ctx context.Context, url string, confirmTimeout time.Duration) (*EthClient, error) {
	rpcClient, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(createHTTPClient()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rpc client: %w", err)
	}

	cli := ethclient.NewClient(rpcClient)

	chainID, err := cli.ChainID(ctx)
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to query chain id from %s: %w", url, err)
	}

	return &EthClient{
		Client:         cli,
		chainID:        chainID,
		confirmTimeout: confirmTimeout,
	}, nil
}

// NetworkChainID returns the chain id reported by the endpoint when dialed
func (e *EthClient) NetworkChainID() *big.Int {
	return new(big.Int).Set(e.chainID)
}

// CheckNetwork fails when the endpoint's chain id differs from want
func (e *EthClient) CheckNetwork(want uint64) error {
	if !e.chainID.IsUint64() || e.chainID.Uint64() != want {
		return fmt.Errorf("%w: expected chain id %d, endpoint reports %s", ErrNetworkMismatch, want, e.chainID)
	}
	return nil
}
