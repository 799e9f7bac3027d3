package drip

import (
	"context"
	"fmt"
	"math/big"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/okx/drip/utils"
)

// ========================================
// Command entry points
// ========================================

func resolveNetwork(cfg utils.TransferConfig) (utils.Network, error) {
	registry, err := utils.DefaultRegistry()
	if err != nil {
		return utils.Network{}, err
	}
	return registry.Resolve(cfg.Network)
}

// dial connects to the network's endpoint, failing when it serves a different
// chain than the selected tables
func dial(ctx context.Context, cfg utils.TransferConfig, network utils.Network) (*utils.EthClient, error) {
	rpcURL := cfg.Rpc
	if rpcURL == "" {
		rpcURL = network.Rpc
	}
	cli, err := utils.NewEthClient(ctx, rpcURL, cfg.ConfirmTimeout)
	if err != nil {
		return nil, err
	}
	if err := cli.CheckNetwork(network.ID); err != nil {
		cli.Close()
		return nil, err
	}
	return cli, nil
}

// Distribute sends TransferAmount of every token of the configured network to
// every recipient. Construction errors are returned before any transfer.
func Distribute(ctx context.Context, cfg utils.TransferConfig, l log.Logger) (Report, error) {
	network, err := resolveNetwork(cfg)
	if err != nil {
		return Report{}, err
	}
	signer, err := utils.ResolveSigner(cfg.PrivateKey, network)
	if err != nil {
		return Report{}, err
	}
	if signer.Insecure {
		l.Warn("Using the built-in default private key, set "+utils.PrivateKeyEnv+" to use your own", "signer", signer.Address.Hex())
	}
	amount, err := ParseAmount(TransferAmount)
	if err != nil {
		return Report{}, err
	}

	cli, err := dial(ctx, cfg, network)
	if err != nil {
		return Report{}, err
	}
	defer cli.Close()

	var gasPrice *big.Int
	if cfg.GasPriceGwei > 0 {
		gasPrice, err = utils.ParseGasPriceToBigInt(cfg.GasPriceGwei, utils.GweiDecimals)
		if err != nil {
			return Report{}, err
		}
	}
	opts, err := signer.TransactOpts(cli.NetworkChainID(), gasPrice)
	if err != nil {
		return Report{}, err
	}

	runID := uuid.NewString()
	l = l.With("run", runID)

	var journal *utils.TxJournal
	if cfg.SaveTxHashes {
		journal, err = utils.OpenTxJournal(cfg.TxHashFile, runID, l)
		if err != nil {
			return Report{}, err
		}
		defer func() {
			if err := journal.Close(); err != nil {
				l.Warn("Failed to close tx hash journal", "err", err)
			}
		}()
	}

	runner, err := NewRunner(l, RunnerConfig{
		Opts:        opts,
		Tokens:      network.TokenAddresses(),
		Recipients:  network.Recipients(),
		Amount:      amount,
		NewToken:    func(addr ethcmn.Address) Token { return NewERC20(addr, cli) },
		Confirmer:   cli,
		Journal:     journal,
		StopOnError: cfg.StopOnError,
	})
	if err != nil {
		return Report{}, err
	}

	l.Info("Starting token distribution", "network", network.Name, "chainId", network.ID,
		"signer", signer.Address.Hex(), "recipients", len(network.Accounts), "tokens", len(runner.Symbols()))

	report, err := runner.Run(ctx)
	l.Info("Token distribution finished", "submitted", report.Submitted, "succeeded", report.Succeeded,
		"failed", report.Failed, "errored", report.Errored)
	if err != nil {
		return report, fmt.Errorf("distribution aborted: %w", err)
	}
	return report, nil
}

// ReportBalances logs every recipient's balance of every token
func ReportBalances(ctx context.Context, cfg utils.TransferConfig, l log.Logger) ([]Balance, error) {
	network, err := resolveNetwork(cfg)
	if err != nil {
		return nil, err
	}
	cli, err := dial(ctx, cfg, network)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	return Balances(ctx, l, network.TokenAddresses(), network.Recipients(),
		func(addr ethcmn.Address) BalanceReader { return NewERC20Caller(addr, cli) })
}
