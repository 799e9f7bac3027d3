package utils

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

// WaitTxToBeMined blocks until tx has a receipt. A zero timeout waits until
// ctx is done.
func WaitTxToBeMined(parentCtx context.Context, client bind.DeployBackend, tx *types.Transaction, timeout time.Duration) (*types.Receipt, error) {
	ctx := parentCtx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return nil, fmt.Errorf("error waiting tx %s to be mined: %w", tx.Hash().Hex(), err)
	}
	return receipt, nil
}

// WaitMined waits for tx using the client's confirmation timeout
func (e *EthClient) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return WaitTxToBeMined(ctx, e, tx, e.confirmTimeout)
}

// RevertReason replays a failed tx on top of its parent block and decodes the
// revert message. Earlier transactions of the same block are not replayed, so
// the reason can differ when they touched the same state.
func (e *EthClient) RevertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) (string, error) {
	return RevertReason(ctx, e, types.LatestSignerForChainID(e.chainID), tx, replayBlock(receipt))
}

// replayBlock is the block whose post-state precedes the receipt's transaction.
// nil selects the latest block.
func replayBlock(receipt *types.Receipt) *big.Int {
	if receipt == nil || receipt.BlockNumber == nil || receipt.BlockNumber.Sign() <= 0 {
		return nil
	}
	return new(big.Int).Sub(receipt.BlockNumber, big.NewInt(1))
}

// RevertReason returns the revert reason for a tx that has a receipt with failed status
func RevertReason(ctx context.Context, c ethereum.ContractCaller, signer types.Signer, tx *types.Transaction, blockNumber *big.Int) (string, error) {
	if tx == nil {
		return "", nil
	}

	sender, err := types.Sender(signer, tx)
	if err != nil {
		return "", err
	}

	msg := ethereum.CallMsg{
		From:  sender,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	out, err := c.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return "", err
	}

	reason, err := abi.UnpackRevert(out)
	if err != nil {
		return "", errors.New("execution reverted")
	}
	return reason, nil
}
