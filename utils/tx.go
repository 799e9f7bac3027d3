package utils

import (
	"fmt"
	"math"
	"math/big"
	"os"
	"sync"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/shopspring/decimal"
)

// ParseGasPriceToBigInt converts a price given in units of 10^prec wei to wei.
// It fails when the price is negative or not a whole number of wei.
func ParseGasPriceToBigInt(gasPrice float64, prec int32) (*big.Int, error) {
	if math.IsNaN(gasPrice) || math.IsInf(gasPrice, 0) {
		return nil, fmt.Errorf("invalid gas price %v", gasPrice)
	}
	wei := decimal.NewFromFloat(gasPrice).Shift(prec)
	if wei.IsNegative() {
		return nil, fmt.Errorf("gas price %v must not be negative", gasPrice)
	}
	if !wei.IsInteger() {
		return nil, fmt.Errorf("gas price %v is not a whole number of wei", gasPrice)
	}
	return wei.BigInt(), nil
}

// ========================================
// TxJournal - Async Channel-based
// ========================================

// TxJournal appends submitted transaction hashes to a file from a background
// goroutine. A nil *TxJournal is valid and records nothing.
type TxJournal struct {
	runID string
	file  *os.File
	ch    chan string
	wg    sync.WaitGroup
	log   log.Logger
}

// OpenTxJournal opens (or creates) path for appending and starts the writer
func OpenTxJournal(path, runID string, l log.Logger) (*TxJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open tx hash file: %w", err)
	}

	j := &TxJournal{
		runID: runID,
		file:  f,
		ch:    make(chan string, 1024),
		log:   l,
	}
	l.Info("TxHash writer enabled", "file", path, "run", runID)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		for line := range j.ch {
			if _, err := j.file.WriteString(line + "\n"); err != nil {
				j.log.Warn("Failed to write tx hash", "err", err)
			}
		}
	}()
	return j, nil
}

// Record queues one submitted transaction. It blocks when the buffer is full
// so that no hash is dropped.
func (j *TxJournal) Record(symbol string, to ethcmn.Address, hash ethcmn.Hash) {
	if j == nil {
		return
	}
	j.ch <- fmt.Sprintf("%s %s %s %s", j.runID, symbol, to.Hex(), hash.Hex())
}

// Close drains pending hashes and closes the file
func (j *TxJournal) Close() error {
	if j == nil {
		return nil
	}
	close(j.ch)
	j.wg.Wait()
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("failed to close tx hash file: %w", err)
	}
	return nil
}
