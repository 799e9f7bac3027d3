package drip

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/okx/drip/utils"
)

// ReservedSymbol names the exchange contract entry, which is never a transfer target
const ReservedSymbol = "Exchange"

var (
	// ErrTransactionFailed is returned with StopOnError when a receipt reports failure
	ErrTransactionFailed = errors.New("transaction failed")
)

// Token submits ERC20 transfers
type Token interface {
	Transfer(opts *bind.TransactOpts, to ethcmn.Address, amount *big.Int) (*types.Transaction, error)
}

// TokenFactory binds the token contract at address
type TokenFactory func(address ethcmn.Address) Token

// Confirmer blocks until a submitted transaction is mined
type Confirmer interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// revertReasoner is optionally implemented by a Confirmer to explain failed receipts
type revertReasoner interface {
	RevertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) (string, error)
}

// RunnerConfig holds everything a Runner needs
type RunnerConfig struct {
	Opts        *bind.TransactOpts
	Tokens      map[string]ethcmn.Address
	Recipients  []ethcmn.Address
	Amount      *big.Int
	NewToken    TokenFactory
	Confirmer   Confirmer
	Journal     *utils.TxJournal // optional
	StopOnError bool
}

// Report summarizes one run
type Report struct {
	Submitted int
	Succeeded int
	Failed    int // mined with failed status
	Errored   int // submission or confirmation error
}

// Runner transfers Amount of every non-reserved token to every recipient,
// one transaction at a time
type Runner struct {
	log         log.Logger
	opts        *bind.TransactOpts
	symbols     []string
	tokens      map[string]ethcmn.Address
	recipients  []ethcmn.Address
	amount      *big.Int
	newToken    TokenFactory
	confirmer   Confirmer
	journal     *utils.TxJournal
	stopOnError bool
}

func NewRunner(l log.Logger, cfg RunnerConfig) (*Runner, error) {
	if cfg.Opts == nil {
		return nil, errors.New("transact opts must be set")
	}
	if cfg.NewToken == nil || cfg.Confirmer == nil {
		return nil, errors.New("token factory and confirmer must be set")
	}
	if cfg.Amount == nil || cfg.Amount.Sign() <= 0 {
		return nil, errors.New("amount must be greater than 0")
	}

	symbols := make([]string, 0, len(cfg.Tokens))
	for symbol := range cfg.Tokens {
		if symbol == ReservedSymbol {
			continue
		}
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return &Runner{
		log:         l,
		opts:        cfg.Opts,
		symbols:     symbols,
		tokens:      cfg.Tokens,
		recipients:  cfg.Recipients,
		amount:      new(big.Int).Set(cfg.Amount),
		newToken:    cfg.NewToken,
		confirmer:   cfg.Confirmer,
		journal:     cfg.Journal,
		stopOnError: cfg.StopOnError,
	}, nil
}

// Symbols returns the tokens that will be transferred, in submission order
func (r *Runner) Symbols() []string {
	return append([]string(nil), r.symbols...)
}

// Run performs all transfers. Per-pair failures are logged and counted; the
// returned error is non-nil only when ctx is done or StopOnError is set.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report
	for _, recipient := range r.recipients {
		for _, symbol := range r.symbols {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			err := r.transfer(ctx, &report, symbol, recipient)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			if r.stopOnError {
				return report, err
			}
		}
	}
	return report, nil
}

func (r *Runner) transfer(ctx context.Context, report *Report, symbol string, recipient ethcmn.Address) error {
	tokenAddr := r.tokens[symbol]
	opts := *r.opts
	opts.Context = ctx

	tx, err := r.newToken(tokenAddr).Transfer(&opts, recipient, r.amount)
	if err != nil {
		report.Errored++
		r.log.Error("Failed to submit transfer", "symbol", symbol, "token", tokenAddr.Hex(), "to", recipient.Hex(), "err", err)
		return fmt.Errorf("transfer %s to %s: %w", symbol, recipient.Hex(), err)
	}
	report.Submitted++
	r.journal.Record(symbol, recipient, tx.Hash())
	r.log.Debug("Transfer submitted", "symbol", symbol, "tx", tx.Hash().Hex(), "nonce", tx.Nonce())

	receipt, err := r.confirmer.WaitMined(ctx, tx)
	if err != nil {
		report.Errored++
		r.log.Error("Failed to confirm transfer", "symbol", symbol, "tx", tx.Hash().Hex(), "to", recipient.Hex(), "err", err)
		return fmt.Errorf("confirm %s: %w", tx.Hash().Hex(), err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		report.Failed++
		ctxs := []interface{}{"tx", tx.Hash().Hex(), "symbol", symbol, "to", recipient.Hex()}
		if rr, ok := r.confirmer.(revertReasoner); ok {
			if reason, err := rr.RevertReason(ctx, tx, receipt); err == nil {
				ctxs = append(ctxs, "reason", reason)
			}
		}
		r.log.Error(fmt.Sprintf("Transaction %s failed", tx.Hash().Hex()), ctxs...)
		return fmt.Errorf("%w: %s", ErrTransactionFailed, tx.Hash().Hex())
	}

	report.Succeeded++
	r.log.Info(fmt.Sprintf("%s sent to %s", r.amount, recipient.Hex()),
		"symbol", symbol, "tokens", FormatAmount(r.amount, TokenDecimals), "tx", tx.Hash().Hex(), "block", receipt.BlockNumber)
	return nil
}
