package drip

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// BalanceReader reads a token balance
type BalanceReader interface {
	BalanceOf(opts *bind.CallOpts, owner ethcmn.Address) (*big.Int, error)
}

// Balance is the holding of one recipient in one token
type Balance struct {
	Symbol string
	Token  ethcmn.Address
	Holder ethcmn.Address
	Amount *big.Int
}

// Balances queries every recipient's balance of every non-reserved token,
// in the same order the Runner submits transfers.
func Balances(ctx context.Context, l log.Logger, tokens map[string]ethcmn.Address, recipients []ethcmn.Address, newReader func(ethcmn.Address) BalanceReader) ([]Balance, error) {
	symbols := make([]string, 0, len(tokens))
	for symbol := range tokens {
		if symbol != ReservedSymbol {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)

	readers := make(map[string]BalanceReader, len(symbols))
	for _, symbol := range symbols {
		readers[symbol] = newReader(tokens[symbol])
	}

	out := make([]Balance, 0, len(recipients)*len(symbols))
	for _, holder := range recipients {
		for _, symbol := range symbols {
			amount, err := readers[symbol].BalanceOf(&bind.CallOpts{Context: ctx}, holder)
			if err != nil {
				return out, fmt.Errorf("balanceOf %s for %s: %w", symbol, holder.Hex(), err)
			}
			l.Info("Balance", "symbol", symbol, "holder", holder.Hex(), "amount", amount.String(), "tokens", FormatAmount(amount, TokenDecimals))
			out = append(out, Balance{
				Symbol: symbol,
				Token:  tokens[symbol],
				Holder: holder,
				Amount: amount,
			})
		}
	}
	return out, nil
}
