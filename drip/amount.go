package drip

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	// TransferAmount is sent to every recipient for every token: 100 * 1e18
	TransferAmount = "100000000000000000000"

	// TokenDecimals is assumed for display purposes only
	TokenDecimals = 18
)

// ParseAmount parses a base-unit decimal amount that must fit in a uint256
func ParseAmount(s string) (*big.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid token amount %q: %w", s, err)
	}
	if v.IsZero() {
		return nil, errors.New("token amount must be greater than 0")
	}
	return v.ToBig(), nil
}

// FormatAmount renders base units as whole tokens, e.g. 1e20 -> "100"
func FormatAmount(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}
