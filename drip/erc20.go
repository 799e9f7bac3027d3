package drip

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ERC20ABI is the standard fungible token interface
const ERC20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"owner","type":"address"},{"indexed":true,"name":"spender","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Approval","type":"event"}
]`

var erc20ABI = mustParseABI(ERC20ABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Errorf("failed to initialize ERC20 ABI: %s", err))
	}
	return parsed
}

// ERC20 is a token contract bound to a backend
type ERC20 struct {
	address  ethcmn.Address
	contract *bind.BoundContract
}

// NewERC20 binds the token at address for reads and writes
func NewERC20(address ethcmn.Address, backend bind.ContractBackend) *ERC20 {
	return &ERC20{
		address:  address,
		contract: bind.NewBoundContract(address, erc20ABI, backend, backend, backend),
	}
}

// NewERC20Caller binds the token at address for reads only
func NewERC20Caller(address ethcmn.Address, caller bind.ContractCaller) *ERC20 {
	return &ERC20{
		address:  address,
		contract: bind.NewBoundContract(address, erc20ABI, caller, nil, nil),
	}
}

func (t *ERC20) Address() ethcmn.Address {
	return t.address
}

// Transfer sends amount of the token from opts.From to to
func (t *ERC20) Transfer(opts *bind.TransactOpts, to ethcmn.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "transfer", to, amount)
}

// Approve allows spender to move up to amount on behalf of opts.From
func (t *ERC20) Approve(opts *bind.TransactOpts, spender ethcmn.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "approve", spender, amount)
}

func (t *ERC20) BalanceOf(opts *bind.CallOpts, owner ethcmn.Address) (*big.Int, error) {
	return t.callUint256(opts, "balanceOf", owner)
}

func (t *ERC20) Allowance(opts *bind.CallOpts, owner, spender ethcmn.Address) (*big.Int, error) {
	return t.callUint256(opts, "allowance", owner, spender)
}

func (t *ERC20) callUint256(opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, method, params...); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: unexpected output count %d", method, len(out))
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
