package drip

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// sendRecorder only implements SendTransaction, which is all Transact needs
// when nonce, gas price and gas limit are preset
type sendRecorder struct {
	bind.ContractTransactor
	sent []*types.Transaction
}

func (s *sendRecorder) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	s.sent = append(s.sent, tx)
	return nil
}

type balanceCaller struct {
	balances map[ethcmn.Address]*big.Int
	calls    []ethereum.CallMsg
}

func (c *balanceCaller) CodeAt(ctx context.Context, contract ethcmn.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (c *balanceCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.calls = append(c.calls, call)
	method, err := erc20ABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	balance := c.balances[args[0].(ethcmn.Address)]
	if balance == nil {
		balance = new(big.Int)
	}
	return method.Outputs.Pack(balance)
}

func TestERC20Transfer(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(1337))
	require.NoError(t, err)
	opts.Nonce = big.NewInt(7)
	opts.GasPrice = big.NewInt(1000000000)
	opts.GasLimit = 60000

	backend := &sendRecorder{}
	token := &ERC20{address: tokA, contract: bind.NewBoundContract(tokA, erc20ABI, nil, backend, nil)}

	amount, err := ParseAmount(TransferAmount)
	require.NoError(t, err)
	tx, err := token.Transfer(opts, accC, amount)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	require.Equal(t, tx.Hash(), backend.sent[0].Hash())

	require.Equal(t, tokA, *tx.To())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, 0, tx.Value().Sign())

	method, err := erc20ABI.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	require.Equal(t, "transfer", method.Name)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	require.Equal(t, accC, args[0].(ethcmn.Address))
	require.Equal(t, 0, amount.Cmp(args[1].(*big.Int)))

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), tx)
	require.NoError(t, err)
	require.Equal(t, opts.From, sender)
}

func TestERC20BalanceOf(t *testing.T) {
	caller := &balanceCaller{balances: map[ethcmn.Address]*big.Int{accC: big.NewInt(42)}}
	token := NewERC20Caller(tokA, caller)

	balance, err := token.BalanceOf(&bind.CallOpts{Context: context.Background()}, accC)
	require.NoError(t, err)
	require.Equal(t, int64(42), balance.Int64())

	balance, err = token.BalanceOf(&bind.CallOpts{}, accD)
	require.NoError(t, err)
	require.Equal(t, 0, balance.Sign())

	require.Len(t, caller.calls, 2)
	require.Equal(t, tokA, *caller.calls[0].To)
}

func TestERC20Selectors(t *testing.T) {
	require.Equal(t, "a9059cbb", ethcmn.Bytes2Hex(erc20ABI.Methods["transfer"].ID))
	require.Equal(t, "70a08231", ethcmn.Bytes2Hex(erc20ABI.Methods["balanceOf"].ID))
	require.Equal(t, "095ea7b3", ethcmn.Bytes2Hex(erc20ABI.Methods["approve"].ID))
	require.Equal(t, "dd62ed3e", ethcmn.Bytes2Hex(erc20ABI.Methods["allowance"].ID))
}

func TestERC20Approve(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(4))
	require.NoError(t, err)
	opts.Nonce = big.NewInt(0)
	opts.GasPrice = big.NewInt(1000000000)
	opts.GasLimit = 50000

	backend := &sendRecorder{}
	token := &ERC20{address: tokA, contract: bind.NewBoundContract(tokA, erc20ABI, nil, backend, nil)}

	tx, err := token.Approve(opts, accD, big.NewInt(500))
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	require.Equal(t, tokA, *tx.To())

	method, err := erc20ABI.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	require.Equal(t, "approve", method.Name)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	require.Equal(t, accD, args[0].(ethcmn.Address))
	require.Equal(t, int64(500), args[1].(*big.Int).Int64())
}

func TestERC20Allowance(t *testing.T) {
	caller := &balanceCaller{balances: map[ethcmn.Address]*big.Int{accC: big.NewInt(77)}}
	token := NewERC20Caller(tokA, caller)

	allowance, err := token.Allowance(&bind.CallOpts{Context: context.Background()}, accC, accD)
	require.NoError(t, err)
	require.Equal(t, int64(77), allowance.Int64())

	require.Len(t, caller.calls, 1)
	method, err := erc20ABI.MethodById(caller.calls[0].Data[:4])
	require.NoError(t, err)
	require.Equal(t, "allowance", method.Name)
	args, err := method.Inputs.Unpack(caller.calls[0].Data[4:])
	require.NoError(t, err)
	require.Equal(t, accC, args[0].(ethcmn.Address))
	require.Equal(t, accD, args[1].(ethcmn.Address))
}
