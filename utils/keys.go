package utils

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// PrivateKeyEnv is the environment variable holding the funded signer key
	PrivateKeyEnv = "AMP_RINKEBY_PRIVATE_KEY"

	// DefaultPrivateKey is a publicly known testnet key. It is only accepted on
	// networks marked as testnets and the resulting signer is flagged insecure.
	DefaultPrivateKey = "0xf4f803220d23b4ae3b4fecbd0ed9d3c11137571fd1c619154619ef832c8f196f"
)

var (
	// ErrInsecureKey is returned when the default key would be used outside a testnet
	ErrInsecureKey = errors.New("refusing to use the built-in default private key")
)

// Signer is the funded account every transfer is sent from
type Signer struct {
	Key      *ecdsa.PrivateKey
	Address  ethcmn.Address
	Insecure bool
}

// ParsePrivateKey decodes a hex private key with or without the 0x prefix
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// ResolveSigner builds the signer from the configured key. An empty key falls
// back to DefaultPrivateKey, which is only allowed on testnets.
func ResolveSigner(hexKey string, network Network) (*Signer, error) {
	insecure := false
	if strings.TrimSpace(hexKey) == "" {
		if !network.Testnet {
			return nil, fmt.Errorf("%w on %s: set %s", ErrInsecureKey, network.Name, PrivateKeyEnv)
		}
		hexKey = DefaultPrivateKey
		insecure = true
	}

	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}
	return &Signer{
		Key:      key,
		Address:  GetEthAddressFromPK(key),
		Insecure: insecure,
	}, nil
}

// TransactOpts returns transaction options signing for the given chain.
// Nonce and gas limit are left unset so they are fetched per transaction.
func (s *Signer) TransactOpts(chainID *big.Int, gasPrice *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.Key, chainID)
	if err != nil {
		return nil, err
	}
	if gasPrice != nil && gasPrice.Sign() > 0 {
		opts.GasPrice = gasPrice
	}
	return opts, nil
}

// GetEthAddressFromPK converts an ECDSA private key to an Ethereum address
func GetEthAddressFromPK(privateKey *ecdsa.PrivateKey) ethcmn.Address {
	pubkeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		panic(fmt.Errorf("convert into pubkey failed"))
	}
	return crypto.PubkeyToAddress(*pubkeyECDSA)
}
