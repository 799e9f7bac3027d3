package utils

import (
	"testing"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r, err := DefaultRegistry()
	require.NoError(t, err)

	rinkeby, err := r.Lookup(4)
	require.NoError(t, err)
	require.Equal(t, "rinkeby", rinkeby.Name)
	require.True(t, rinkeby.Testnet)
	require.Contains(t, rinkeby.Contracts, "Exchange")
	require.NotEmpty(t, rinkeby.Accounts)

	byName, err := r.Resolve("Rinkeby")
	require.NoError(t, err)
	require.Equal(t, rinkeby.ID, byName.ID)

	byID, err := r.Resolve("1337")
	require.NoError(t, err)
	require.Equal(t, "local", byID.Name)

	_, err = r.Resolve("mainnet")
	require.ErrorIs(t, err, ErrUnknownNetwork)
	_, err = r.Lookup(1)
	require.ErrorIs(t, err, ErrUnknownNetwork)

	networks := r.Networks()
	require.Len(t, networks, 2)
	require.Equal(t, uint64(4), networks[0].ID)
}

func TestParseNetworksValidation(t *testing.T) {
	_, err := ParseNetworks([]byte(`
networks:
  - id: 5
    name: goerli
    contracts:
      TOK: "0xnotanaddress"
`))
	require.Error(t, err)

	_, err = ParseNetworks([]byte(`
networks:
  - id: 5
    name: goerli
    contracts:
      TOK: "0x000000000000000000000000000000000000000a"
  - id: 5
    name: other
    contracts:
      TOK: "0x000000000000000000000000000000000000000a"
`))
	require.ErrorContains(t, err, "duplicate network id")

	_, err = ParseNetworks([]byte(`
networks:
  - id: 5
    name: goerli
    contracts: {}
`))
	require.Error(t, err)

	_, err = ParseNetworks([]byte(`
networks:
  - id: 5
    name: goerli
    unknown: field
    contracts:
      TOK: "0x000000000000000000000000000000000000000a"
`))
	require.Error(t, err)
}

func TestNetworkAddresses(t *testing.T) {
	n := Network{
		Contracts: map[string]string{"TOK": "0x000000000000000000000000000000000000000a", "Exchange": "0x000000000000000000000000000000000000000b"},
		Accounts:  []string{"0x000000000000000000000000000000000000000c", "0x000000000000000000000000000000000000000d"},
	}
	tokens := n.TokenAddresses()
	require.Equal(t, ethcmn.HexToAddress("0x0a"), tokens["TOK"])
	require.Equal(t, ethcmn.HexToAddress("0x0b"), tokens["Exchange"])
	require.Equal(t, []ethcmn.Address{ethcmn.HexToAddress("0x0c"), ethcmn.HexToAddress("0x0d")}, n.Recipients())
}
