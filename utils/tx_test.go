package utils

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ethcmn "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

func TestParseGasPriceToBigInt(t *testing.T) {
	testCases := []struct {
		gwei    float64
		wei     string
		invalid bool
	}{
		{gwei: 0, wei: "0"},
		{gwei: 1.5, wei: "1500000000"},
		{gwei: 100, wei: "100000000000"},
		{gwei: 1e11, wei: "100000000000000000000"},
		{gwei: 2.0000000001, invalid: true},
		{gwei: 1.5e-9, invalid: true},
		{gwei: -1, invalid: true},
		{gwei: math.NaN(), invalid: true},
		{gwei: math.Inf(1), invalid: true},
	}

	for _, tc := range testCases {
		wei, err := ParseGasPriceToBigInt(tc.gwei, GweiDecimals)
		if tc.invalid {
			require.Error(t, err, "gwei=%v", tc.gwei)
			require.Nil(t, wei)
			continue
		}
		require.NoError(t, err, "gwei=%v", tc.gwei)
		require.Equal(t, tc.wei, wei.String())
	}
}

func TestTxJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txhashes.log")
	l := log.NewLogger(log.DiscardHandler())
	to := ethcmn.HexToAddress("0x0c")

	j, err := OpenTxJournal(path, "run-1", l)
	require.NoError(t, err)
	j.Record("TOK", to, ethcmn.HexToHash("0x01"))
	j.Record("DAI", to, ethcmn.HexToHash("0x02"))
	require.NoError(t, j.Close())

	j, err = OpenTxJournal(path, "run-2", l)
	require.NoError(t, err)
	j.Record("TOK", to, ethcmn.HexToHash("0x03"))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "run-1 TOK "+to.Hex()+" "+ethcmn.HexToHash("0x01").Hex(), lines[0])
	require.True(t, strings.HasPrefix(lines[2], "run-2 TOK "))
}

func TestNilTxJournal(t *testing.T) {
	var j *TxJournal
	j.Record("TOK", ethcmn.Address{}, ethcmn.Hash{})
	require.NoError(t, j.Close())
}
