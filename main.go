package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/okx/drip/drip"
	"github.com/okx/drip/utils"
)

const (
	FlagConfigFile     = "config-file"
	FlagNetwork        = "network"
	FlagRpc            = "rpc"
	FlagVerbosity      = "verbosity"
	FlagPrivateKey     = "private-key"
	FlagGasPrice       = "gas-price"
	FlagSaveTxHashes   = "save-tx-hashes"
	FlagTxHashFile     = "tx-hash-file"
	FlagConfirmTimeout = "confirm-timeout"
	FlagStopOnError    = "stop-on-error"
)

var (
	configPath string
	verbosity  int
)

func main() {
	v, err := utils.NewViper()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "drip",
		Short: "Distribute test tokens to a fixed list of testnet accounts",
		Long: `A command-line tool that sends a fixed amount of every known test token
to every known test account of a network, one confirmed transaction at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbosity)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, FlagConfigFile, "f", "", "Path to an optional JSON or YAML configuration file")
	rootCmd.PersistentFlags().String(FlagNetwork, utils.DefaultNetwork, "Network name or chain id selecting the token and account tables")
	rootCmd.PersistentFlags().String(FlagRpc, "", "RPC endpoint, defaults to the network's public endpoint")
	rootCmd.PersistentFlags().IntVar(&verbosity, FlagVerbosity, 3, "Log level: 0=crit 1=error 2=warn 3=info 4=debug 5=trace")
	bindFlag(v, rootCmd, utils.KeyNetwork, FlagNetwork)
	bindFlag(v, rootCmd, utils.KeyRpc, FlagRpc)

	rootCmd.AddCommand(
		runCmd(v),
		balancesCmd(v),
		networksCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setupLogging(verbosity int) {
	handler := log.NewTerminalHandlerWithLevel(os.Stdout, log.FromLegacyLevel(verbosity), false)
	log.SetDefault(log.NewLogger(handler))
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

func runCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transfer the fixed amount of every token to every account",
		Long: `Transfer 100 tokens (100 * 1e18 base units) of every token of the selected
network, except the Exchange contract, to every account of that network.

The signer key is read from AMP_RINKEBY_PRIVATE_KEY (also loaded from .env).
Without it a publicly known default key is used, which is only allowed on
testnets.

Example:
  drip run --network rinkeby
  drip run -f ./config.json --save-tx-hashes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.LoadConfig(v, configPath)
			if err != nil {
				return err
			}
			if _, err := drip.Distribute(cmd.Context(), cfg, log.Root()); err != nil {
				return fmt.Errorf("token distribution failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String(FlagPrivateKey, "", "Signer private key, overrides "+utils.PrivateKeyEnv)
	cmd.Flags().Float64(FlagGasPrice, 0, "Gas price in Gwei, 0 lets the node suggest one")
	cmd.Flags().Bool(FlagSaveTxHashes, false, "Append submitted tx hashes to the tx hash file")
	cmd.Flags().String(FlagTxHashFile, utils.DefaultTxHashFile, "Tx hash file used with --"+FlagSaveTxHashes)
	cmd.Flags().Duration(FlagConfirmTimeout, time.Duration(0), "Maximum wait per confirmation, 0 waits indefinitely")
	cmd.Flags().Bool(FlagStopOnError, false, "Abort the batch on the first failed transfer")
	bindFlag(v, cmd, utils.KeyPrivateKey, FlagPrivateKey)
	bindFlag(v, cmd, utils.KeyGasPriceGwei, FlagGasPrice)
	bindFlag(v, cmd, utils.KeySaveTxHashes, FlagSaveTxHashes)
	bindFlag(v, cmd, utils.KeyTxHashFile, FlagTxHashFile)
	bindFlag(v, cmd, utils.KeyConfirmTimeout, FlagConfirmTimeout)
	bindFlag(v, cmd, utils.KeyStopOnError, FlagStopOnError)

	return cmd
}

func balancesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show every account's balance of every token",
		Long: `Query balanceOf for every account and every token of the selected network.

Example:
  drip balances --network rinkeby`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.LoadConfig(v, configPath)
			if err != nil {
				return err
			}
			if _, err := drip.ReportBalances(cmd.Context(), cfg, log.Root()); err != nil {
				return fmt.Errorf("balance query failed: %w", err)
			}
			return nil
		},
	}
}

func networksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the built-in network tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := utils.DefaultRegistry()
			if err != nil {
				return err
			}
			for _, n := range registry.Networks() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\ttestnet=%t\ttokens=%d\taccounts=%d\t%s\n",
					n.ID, n.Name, n.Testnet, len(n.Contracts), len(n.Accounts), n.Rpc)
			}
			return nil
		},
	}
}
