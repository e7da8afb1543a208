package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/wconn/internal/chain"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List supported networks",
	RunE:  runNetworks,
}

var switchCmd = &cobra.Command{
	Use:   "switch <network>",
	Short: "Switch the wallet to a network",
	Long:  `Ask the wallet to switch to the named network (ethereum, bsc, sepolia). A network the wallet does not know is added from the built-in descriptor first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

func init() {
	rootCmd.AddCommand(networksCmd)
	rootCmd.AddCommand(switchCmd)
}

func runNetworks(cmd *cobra.Command, args []string) error {
	for _, key := range []string{"ethereum", "bsc", "sepolia"} {
		n, ok := chain.ByKey(key)
		if !ok {
			continue
		}
		suffix := ""
		if n.IsTestnet {
			suffix = " (testnet)"
		}
		fmt.Printf("%-10s %-20s chain id %s, %s%s\n", key, n.Name, n.ChainID, n.Currency.Symbol, suffix)
	}
	return nil
}

func runSwitch(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	key := args[0]
	if err := app.store.SwitchNetwork(cmd.Context(), key); err != nil {
		return err
	}

	n, _ := chain.ByKey(key)
	fmt.Printf("Switched to %s.\n", n.Name)
	return nil
}
