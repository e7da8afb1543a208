package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/wconn/internal/chain"
	"github.com/yolodolo42/wconn/internal/session"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the wallet",
	Long:  `Request account access from the wallet provider. This is the only command that triggers the wallet's permission prompt.`,
	RunE:  runConnect,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the session",
	Long:  `Clear the local session and suppress silent auto-reconnect until the next explicit connect.`,
	RunE:  runDisconnect,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet session",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(statusCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.store.Connect(cmd.Context()); err != nil {
		if errors.Is(err, session.ErrNoProvider) {
			fmt.Println("No wallet provider detected. Configure bridge.endpoint in your config to connect one.")
			return nil
		}
		return err
	}

	printState(app.store.Snapshot())
	return nil
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	app.store.Disconnect()
	fmt.Println("Disconnected.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	// The mount-time silent check: restores an already-authorized session
	// without prompting.
	app.ctrl.Start(cmd.Context())
	defer app.ctrl.Stop()

	printState(app.store.Snapshot())
	return nil
}

func printState(state session.State) {
	if !state.IsConnected {
		fmt.Println("Not connected.")
		if state.UserDisconnected {
			fmt.Println("Auto-reconnect is off until the next explicit connect.")
		}
		return
	}

	account := session.FormatAddress(state.Address)
	if state.ENSName != "" {
		account = fmt.Sprintf("%s (%s)", state.ENSName, account)
	}

	symbol := "ETH"
	networkName := "unknown (" + state.ChainID + ")"
	if n := chain.ByChainID(state.ChainID); n != nil {
		symbol = n.Currency.Symbol
		networkName = n.Name
	}

	fmt.Printf("Account: %s\n", account)
	fmt.Printf("Balance: %s %s\n", session.FormatBalance(state.Balance), symbol)
	fmt.Printf("Network: %s\n", networkName)
	if state.ENSAvatar != "" {
		fmt.Printf("Avatar:  %s\n", state.ENSAvatar)
	}
}
