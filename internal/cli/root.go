package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgDir string

	rootCmd = &cobra.Command{
		Use:   "wconn",
		Short: "Terminal wallet connection manager",
		Long: `wconn connects a terminal session to a wallet bridge, tracks
account and network state, and lets you switch blockchain networks.

Run without arguments in an interactive terminal to mount the
connection view; use the subcommands for one-shot operations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return runView(cmd, args)
			}
			return runStatus(cmd, args)
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is $HOME/.wconn)")
}
