package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yolodolo42/wconn/internal/ui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Mount the connection view",
	Long:  `Open the interactive connection view: live account, balance, and network display with connect, disconnect, and switch-network controls.`,
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the connection view needs an interactive terminal")
	}

	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	model := ui.NewModel(app.store, app.ctrl)
	_, err = tea.NewProgram(model).Run()
	return err
}
