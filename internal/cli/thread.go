package cli

import (
	"feedview/internal/tui"

	"github.com/spf13/cobra"
)

func newThreadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <post-id>",
		Short: "Open a post's comment thread in the TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, app, true)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			return tui.RunThread(s.tuiDeps(), args[0])
		},
	}
}
