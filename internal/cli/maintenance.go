package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/config"
)

var errConfirmRequired = errors.New("refusing to clear without --yes")

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the stored board's relationship invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return readBoard(cmd, app, func(s *canvas.Session) (any, error) {
				if err := s.Snapshot().Validate(); err != nil {
					return nil, err
				}
				return map[string]any{"ok": true}, nil
			})
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every task and category; history starts over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errConfirmRequired)
			}
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				s.ClearCanvas()
				return map[string]any{"cleared": true}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing the board")
	return cmd
}

func newBoardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List and switch named boards",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List boards under the config dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := config.ListBoards()
			if err != nil {
				return writeErr(cmd, err)
			}
			current := app.cfg.CurrentBoard
			if current == "" {
				current = config.DefaultBoard
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"boards": names, "current": current}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use <name>",
		Short: "Make a board the default for later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := config.NormalizeBoardName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg := *app.cfg
			cfg.CurrentBoard = name
			if err := config.Save(&cfg); err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = &cfg
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"current": name}})
		},
	})
	return cmd
}
