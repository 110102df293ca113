package cli

import (
	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/canvas"
)

type historyStatus struct {
	Entries int  `json:"entries"`
	Cursor  int  `json:"cursor"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

func statusOf(s *canvas.Session) historyStatus {
	entries, cursor := s.History()
	return historyStatus{
		Entries: len(entries),
		Cursor:  cursor,
		CanUndo: s.CanUndo(),
		CanRedo: s.CanRedo(),
	}
}

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Step back one committed change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				ok := s.Undo()
				return map[string]any{"changed": ok, "history": statusOf(s)}, nil
			})
		},
	}
}

func newRedoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the last undone change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				ok := s.Redo()
				return map[string]any{"changed": ok, "history": statusOf(s)}, nil
			})
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the undo history position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return readBoard(cmd, app, func(s *canvas.Session) (any, error) {
				return statusOf(s), nil
			})
		},
	}
}
