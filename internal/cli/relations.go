package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/dropzone"
	"github.com/Ngyama/idea-canvas/internal/model"
)

func newChildCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "child",
		Short: "Parent/child commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <parent-id> <child-id>",
		Short: "Nest a task under a parent (laid out below it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.AddChildRelation(args[0], args[1])
				if err != nil {
					return nil, err
				}
				return changedResult(s, args[1], changed), nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <task-id>",
		Short: "Detach a task from its parent; it keeps its position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.RemoveTaskFromParent(args[0])
				if err != nil {
					return nil, err
				}
				return changedResult(s, args[0], changed), nil
			})
		},
	})
	return cmd
}

func newDragCmd(app *App) *cobra.Command {
	var (
		from, to string
		via      []string
		selected []string
	)
	cmd := &cobra.Command{
		Use:   "drag <task-id>",
		Short: "Replay a pointer drag: grab at --from, pass through --via, release at --to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parsePoint(from)
			if err != nil {
				return writeErr(cmd, err)
			}
			end, err := parsePoint(to)
			if err != nil {
				return writeErr(cmd, err)
			}
			path := make([]model.Point, 0, len(via))
			for _, v := range via {
				p, err := parsePoint(v)
				if err != nil {
					return writeErr(cmd, err)
				}
				path = append(path, p)
			}
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				if err := s.BeginDrag(args[0], start, selected...); err != nil {
					return nil, err
				}
				previews := make([]dropzone.Action, 0, len(path)+1)
				for _, p := range append(path, end) {
					a, err := s.DragMove(p)
					if err != nil {
						s.CancelDrag()
						return nil, err
					}
					previews = append(previews, a)
				}
				res, err := s.EndDrag(end)
				if err != nil {
					return nil, err
				}
				return map[string]any{"result": res, "previews": previews}, nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Pointer position at grab (x,y)")
	cmd.Flags().StringVar(&to, "to", "", "Pointer position at release (x,y)")
	cmd.Flags().StringArrayVar(&via, "via", nil, "Intermediate pointer position (x,y); repeatable")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "Other task ids dragged along (multi-selection)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newClassifyCmd(app *App) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "classify <task-id>",
		Short: "Show what dropping a task with the pointer at --at would do (no changes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(at)
			if err != nil {
				return writeErr(cmd, err)
			}
			return readBoard(cmd, app, func(s *canvas.Session) (any, error) {
				return dropzone.Resolve(s.Snapshot(), strings.TrimSpace(args[0]), p), nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Pointer position (x,y)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}
