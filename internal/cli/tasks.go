package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/model"
	"github.com/Ngyama/idea-canvas/internal/store"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTaskCreateCmd(app))
	cmd.AddCommand(newTaskListCmd(app))
	cmd.AddCommand(newTaskShowCmd(app))
	cmd.AddCommand(newTaskSetContentCmd(app))
	cmd.AddCommand(newTaskMoveCmd(app))
	cmd.AddCommand(newTaskDeleteCmd(app))
	return cmd
}

func newTaskCreateCmd(app *App) *cobra.Command {
	var (
		x, y    float64
		content string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a free task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				id := s.CreateTask(model.Point{X: x, Y: y}, content)
				t, _ := s.Task(id)
				return t, nil
			})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "Left edge")
	cmd.Flags().Float64Var(&y, "y", 0, "Top edge")
	cmd.Flags().StringVar(&content, "content", "", "Task text (default: placeholder)")
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks in creation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return readBoard(cmd, app, func(s *canvas.Session) (any, error) {
				db := s.Snapshot()
				if db.Tasks == nil {
					return []model.Task{}, nil
				}
				return db.Tasks, nil
			})
		},
	}
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return readBoard(cmd, app, func(s *canvas.Session) (any, error) {
				t, ok := s.Task(args[0])
				if !ok {
					return nil, store.NotFoundError{Kind: "task", ID: args[0]}
				}
				return t, nil
			})
		},
	}
}

func newTaskSetContentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-content <task-id> <text>",
		Short: "Replace a task's text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.UpdateTaskContent(args[0], args[1])
				if err != nil {
					return nil, err
				}
				return changedResult(s, args[0], changed), nil
			})
		},
	}
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task (children follow; a nested task snaps back to its slot)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.MoveTask(args[0], model.Point{X: x, Y: y})
				if err != nil {
					return nil, err
				}
				return changedResult(s, args[0], changed), nil
			})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "Left edge")
	cmd.Flags().Float64Var(&y, "y", 0, "Top edge")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and all its descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				if err := s.DeleteTask(args[0]); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": args[0]}, nil
			})
		},
	}
}

// changedResult reports the entity after a command plus whether the board
// changed.
func changedResult(s *canvas.Session, id string, changed bool) map[string]any {
	out := map[string]any{"changed": changed}
	if t, ok := s.Task(id); ok {
		out["task"] = t
	} else if c, ok := s.Category(id); ok {
		out["category"] = c
	}
	return out
}

// parsePoint reads "x,y".
func parsePoint(s string) (model.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return model.Point{}, fmt.Errorf("invalid point %q (want x,y)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return model.Point{X: x, Y: y}, nil
}
