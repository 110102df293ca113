package cli

import (
	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/model"
)

func newCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Category commands",
	}
	cmd.AddCommand(newCategoryCreateCmd(app))
	cmd.AddCommand(newCategoryListCmd(app))
	cmd.AddCommand(newCategoryRenameCmd(app))
	cmd.AddCommand(newCategoryMoveCmd(app))
	cmd.AddCommand(newCategoryDeleteCmd(app))
	cmd.AddCommand(newCategoryAddCmd(app))
	cmd.AddCommand(newCategoryRemoveCmd(app))
	return cmd
}

func newCategoryCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <task-id> <task-id>...",
		Short: "Group tasks into a new category sized to fit them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				id, err := s.CreateCategory(args)
				if err != nil {
					return nil, err
				}
				c, _ := s.Category(id)
				return c, nil
			})
		},
	}
}

func newCategoryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in creation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return readBoard(cmd, app, func(s *canvas.Session) (any, error) {
				db := s.Snapshot()
				if db.Categories == nil {
					return []model.Category{}, nil
				}
				return db.Categories, nil
			})
		},
	}
}

func newCategoryRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category-id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.UpdateCategoryName(args[0], args[1])
				if err != nil {
					return nil, err
				}
				return changedResult(s, args[0], changed), nil
			})
		},
	}
}

func newCategoryMoveCmd(app *App) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "move <category-id>",
		Short: "Move a category with all its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.DragCategory(args[0], model.Point{X: x, Y: y})
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

func newCategoryDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category; its tasks stay on the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				if err := s.DeleteCategory(args[0]); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": args[0]}, nil
			})
		},
	}
}

func newCategoryAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category-id> <task-id>",
		Short: "Add a task to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.AddTaskToCategory(args[1], args[0])
				if err != nil {
					return nil, err
				}
				return changedResult(s, args[1], changed), nil
			})
		},
	}
}

func newCategoryRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <task-id>",
		Short: "Take a task out of its category (a category left with one task dissolves)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				changed, err := s.RemoveTaskFromCategory(args[0])
				if err != nil {
					return nil, err
				}
				return changedResult(s, args[0], changed), nil
			})
		},
	}
}
