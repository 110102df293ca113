package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/canvas"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as an ordered JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			sess, _, err := loadSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := sess.Export(app.PrettyJSON)
			if err != nil {
				return writeErr(cmd, err)
			}
			b = append(b, '\n')

			out = strings.TrimSpace(out)
			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return writeErr(cmd, err)
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"written": out}})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the board with an export; history starts over",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				b   []byte
				err error
			)
			if args[0] == "-" {
				b, err = io.ReadAll(cmd.InOrStdin())
			} else {
				b, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				if err := s.Import(b); err != nil {
					return nil, err
				}
				db := s.Snapshot()
				return map[string]any{"tasks": len(db.Tasks), "categories": len(db.Categories)}, nil
			})
		},
	}
}
