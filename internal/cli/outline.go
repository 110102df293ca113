package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/publish"
)

func newOutlineCmd(app *App) *cobra.Command {
	var (
		to        string
		title     string
		showIDs   bool
		overwrite bool
		render    bool
		width     int
	)
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Print the board as a Markdown outline (categories, then nested tasks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			sess, _, err := loadSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if title == "" {
				title = app.boardLabel()
			}
			db := sess.Snapshot()

			if strings.TrimSpace(to) != "" {
				res, err := publish.WriteBoard(db, to, publish.WriteOptions{Title: title, ShowIDs: showIDs, Overwrite: overwrite})
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": res})
			}

			md, err := publish.RenderBoardMarkdown(db, publish.RenderOptions{Title: title, ShowIDs: showIDs})
			if err != nil {
				return writeErr(cmd, err)
			}
			if render {
				md = publish.RenderTerminal(md, publish.TerminalStyle(), width)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Write the outline to this file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "Heading (default: board name)")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Append ids to each line")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing --to file")
	cmd.Flags().BoolVar(&render, "render", false, "Render the Markdown for the terminal")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}
