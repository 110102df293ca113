package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/config"
	"github.com/Ngyama/idea-canvas/internal/format"
	"github.com/Ngyama/idea-canvas/internal/store"
)

type App struct {
	Dir        string
	Board      string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg *config.Config
	log *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	var restore bool

	cmd := &cobra.Command{
		Use:          "canvas",
		Short:        "Idea canvas: a mind-map board for the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the interactive board
  canvas

  # Scriptable commands
  canvas task create --x 100 --y 100 --content "Launch plan"
  canvas child add <parent-id> <child-id>
  canvas drag <task-id> --from 220,125 --to 220,465
  canvas undo
  canvas outline --render
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive board.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app, restore)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		level := app.LogLevel
		if level == "" {
			level = cfg.LogLevel
		}
		app.log, err = newLogger(cmd.ErrOrStderr(), level)
		if err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CANVAS_DIR", ""), "Path to board state dir (overrides --board)")
	cmd.PersistentFlags().StringVar(&app.Board, "board", envOr("CANVAS_BOARD", ""), "Board name (default: config currentBoard, else 'default')")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CANVAS_FORMAT", "json"), "Output format (json|edn|yaml|cbor)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("CANVAS_LOG_LEVEL", ""), "Log level (panic|fatal|error|warn|info|debug|trace)")
	cmd.Flags().BoolVar(&restore, "restore", false, "Load the latest fresh autosave without asking")

	cmd.AddCommand(newTaskCmd(app))
	cmd.AddCommand(newCategoryCmd(app))
	cmd.AddCommand(newChildCmd(app))
	cmd.AddCommand(newDragCmd(app))
	cmd.AddCommand(newClassifyCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newOutlineCmd(app))
	cmd.AddCommand(newAutosaveCmd(app))
	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newBoardsCmd(app))

	return cmd
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if level = strings.TrimSpace(level); level != "" {
		lv, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		l.SetLevel(lv)
	}
	return l, nil
}

// resolveStore picks the state dir:
// 1) --dir
// 2) --board
// 3) config currentBoard
// 4) the default board
func resolveStore(app *App) (store.Store, error) {
	if app.Dir != "" {
		return store.Store{Dir: app.Dir}, nil
	}
	name := app.Board
	if name == "" && app.cfg != nil {
		name = app.cfg.CurrentBoard
	}
	if name == "" {
		name = config.DefaultBoard
	}
	dir, err := store.BoardDir(name)
	if err != nil {
		return store.Store{}, err
	}
	app.Board = name
	app.Dir = dir
	return store.Store{Dir: dir}, nil
}

func (app *App) logger() logrus.FieldLogger {
	if app.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return app.log.WithField("board", app.boardLabel())
}

func (app *App) boardLabel() string {
	if app.Board != "" {
		return app.Board
	}
	return app.Dir
}

// loadSession opens the board with its persisted undo history.
func loadSession(ctx context.Context, app *App) (*canvas.Session, store.Store, error) {
	s, err := resolveStore(app)
	if err != nil {
		return nil, s, err
	}
	st, err := s.LoadSession(ctx)
	if err != nil {
		return nil, s, err
	}
	opts := []canvas.Option{canvas.WithLogger(app.logger())}
	if len(st.History) > 0 {
		sess, err := canvas.Resume(st.History, st.Cursor, opts...)
		if err == nil {
			return sess, s, nil
		}
		app.logger().WithError(err).Warn("stored history unusable; starting fresh")
	}
	return canvas.New(st.DB, opts...), s, nil
}

func saveSession(ctx context.Context, s store.Store, sess *canvas.Session) error {
	entries, cursor := sess.History()
	return s.SaveSession(ctx, &store.SessionState{
		DB:      sess.Snapshot(),
		History: entries,
		Cursor:  cursor,
	})
}

// mutateBoard loads the session, runs fn and persists the result.
func mutateBoard(cmd *cobra.Command, app *App, fn func(*canvas.Session) (any, error)) error {
	ctx := cmdContext(cmd)
	sess, s, err := loadSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	out, err := fn(sess)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := saveSession(ctx, s, sess); err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": out})
}

// readBoard loads the session read-only.
func readBoard(cmd *cobra.Command, app *App, fn func(*canvas.Session) (any, error)) error {
	ctx := cmdContext(cmd)
	sess, _, err := loadSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	out, err := fn(sess)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": out})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
