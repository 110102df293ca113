package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/autosave"
	"github.com/Ngyama/idea-canvas/internal/canvas"
	"github.com/Ngyama/idea-canvas/internal/config"
)

var errAutosaveOff = errors.New("autosave is off (config autosave.backend)")

// openSink opens the configured autosave backend for the current board.
// It returns errAutosaveOff when autosave is disabled.
func openSink(ctx context.Context, app *App) (autosave.Sink, string, config.Autosave, error) {
	settings := app.cfg.AutosaveSettings()
	s, err := resolveStore(app)
	if err != nil {
		return nil, "", settings, err
	}
	key := autosave.Key
	if app.Board != "" && app.Board != config.DefaultBoard {
		key += ":" + app.Board
	}

	switch settings.Backend {
	case config.BackendOff:
		return nil, key, settings, errAutosaveOff
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: settings.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, key, settings, fmt.Errorf("redis %s: %w", settings.RedisAddr, err)
		}
		return autosave.NewRedisSink(client, settings.Freshness()), key, settings, nil
	case config.BackendSQLite:
		sink, err := autosave.OpenSQLiteSink(ctx, filepath.Join(s.Dir, "autosave.sqlite"))
		if err != nil {
			return nil, key, settings, err
		}
		return sink, key, settings, nil
	default:
		return nil, key, settings, fmt.Errorf("unknown autosave backend %q", settings.Backend)
	}
}

func newAutosaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autosave",
		Short: "Inspect and manage the autosaved board",
	}
	cmd.AddCommand(newAutosaveStatusCmd(app))
	cmd.AddCommand(newAutosaveSaveCmd(app))
	cmd.AddCommand(newAutosaveRestoreCmd(app))
	cmd.AddCommand(newAutosaveClearCmd(app))
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newAutosaveStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored snapshot, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			sink, key, settings, err := openSink(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()

			out := map[string]any{"backend": settings.Backend, "key": key, "exists": false}
			snap, err := sink.Load(ctx, key)
			switch {
			case errors.Is(err, autosave.ErrNoSnapshot):
			case err != nil:
				return writeErr(cmd, err)
			default:
				out["exists"] = true
				out["savedAt"] = snap.SavedAt.UTC().Format(time.RFC3339)
				out["sessionId"] = snap.SessionID
				out["digest"] = snap.Digest
				out["fresh"] = time.Since(snap.SavedAt) <= settings.Freshness()
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newAutosaveSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the current board to the autosave backend now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			sess, _, err := loadSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sink, key, _, err := openSink(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()

			saver := autosave.New(sink, sess, autosave.Options{Key: key, Logger: app.logger()})
			saved, err := saver.SaveNow(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"saved": saved, "key": key, "sessionId": saver.SessionID()}})
		},
	}
}

func newAutosaveRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace the board with the autosaved one if it is still fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			sink, key, settings, err := openSink(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()

			db, snap, err := autosave.LoadFresh(ctx, sink, key, time.Now(), settings.Freshness())
			if err != nil {
				return writeErr(cmd, err)
			}
			return mutateBoard(cmd, app, func(s *canvas.Session) (any, error) {
				s.LoadData(db)
				return map[string]any{
					"savedAt":    snap.SavedAt.UTC().Format(time.RFC3339),
					"tasks":      len(db.Tasks),
					"categories": len(db.Categories),
				}, nil
			})
		},
	}
}

func newAutosaveClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the autosaved board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			sink, key, _, err := openSink(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()
			if err := sink.Delete(ctx, key); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cleared": key}})
		},
	}
}
