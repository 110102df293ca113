package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ngyama/idea-canvas/internal/autosave"
	"github.com/Ngyama/idea-canvas/internal/tui"
)

// runTUI opens the interactive board. A fresh autosave is offered for
// restore (or loaded directly with --restore) and the autosaver runs for
// the lifetime of the program.
func runTUI(cmd *cobra.Command, app *App, restore bool) error {
	ctx := cmdContext(cmd)
	sess, s, err := loadSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	log := app.logger()

	var offer *tui.RestoreOffer
	sink, key, settings, err := openSink(ctx, app)
	switch {
	case errors.Is(err, errAutosaveOff):
		sink = nil
	case err != nil:
		log.WithError(err).Warn("autosave unavailable")
		sink = nil
	}
	if sink != nil {
		defer sink.Close()
		db, snap, err := autosave.LoadFresh(ctx, sink, key, time.Now(), settings.Freshness())
		switch {
		case err == nil:
			if restore {
				sess.LoadData(db)
			} else {
				offer = &tui.RestoreOffer{DB: db, SavedAt: snap.SavedAt}
			}
		case errors.Is(err, autosave.ErrNoSnapshot), errors.Is(err, autosave.ErrSnapshotExpired):
		default:
			log.WithError(err).Warn("autosave snapshot unreadable")
		}

		saver := autosave.New(sink, sess, autosave.Options{
			Key:      key,
			Interval: settings.Interval(),
			Logger:   log,
		})
		saver.Start(ctx)
		defer saver.Stop(ctx)
	}

	if err := tui.Run(sess, tui.Options{Title: app.boardLabel(), Offer: offer, Logger: log}); err != nil {
		return writeErr(cmd, err)
	}
	if err := saveSession(ctx, s, sess); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
