package tessera

import (
	"io"
	"log/slog"

	"github.com/golang-cz/devslog"
)

// NewLogger returns a colored debug logger when debug is set, else a
// text logger at info level.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if debug {
		return slog.New(devslog.NewHandler(w, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{Level: slog.LevelDebug},
			SortKeys:       true,
		}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
