// Package runlog builds the loggers scoped to a single run.
package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file written next to the score artifacts.
const FileName = "analysis.log"

// Open creates (truncating) dir/analysis.log and returns a logger that writes
// every record both to that file, with timestamps, and to console as
// "LEVEL message attrs". Close the returned closer when the run is over.
func Open(dir string, console io.Writer) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", FileName, err)
	}
	return New(f, console), f, nil
}

// New returns a logger that fans out to file and console. Either may be nil.
func New(file, console io.Writer) *slog.Logger {
	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, &slog.HandlerOptions{
			Level:       slog.LevelInfo,
			ReplaceAttr: dropTime,
		}))
	}
	return slog.New(slog.NewMultiHandler(handlers...))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
