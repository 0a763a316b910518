package main

import (
	"io"
	"os"

	"github.com/gitalong/gitalong/internal/common"
	"github.com/gitalong/gitalong/internal/logger"
)

// App holds the dependencies shared by every subcommand, constructed once in
// main and threaded through via cobra's RunE closures so tests can swap in
// fake streams and a nil logger without touching os.Stdout/os.Stderr.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	Debug   bool
	LogFile string

	logger common.Logger
}

// NewDefaultApp builds an App wired to the real process streams.
func NewDefaultApp() *App {
	return &App{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Logger lazily constructs the process-wide logger on first use, honoring
// the --debug value cobra has already parsed onto the App. No flag sets
// LogFile, so unless a caller sets it, debug logging falls back to stderr.
func (a *App) Logger() common.Logger {
	if a.logger == nil {
		a.logger = logger.New(a.Debug, a.LogFile, a.Debug)
	}
	return a.logger
}

// Close releases logger resources acquired during the run.
func (a *App) Close() error {
	if l, ok := a.logger.(*logger.DefaultLogger); ok && l != nil {
		return l.Close()
	}
	return nil
}
