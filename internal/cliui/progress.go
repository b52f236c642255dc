package cliui

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// NewSpinner returns an indeterminate progress spinner labeled desc,
// or nil when stderr isn't a TTY or quiet is set — callers must treat
// a nil spinner as a no-op. The Structural Extractor dispatches file
// analysis across a worker pool with no per-file callback, so genomectl
// can only show scan progress as indeterminate, not count-based.
func NewSpinner(desc string, quiet bool) *progressbar.ProgressBar {
	if quiet || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

// Finish clears the spinner, tolerating a nil spinner.
func Finish(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
