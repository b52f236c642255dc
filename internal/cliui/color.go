// Package cliui provides small output helpers shared by genomectl's
// subcommands: colored status lines on stdout (uncolored when
// fatih/color detects stdout isn't a terminal, or after SetNoColor(true))
// and a progress spinner on stderr, shown only when stderr is a TTY.
package cliui

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
)

// SetNoColor disables all color output when noColor is true, e.g. for
// --no-color or --quiet; false leaves the automatic pipe detection in
// place.
func SetNoColor(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

func Success(format string, args ...any) {
	_, _ = Green.Printf("✓ "+format+"\n", args...)
}

func Warning(format string, args ...any) {
	_, _ = Yellow.Printf("⚠ "+format+"\n", args...)
}

func Error(format string, args ...any) {
	_, _ = Red.Printf("✗ "+format+"\n", args...)
}

func Info(format string, args ...any) {
	_, _ = Cyan.Printf("ℹ "+format+"\n", args...)
}

func Header(text string) {
	_, _ = Bold.Println(text)
	fmt.Println()
}
