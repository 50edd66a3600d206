// The pad is a local scratch-pad editor over a weft document: every
// keystroke becomes a patch, so the whole positional-index stack runs
// under an ordinary editing session.
package main

import (
	"errors"
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

// Flags represents the command-line flags passed to the pad.
type Flags struct {
	Name  string
	File  string
	Debug bool
}

// parseFlags parses command-line flags.
func parseFlags() Flags {
	name := flag.String("name", "", "The display name to use, skipping the login prompt")
	file := flag.String("file", "", "The file to load the pad content from and save it back to")
	debug := flag.Bool("debug", false, "Enable debugging mode to show more verbose logs")

	flag.Parse()

	return Flags{
		Name:  *name,
		File:  *file,
		Debug: *debug,
	}
}

func main() {
	flags := parseFlags()

	logger, logFile, debugLogFile, err := setupLogger(flags.Debug)
	if err != nil {
		color.Red("Logger error, exiting: %s", err)
		os.Exit(1)
	}
	defer closeLogFiles(logFile, debugLogFile)

	content := ""
	if flags.File != "" {
		data, err := os.ReadFile(flags.File)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			color.Red("Failed to read %s: %s", flags.File, err)
			os.Exit(1)
		}
		content = string(data)
	}

	color.Green("Welcome to the pad!")
	color.Yellow("Arrow keys move, ctrl+d dumps state to the debug log, esc quits.")

	logger.Info().Str("name", flags.Name).Str("file", flags.File).Msg("starting pad")

	p := tea.NewProgram(newPadModel(flags.Name, content, logger))
	final, err := p.StartReturningModel()
	if err != nil {
		logger.Error().Err(err).Msg("pad exited")
		color.Red("Pad error, exiting: %s", err)
		os.Exit(1)
	}

	if flags.File != "" {
		text := final.(padModel).Text()
		if err := os.WriteFile(flags.File, []byte(text), 0644); err != nil {
			logger.Error().Err(err).Msg("save file")
			color.Red("Failed to save %s: %s", flags.File, err)
			os.Exit(1)
		}
		color.Green("Saved %s.", flags.File)
	}
}
