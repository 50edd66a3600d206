package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ensureDirExists ensures that a directory exists, and if it isn't present, it tries to create a new one.
func ensureDirExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.Mkdir(path, 0700)
}

// setupLogger opens the pad's log files under the home directory and
// builds a logger writing warnings and up to weft.log and everything to
// weft-debug.log.
func setupLogger(debug bool) (zerolog.Logger, *os.File, *os.File, error) {
	logPath := "weft.log"
	debugLogPath := "weft-debug.log"

	// Fall back to the working directory when there is no usable home.
	if homeDir, err := os.UserHomeDir(); err == nil {
		weftDir := filepath.Join(homeDir, ".weft")
		if err := ensureDirExists(weftDir); err != nil {
			return zerolog.Nop(), nil, nil, fmt.Errorf("create %s: %w", weftDir, err)
		}
		logPath = filepath.Join(weftDir, "weft.log")
		debugLogPath = filepath.Join(weftDir, "weft-debug.log")
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nil, nil, fmt.Errorf("open %s: %w", logPath, err)
	}

	debugLogFile, err := os.OpenFile(debugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logFile.Close()
		return zerolog.Nop(), nil, nil, fmt.Errorf("open %s: %w", debugLogPath, err)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	warnings := &zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: logFile},
		Level:  zerolog.WarnLevel,
	}
	verbose := &zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: debugLogFile},
		Level:  level,
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(warnings, verbose)).With().Timestamp().Logger()
	return logger, logFile, debugLogFile, nil
}

// closeLogFiles closes the log files created by the pad.
// closeLogFiles is meant to be used for defer calls.
func closeLogFiles(logFile, debugLogFile *os.File) {
	if err := logFile.Close(); err != nil {
		fmt.Printf("Failed to close log file: %s", err)
		return
	}

	if err := debugLogFile.Close(); err != nil {
		fmt.Printf("Failed to close debug log file: %s", err)
	}
}
