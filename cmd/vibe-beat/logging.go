package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxLogSize triggers rotation of an existing log file at startup
const maxLogSize = 10 * 1024 * 1024

// setupLogging points the global zerolog logger at path, or discards output when path is empty
// The terminal belongs to the TUI, so logs never go to stdout or stderr
func setupLogging(path string, level zerolog.Level) (*os.File, error) {
	zerolog.SetGlobalLevel(level)

	if path == "" {
		log.Logger = zerolog.New(io.Discard)
		return nil, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	rotateLog(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    true,
		TimeFormat: time.RFC3339Nano,
	}).With().Timestamp().Logger()

	return f, nil
}

// rotateLog renames an oversized log with a timestamp suffix
func rotateLog(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return
	}
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	rotated := fmt.Sprintf("%s-%s%s", base, time.Now().Format("20060102-150405"), ext)
	_ = os.Rename(path, rotated)
}
