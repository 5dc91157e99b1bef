// Package logging configures zerolog for the chess50 binaries. Logs go to
// stderr because stdout carries the UCI protocol.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger writing to w at the named level. pretty selects the
// console writer over JSON lines.
func New(w io.Writer, level string, pretty bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		_, isFile := w.(*os.File)
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isFile}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Setup installs the logger as the global and context default and
// returns it.
func Setup(level string, pretty bool) (zerolog.Logger, error) {
	logger, err := New(os.Stderr, level, pretty)
	if err != nil {
		return logger, err
	}
	zerolog.SetGlobalLevel(logger.GetLevel())
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	return logger, nil
}

// BadgerLogger routes badger's log output through zerolog. Badger is
// chatty at info level, so its info lines are logged at debug.
type BadgerLogger struct {
	Logger zerolog.Logger
}

func (b BadgerLogger) Errorf(format string, args ...interface{}) {
	b.Logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b BadgerLogger) Warningf(format string, args ...interface{}) {
	b.Logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b BadgerLogger) Infof(format string, args ...interface{}) {
	b.Logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b BadgerLogger) Debugf(format string, args ...interface{}) {
	b.Logger.Trace().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
