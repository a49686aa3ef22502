package refetch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// zeroLogger adapts zerolog to the Logger interface.
type zeroLogger struct {
	zl zerolog.Logger
}

var _ Logger = (*zeroLogger)(nil)

// NewLogger creates a zerolog-backed Logger writing to stderr. Unknown level
// strings fall back to info; pretty enables human-readable console output.
func NewLogger(level string, pretty bool) Logger {
	return NewLoggerWithWriter(level, pretty, os.Stderr)
}

// NewLoggerWithWriter creates a Logger writing to the given sink.
func NewLoggerWithWriter(level string, pretty bool, w io.Writer) Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	return &zeroLogger{zl: zl.Level(zLevel)}
}

func (l *zeroLogger) Debug(msg string, keysAndValues ...any) {
	emit(l.zl.Debug(), msg, keysAndValues)
}

func (l *zeroLogger) Info(msg string, keysAndValues ...any) {
	emit(l.zl.Info(), msg, keysAndValues)
}

func (l *zeroLogger) Warn(msg string, keysAndValues ...any) {
	emit(l.zl.Warn(), msg, keysAndValues)
}

func (l *zeroLogger) Error(msg string, keysAndValues ...any) {
	emit(l.zl.Error(), msg, keysAndValues)
}

func emit(ev *zerolog.Event, msg string, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ev = ev.Interface(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	ev.Msg(msg)
}
