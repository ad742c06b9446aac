package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	exmaxerrors "github.com/YuminosukeSato/exmax/pkg/errors"
)

// zerologLogger は zerolog をバックエンドにした Logger 実装です。
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger returns a Logger writing JSON lines to w.
// Records below level are dropped.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{logger: zl}
}

// NewConsoleLogger returns a zerolog Logger with human readable output.
func NewConsoleLogger(w io.Writer, level Level) Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	zl := zerolog.New(cw).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{logger: zl}
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.emit(z.logger.Info(), msg, fields)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	event := z.logger.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			event = event.AnErr(ErrAttrKey, err)
			if st := extractStacktrace(err); st != "" {
				event = event.Str(StacktraceAttrKey, st)
			}
			rest := fields[1:]
			fields = append(append([]any{}, rest...), errorFields(err, rest)...)
		}
	}
	z.emit(event, msg, fields)
}

func (z *zerologLogger) With(fields ...any) Logger {
	return &zerologLogger{logger: z.logger.With().Fields(fields).Logger()}
}

func (z *zerologLogger) Enabled(ctx context.Context, level Level) bool {
	return z.logger.GetLevel() <= toZerologLevel(level)
}

func (z *zerologLogger) emit(event *zerolog.Event, msg string, fields []any) {
	if event == nil {
		return
	}
	event.Fields(fields).Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ===========================================================================
//
//	グローバルロガー
//
// ===========================================================================

var (
	globalMu     sync.RWMutex
	globalLevel  = LevelWarn
	globalLogger = NewZerologLogger(os.Stderr, LevelWarn)
)

// GetLogger returns the process wide logger.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// GetLoggerWithName returns the process wide logger tagged with ComponentKey.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// SetLogger replaces the process wide logger. nil is ignored.
func SetLogger(l Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// SetLevel rebuilds the default zerolog logger on stderr with the given level.
func SetLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLevel = level
	globalLogger = NewZerologLogger(os.Stderr, level)
}

// CurrentLevel returns the level last passed to SetLevel or SetupLogger.
func CurrentLevel() Level {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLevel
}

// InstallWarningHandler routes errors.Warn through the process wide logger.
// Warnings implementing zerolog.LogObjectMarshaler are embedded field by field
// when the logger is zerolog backed.
func InstallWarningHandler() {
	exmaxerrors.SetZerologWarnFunc(func(w error) {
		l := GetLogger()
		if zl, ok := l.(*zerologLogger); ok {
			event := zl.logger.Warn()
			if m, ok := w.(zerolog.LogObjectMarshaler); ok {
				event = event.EmbedObject(m)
			}
			event.Msg(w.Error())
			return
		}
		if extra := errorFields(w, nil); extra != nil {
			l.Warn(w.Error(), extra...)
			return
		}
		l.Warn(w.Error(), ErrorTypeKey, fmt.Sprintf("%T", w))
	})
}

// UninstallWarningHandler restores the plain warning handler of pkg/errors.
func UninstallWarningHandler() {
	exmaxerrors.SetZerologWarnFunc(nil)
}
