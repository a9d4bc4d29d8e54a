// Package logger provides structured logging for PgArchive using zap.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger with context methods for the archival
// domain (table, depth, action).
type Logger struct {
	*zap.SugaredLogger
	base *zap.Logger
}

// New creates a Logger writing at level, optionally teeing to a file under
// logPath ("pgarchive.log"). An empty logPath writes to stdout only.
func New(level, logPath string) (*Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), buildWriters(logPath), parseLevel(level))
	baseLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{
		SugaredLogger: baseLogger.Sugar(),
		base:          baseLogger,
	}, nil
}

// NewDefault creates a Logger with info level, stdout only.
func NewDefault() *Logger {
	l, _ := New("info", "")
	return l
}

// parseLevel converts a CLI/config level string to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug", "DEBUG":
		return zapcore.DebugLevel
	case "warn", "WARN", "warning", "WARNING":
		return zapcore.WarnLevel
	case "error", "ERROR":
		return zapcore.ErrorLevel
	case "info", "INFO", "":
		return zapcore.InfoLevel
	default:
		return zapcore.InfoLevel
	}
}

// buildWriters returns stdout, or stdout tee'd with a log file under
// logPath when one is given.
func buildWriters(logPath string) zapcore.WriteSyncer {
	if logPath == "" {
		return zapcore.AddSync(os.Stdout)
	}

	file, err := os.OpenFile(logPath+string(os.PathSeparator)+"pgarchive.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zapcore.AddSync(os.Stdout)
	}
	return zapcore.NewMultiWriteSyncer(
		zapcore.AddSync(file),
		zapcore.AddSync(os.Stdout),
	)
}

// WithTable returns a Logger with table context.
func (l *Logger) WithTable(tableName string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("table", tableName), base: l.base}
}

// WithDepth returns a Logger with recursion-depth context.
func (l *Logger) WithDepth(depth int) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("depth", depth), base: l.base}
}

// WithAction returns a Logger with action context (archive-table, table-refs, rows-refs).
func (l *Logger) WithAction(action string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("action", action), base: l.base}
}

// WithFields returns a Logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(args...), base: l.base}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
