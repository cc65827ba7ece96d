package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger so packages depend on one logging type.
// Logging methods are promoted from the embedded zap.Logger, so call sites
// are reported without a caller skip.
type Logger struct {
	*zap.Logger
}

var (
	globalLogger *Logger
	once         sync.Once
)

// NewLogger builds the process-wide logger from DefaultConfig.
// Subsequent calls return the same instance. A bad LOG_* setting is reported
// on stderr and replaced by info-level JSON on stdout.
func NewLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		l, err := New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing logger: %v. Falling back to info level on stdout.\n", err)
			l, err = New(&LoggerConfig{Level: "info", Format: cfg.Encoding(), OutputFile: OutputStdout})
			if err != nil {
				l = FromZap(zap.Must(zap.NewProduction()))
			}
		}
		l.Info("Logger initialized",
			zap.Stringer("level", l.Level()),
			zap.String("format", cfg.Encoding()),
			zap.String("output", cfg.OutputFile))
		globalLogger = l
	})
	return globalLogger
}

// New builds a logger from cfg. File output is mirrored to stdout.
func New(cfg *LoggerConfig) (*Logger, error) {
	level, err := cfg.ParseLevel()
	if err != nil {
		return nil, err
	}

	var zapConfig zap.Config
	if level == zapcore.DebugLevel {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapConfig.Encoding = cfg.Encoding()
	if zapConfig.Encoding == FormatConsole {
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	switch {
	case cfg.writesToFile():
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zapConfig.OutputPaths = []string{cfg.OutputFile, OutputStdout}
		zapConfig.ErrorOutputPaths = []string{cfg.OutputFile, OutputStderr}
	case cfg.OutputFile == OutputStderr:
		zapConfig.OutputPaths = []string{OutputStderr}
		zapConfig.ErrorOutputPaths = []string{OutputStderr}
	default:
		zapConfig.OutputPaths = []string{OutputStdout}
		zapConfig.ErrorOutputPaths = []string{OutputStderr}
	}

	zl, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return FromZap(zl), nil
}

// FromZap wraps an existing zap logger, typically one backed by an observer
// core in tests.
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{Logger: zl}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

// Named adds a new path segment to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return FromZap(l.Logger.Named(name))
}

// With adds structured context to the logger.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return FromZap(l.Logger.With(fields...))
}

// WithTrace tags entries with the trace and span ids carried by ctx.
// Without a valid span it returns l unchanged.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()))
}
