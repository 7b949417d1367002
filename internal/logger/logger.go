package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log attribute.
type Field = zap.Field

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)

	// With returns a child logger that always carries fields.
	With(fields ...Field) Logger
	Sync() error
}

// Options configures New.
type Options struct {
	Level  string
	Pretty bool
	// OutputPath is a file to append to. Empty means stderr.
	OutputPath string
}

type loggerImpl struct {
	base    *zap.Logger
	sugared *zap.SugaredLogger
}

// New builds a zap-backed Logger. An unknown level keeps the config default.
func New(opts Options) (Logger, error) {
	var cfg zap.Config
	if opts.Pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if lvl := parseLevel(opts.Level); lvl != nil {
		cfg.Level = zap.NewAtomicLevelAt(*lvl)
	}

	if opts.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		// Colour codes make no sense in a file.
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.OutputPaths = []string{opts.OutputPath}
		cfg.ErrorOutputPaths = []string{opts.OutputPath}
	}

	base, err := cfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return wrap(base), nil
}

// Nop discards everything.
func Nop() Logger {
	return wrap(zap.NewNop())
}

// FromZap wraps an existing zap logger, e.g. an observer core in tests.
func FromZap(base *zap.Logger) Logger {
	return wrap(base)
}

func wrap(base *zap.Logger) *loggerImpl {
	return &loggerImpl{base: base, sugared: base.Sugar()}
}

func parseLevel(lvl string) *zapcore.Level {
	var l zapcore.Level
	switch strings.ToLower(lvl) {
	case "debug":
		l = zapcore.DebugLevel
	case "info":
		l = zapcore.InfoLevel
	case "warn", "warning":
		l = zapcore.WarnLevel
	case "error":
		l = zapcore.ErrorLevel
	default:
		return nil
	}
	return &l
}

// ValidLevel reports whether lvl is one New understands.
func ValidLevel(lvl string) bool {
	return parseLevel(lvl) != nil
}

func (l *loggerImpl) Debug(msg string, fields ...Field) { l.base.Debug(msg, fields...) }
func (l *loggerImpl) Info(msg string, fields ...Field)  { l.base.Info(msg, fields...) }
func (l *loggerImpl) Warn(msg string, fields ...Field)  { l.base.Warn(msg, fields...) }
func (l *loggerImpl) Error(msg string, fields ...Field) { l.base.Error(msg, fields...) }

func (l *loggerImpl) Debugf(t string, args ...any) { l.sugared.Debugf(t, args...) }
func (l *loggerImpl) Infof(t string, args ...any)  { l.sugared.Infof(t, args...) }
func (l *loggerImpl) Warnf(t string, args ...any)  { l.sugared.Warnf(t, args...) }
func (l *loggerImpl) Errorf(t string, args ...any) { l.sugared.Errorf(t, args...) }

func (l *loggerImpl) With(fields ...Field) Logger { return wrap(l.base.With(fields...)) }

func (l *loggerImpl) Sync() error { return l.base.Sync() }

// Field constructors so callers do not import zap directly.
func String(key, val string) Field                 { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Err(err error) Field                          { return zap.Error(err) }
