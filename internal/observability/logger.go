// Package observability sets up zap logging for the CLI and adapts it to mbt.Logger.
package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig controls lumberjack file rotation.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"       yaml:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"  yaml:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool `mapstructure:"compress"     yaml:"compress"`
}

// LogConfig describes where and how to log.
type LogConfig struct {
	Level    string         `mapstructure:"level"    yaml:"level"    validate:"omitempty,oneof=debug info warn warning error"`
	Format   string         `mapstructure:"format"   yaml:"format"   validate:"omitempty,oneof=console json"`
	Outputs  []string       `mapstructure:"outputs"  yaml:"outputs"`
	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

// SetupLogger builds a zap.Logger from the configuration. Outputs are "stdout",
// "stderr" or a file path; an empty list logs to stderr. The caller should
// defer logger.Sync().
func SetupLogger(c LogConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(parseLevel(c.Level))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(c.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	outputs := c.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	cores := make([]zapcore.Core, 0, len(outputs))

	for _, out := range outputs {
		ws, err := writeSyncer(out, c.Rotation)
		if err != nil {
			return nil, err
		}

		cores = append(cores, zapcore.NewCore(encoder, ws, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func writeSyncer(out string, rotation RotationConfig) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(out) {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	if rotation.Enable {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   out,
			MaxSize:    max(rotation.MaxSizeMB, 10),
			MaxBackups: max(rotation.MaxBackups, 1),
			MaxAge:     max(rotation.MaxAgeDays, 7),
			Compress:   rotation.Compress,
		}), nil
	}

	f, err := os.OpenFile(filepath.Clean(out), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	return zapcore.AddSync(f), nil
}

// Logger adapts a zap.Logger to the mbt.Logger interface.
type Logger struct {
	zap *zap.Logger
}

// NewLogger wraps z. A nil logger discards everything.
func NewLogger(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}

	return &Logger{zap: z.WithOptions(zap.AddCallerSkip(1))}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.zap.Debug(msg, toZap(fields)...)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.zap.Info(msg, toZap(fields)...)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.zap.Warn(msg, toZap(fields)...)
}

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.zap.Error(msg, toZap(fields)...)
}

// toZap converts fields in key order so output is stable.
func toZap(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))

	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			out = append(out, zap.NamedError(k, err))

			continue
		}

		out = append(out, zap.Any(k, fields[k]))
	}

	return out
}
