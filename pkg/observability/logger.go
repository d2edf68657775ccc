// Package observability builds the process logger: a console core tee'd with
// an optional rotated JSON file.
package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/qemacs/qemacs-sub000/pkg/config"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

// ANSI color codes for the terminal.
const (
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorReset   = "\x1b[0m"
)

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  colorBlue,
	zapcore.InfoLevel:   colorGreen,
	zapcore.WarnLevel:   colorYellow,
	zapcore.ErrorLevel:  colorRed,
	zapcore.DPanicLevel: colorMagenta,
	zapcore.PanicLevel:  colorMagenta,
	zapcore.FatalLevel:  colorMagenta,
}

// New builds a logger from cfg writing human output to console. When
// cfg.File is set, entries are also written as JSON to that file, rotated
// by lumberjack.
func New(cfg config.LoggingConfig, console zapcore.WriteSyncer) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	cores := []zapcore.Core{zapcore.NewCore(getEncoder(cfg.Format), console, level)}
	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(getEncoder("json"), fileWriter, level))
	}

	options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.AddSource {
		options = append(options, zap.AddCaller())
	}
	logger := zap.New(zapcore.NewTee(cores...), options...)
	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}
	return logger
}

// Initialize sets up the global logger once. Later calls are ignored.
func Initialize(cfg config.LoggingConfig, console zapcore.WriteSyncer) {
	once.Do(func() {
		logger := New(cfg, console)
		globalLogger.Store(logger)
		zap.ReplaceGlobals(logger)
	})
}

// InitializeLogger initializes the global logger on stderr; stdout is kept
// for command output such as rendered images.
func InitializeLogger(cfg config.LoggingConfig) {
	Initialize(cfg, zapcore.Lock(os.Stderr))
}

// ResetForTest clears the global logger so it can be initialized again.
func ResetForTest() {
	globalLogger.Store(nil)
	once = sync.Once{}
}

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	s := strings.ToUpper(level.String())
	if c, ok := levelColors[level]; ok {
		enc.AppendString(c + s + colorReset)
		return
	}
	enc.AppendString(s)
}

func getEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	if format == "console" {
		encoderConfig.EncodeLevel = colorLevelEncoder
		encoderConfig.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(name + ".")
		}
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// GetLogger returns the global logger, or a no-op logger before
// initialization.
func GetLogger() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Sync flushes the global logger. Errors from syncing a terminal are
// ignored.
func Sync() {
	l := globalLogger.Load()
	if l == nil {
		return
	}
	if err := l.Sync(); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "/dev/std") &&
			!strings.Contains(msg, "invalid argument") &&
			!strings.Contains(msg, "inappropriate ioctl") &&
			!strings.Contains(msg, "operation not supported") {
			fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
		}
	}
}
