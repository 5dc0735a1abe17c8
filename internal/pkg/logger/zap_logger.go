package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

// Options select where a logger writes.
type Options struct {
	// FilePath is the rotated JSON log file. Empty disables the file.
	FilePath string
	// Console also writes to stdout, as JSON in production and colored text otherwise.
	Console    bool
	Production bool
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
}

type ZapLogger struct {
	logger *zap.Logger
}

func New(opts Options) *ZapLogger {
	level := ParseLevel(opts.Level)
	var cores []zapcore.Core

	if opts.FilePath != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			zapcore.AddSync(newRotator(opts.FilePath)),
			level,
		))
	}
	if opts.Console {
		encoder := zapcore.NewConsoleEncoder(consoleEncoderConfig())
		if opts.Production {
			encoder = zapcore.NewJSONEncoder(fileEncoderConfig())
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}
	return fromCore(zapcore.NewTee(cores...))
}

// NewNopLogger discards everything. Used by tests and tools.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

func fromCore(core zapcore.Core) *ZapLogger {
	// skip the wrapper so callers show up in the caller field
	return &ZapLogger{logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}
}

func ParseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

func newRotator(logFilePath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return cfg
}

func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	ce := l.logger.Check(level, message)
	if ce == nil {
		return
	}
	fields := []zap.Field{zap.String("module", module)}
	if len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
		if err, ok := details["error"]; ok && level >= zap.ErrorLevel {
			fields = append(fields, zap.Any("error_ref", err))
		}
	}
	ce.Write(fields...)
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.write(zap.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.write(zap.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.write(zap.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.write(zap.ErrorLevel, module, message, details)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
