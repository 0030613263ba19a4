package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapLogger implements Logger on top of a zap core with an adjustable level.
type ZapLogger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// NewConsoleLogger writes to stdout. A human-readable encoder is used when
// stdout is a terminal and JSON otherwise.
func NewConsoleLogger(level string) *ZapLogger {
	enc := jsonEncoder()
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		enc = consoleEncoder()
	}
	return newZapLogger(level, enc, zapcore.Lock(os.Stdout))
}

// NewFileLogger writes JSON lines to a size-rotated file.
func NewFileLogger(level, filePath string, maxSize, maxBackups, maxAge int) *ZapLogger {
	writer := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}
	return newZapLogger(level, jsonEncoder(), zapcore.AddSync(writer))
}

// NewWriterLogger writes JSON lines to w. Used by tests and the CLI.
func NewWriterLogger(level string, w io.Writer) *ZapLogger {
	return newZapLogger(level, jsonEncoder(), zapcore.AddSync(w))
}

// NewNop returns a logger that discards everything.
func NewNop() *ZapLogger {
	return &ZapLogger{zl: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func newZapLogger(level string, enc zapcore.Encoder, ws zapcore.WriteSyncer) *ZapLogger {
	atom := zap.NewAtomicLevelAt(parseLevel(level))
	core := zapcore.NewCore(enc, ws, atom)
	return &ZapLogger{
		zl:    zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		level: atom,
	}
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// SetLevel changes the minimum level at runtime.
func (l *ZapLogger) SetLevel(level string) {
	l.level.SetLevel(parseLevel(level))
}

func (l *ZapLogger) Debug(msg string, fields ...zap.Field) { l.zl.Debug(msg, fields...) }
func (l *ZapLogger) Info(msg string, fields ...zap.Field)  { l.zl.Info(msg, fields...) }
func (l *ZapLogger) Warn(msg string, fields ...zap.Field)  { l.zl.Warn(msg, fields...) }
func (l *ZapLogger) Error(msg string, fields ...zap.Field) { l.zl.Error(msg, fields...) }
func (l *ZapLogger) Fatal(msg string, fields ...zap.Field) { l.zl.Fatal(msg, fields...) }
func (l *ZapLogger) Panic(msg string, fields ...zap.Field) { l.zl.Panic(msg, fields...) }

func (l *ZapLogger) With(fields ...zap.Field) Logger {
	return &ZapLogger{zl: l.zl.With(fields...), level: l.level}
}

func (l *ZapLogger) Sync() error {
	return l.zl.Sync()
}
