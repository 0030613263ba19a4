package logger

import "go.uber.org/zap"

// Logger defines the logging interface used across the service.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	Panic(msg string, fields ...zap.Field)
	// With returns a child logger that always carries fields.
	With(fields ...zap.Field) Logger
	Sync() error
}
