// Package infrastructure provides adapters for cross-cutting concerns:
// logging, configuration, metrics and health checking.
package infrastructure

import (
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/logger"
)

// SlogLoggerAdapter implements the Logger port on top of the structured
// slog-based logger in pkg/logger.
type SlogLoggerAdapter struct {
	logger *logger.Logger
}

// NewSlogLoggerAdapter creates a new logger adapter
func NewSlogLoggerAdapter(l *logger.Logger) *SlogLoggerAdapter {
	return &SlogLoggerAdapter{logger: l}
}

func (l *SlogLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	l.logger.Debug(msg, flatten(fields)...)
}

func (l *SlogLoggerAdapter) Info(msg string, fields ...ports.Field) {
	l.logger.Info(msg, flatten(fields)...)
}

func (l *SlogLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	l.logger.Warn(msg, flatten(fields)...)
}

func (l *SlogLoggerAdapter) Error(msg string, fields ...ports.Field) {
	l.logger.Error(msg, flatten(fields)...)
}

func flatten(fields []ports.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return args
}
