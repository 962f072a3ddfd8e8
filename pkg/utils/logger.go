package utils

import (
	"github.com/iotaledger/hive.go/logger"
)

// WrappedLogger forwards log calls to a logger, if one was passed.
// A nil WrappedLogger or one without a logger silently drops all messages.
type WrappedLogger struct {
	logger *logger.Logger
}

// NewWrappedLogger creates a new WrappedLogger.
func NewWrappedLogger(logger *logger.Logger) *WrappedLogger {
	return &WrappedLogger{logger: logger}
}

// Logger returns the underlying logger, or nil.
func (l *WrappedLogger) Logger() *logger.Logger {
	if l == nil {
		return nil
	}
	return l.logger
}

func (l *WrappedLogger) enabled() bool {
	return l != nil && l.logger != nil
}

// LogDebugf uses fmt.Sprintf to log a templated message.
func (l *WrappedLogger) LogDebugf(template string, args ...interface{}) {
	if l.enabled() {
		l.logger.Debugf(template, args...)
	}
}

// LogInfo uses fmt.Sprint to construct and log a message.
func (l *WrappedLogger) LogInfo(args ...interface{}) {
	if l.enabled() {
		l.logger.Info(args...)
	}
}

// LogInfof uses fmt.Sprintf to log a templated message.
func (l *WrappedLogger) LogInfof(template string, args ...interface{}) {
	if l.enabled() {
		l.logger.Infof(template, args...)
	}
}

// LogWarnf uses fmt.Sprintf to log a templated message.
func (l *WrappedLogger) LogWarnf(template string, args ...interface{}) {
	if l.enabled() {
		l.logger.Warnf(template, args...)
	}
}

// LogErrorf uses fmt.Sprintf to log a templated message.
func (l *WrappedLogger) LogErrorf(template string, args ...interface{}) {
	if l.enabled() {
		l.logger.Errorf(template, args...)
	}
}

// LogPanicf uses fmt.Sprintf to log a templated message, then panics.
func (l *WrappedLogger) LogPanicf(template string, args ...interface{}) {
	if l.enabled() {
		l.logger.Panicf(template, args...)
	}
}
