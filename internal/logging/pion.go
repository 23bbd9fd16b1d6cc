package logging

import (
	"fmt"

	"github.com/pion/logging"
	"go.uber.org/zap"
)

// pionLogger adapts zap to pion's LeveledLogger. Trace maps to Debug.
type pionLogger struct {
	scope string
}

func (l *pionLogger) log() *zap.Logger {
	return GetLogger().With(zap.String("scope", l.scope))
}

func (l *pionLogger) Trace(msg string)                  { l.log().Debug(msg) }
func (l *pionLogger) Tracef(format string, args ...any) { l.log().Debug(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Debug(msg string)                  { l.log().Debug(msg) }
func (l *pionLogger) Debugf(format string, args ...any) { l.log().Debug(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Info(msg string)                   { l.log().Info(msg) }
func (l *pionLogger) Infof(format string, args ...any)  { l.log().Info(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Warn(msg string)                   { l.log().Warn(msg) }
func (l *pionLogger) Warnf(format string, args ...any)  { l.log().Warn(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Error(msg string)                  { l.log().Error(msg) }
func (l *pionLogger) Errorf(format string, args ...any) { l.log().Error(fmt.Sprintf(format, args...)) }

type pionFactory struct{}

func (pionFactory) NewLogger(scope string) logging.LeveledLogger {
	return &pionLogger{scope: scope}
}

// PionFactory returns a pion LoggerFactory that writes through the global zap logger.
func PionFactory() logging.LoggerFactory {
	return pionFactory{}
}
