// Package logsink forwards driver log output to logrus on the host
package logsink

import (
	"github.com/sirupsen/logrus"

	"rtl819x/core"
)

// Level maps a driver log level to its logrus equivalent
func Level(l core.Level) logrus.Level {
	switch l {
	case core.LevelError:
		return logrus.ErrorLevel
	case core.LevelWarn:
		return logrus.WarnLevel
	case core.LevelInfo:
		return logrus.InfoLevel
	}
	return logrus.DebugLevel
}

// CoreLevel maps a logrus level to the most verbose driver level it admits
func CoreLevel(l logrus.Level) core.Level {
	switch {
	case l <= logrus.ErrorLevel:
		return core.LevelError
	case l == logrus.WarnLevel:
		return core.LevelWarn
	case l == logrus.InfoLevel:
		return core.LevelInfo
	}
	return core.LevelDebug
}

// Writer returns a core.LogWriter that logs each message through logger
// with a component field
func Writer(logger logrus.FieldLogger) core.LogWriter {
	return func(level core.Level, component, msg string) {
		entry := logger.WithField("component", component)
		switch level {
		case core.LevelError:
			entry.Error(msg)
		case core.LevelWarn:
			entry.Warn(msg)
		case core.LevelInfo:
			entry.Info(msg)
		default:
			entry.Debug(msg)
		}
	}
}

// Install routes driver logging to logger at logger's level
func Install(logger *logrus.Logger) {
	core.SetLogLevel(CoreLevel(logger.GetLevel()))
	core.SetLogWriter(Writer(logger))
}
