package mylog

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var standardBackend = newStandardBackend()

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newStandardLogger
	}
}

func newStandardBackend() *logrus.Logger {
	backend := logrus.New()
	backend.SetOutput(os.Stderr)
	backend.SetLevel(logrus.DebugLevel)
	backend.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return backend
}

type standardLogger struct {
	componentName string
	backend       *logrus.Logger
}

func newStandardLogger(componentName string) Logger {
	return standardLogger{
		componentName: componentName,
		backend:       standardBackend,
	}
}

func (l standardLogger) Log(c context.Context, traceLabel string, severity Severity, format string, a ...any) {
	l.backend.WithFields(logrus.Fields{
		"component": l.componentName,
		"label":     traceLabel,
	}).Log(toLogrusLevel(severity), fmt.Sprintf(format, a...))
}

func toLogrusLevel(severity Severity) logrus.Level {
	switch severity {
	case SeverityDebug:
		return logrus.DebugLevel
	case SeverityWarn:
		return logrus.WarnLevel
	case SeverityError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
