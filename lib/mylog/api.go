package mylog

import "context"

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// New creates a logger for the named component. The backend is selected at init-time based on the environment.
var New func(componentName string) Logger

type Logger interface {
	Log(c context.Context, traceLabel string, severity Severity, format string, a ...any)
}
