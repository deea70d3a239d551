package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is the context key for the Cloud Trace id of the current request (used by mylog)
type CtxTraceContext struct{}

// ContextFromHTTPRequest derives a context that survives the request, carrying only the trace id.
func ContextFromHTTPRequest(r *http.Request) context.Context {
	return WithTrace(context.Background(), traceFromHeader(r.Header.Get("X-Cloud-Trace-Context")))
}

func WithTrace(c context.Context, trace string) context.Context {
	return context.WithValue(c, CtxTraceContext{}, trace)
}

func TraceFromContext(c context.Context) string {
	trace, ok := c.Value(CtxTraceContext{}).(string)
	if !ok {
		return ""
	}
	return trace
}

func traceFromHeader(header string) string {
	traceID, _, _ := strings.Cut(header, "/")
	if traceID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", os.Getenv("GOOGLE_CLOUD_PROJECT"), traceID)
}
