// Package glog is the ambient structured logger used throughout this
// module. It intentionally has a much smaller surface than a full
// zap/zerolog installation: a level, a message, and a set of fields.
package glog

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// Fields represents structured log fields attached to a log entry. A nil
// Fields map is treated the same as an empty one.
type Fields map[string]any

// StructuredLogger is the minimal logging interface the rest of this
// module depends on. Implementations can wrap any real backend; the
// console logger below is the only one this module ships.
type StructuredLogger interface {
	WithFields(fields Fields) StructuredLogger

	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)

	DebugCtx(ctx context.Context, msg string, fields Fields)
	InfoCtx(ctx context.Context, msg string, fields Fields)
	WarnCtx(ctx context.Context, msg string, fields Fields)
	ErrorCtx(ctx context.Context, msg string, fields Fields)
}

type traceIDKey struct{}

// ContextWithTraceID attaches a trace ID that *Ctx log calls will surface
// as a field automatically.
func ContextWithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

func traceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// consoleLogger writes level-tagged, field-annotated lines to a
// stdlib *log.Logger. debug gates Debug/DebugCtx output.
type consoleLogger struct {
	out    *log.Logger
	fields Fields
	debug  bool
}

// New returns a StructuredLogger that writes to os.Stderr. debug enables
// Debug-level output.
func New(debug bool) StructuredLogger {
	return &consoleLogger{
		out:   log.New(os.Stderr, "", log.LstdFlags),
		debug: debug,
	}
}

func (l *consoleLogger) WithFields(fields Fields) StructuredLogger {
	return &consoleLogger{out: l.out, debug: l.debug, fields: mergeFields(l.fields, fields)}
}

func (l *consoleLogger) Debug(msg string, fields Fields) {
	if !l.debug {
		return
	}
	l.log("DEBUG", msg, fields)
}
func (l *consoleLogger) Info(msg string, fields Fields)  { l.log("INFO", msg, fields) }
func (l *consoleLogger) Warn(msg string, fields Fields)  { l.log("WARN", msg, fields) }
func (l *consoleLogger) Error(msg string, fields Fields) { l.log("ERROR", msg, fields) }

func (l *consoleLogger) DebugCtx(ctx context.Context, msg string, fields Fields) {
	if !l.debug {
		return
	}
	l.logCtx(ctx, "DEBUG", msg, fields)
}
func (l *consoleLogger) InfoCtx(ctx context.Context, msg string, fields Fields) {
	l.logCtx(ctx, "INFO", msg, fields)
}
func (l *consoleLogger) WarnCtx(ctx context.Context, msg string, fields Fields) {
	l.logCtx(ctx, "WARN", msg, fields)
}
func (l *consoleLogger) ErrorCtx(ctx context.Context, msg string, fields Fields) {
	l.logCtx(ctx, "ERROR", msg, fields)
}

func (l *consoleLogger) log(level, msg string, fields Fields) {
	l.out.Print(formatLine(level, msg, mergeFields(l.fields, fields)))
}

func (l *consoleLogger) logCtx(ctx context.Context, level, msg string, fields Fields) {
	combined := mergeFields(l.fields, fields)
	if id := traceIDFromContext(ctx); id != "" {
		combined["trace_id"] = id
	}
	l.out.Print(formatLine(level, msg, combined))
}

func mergeFields(a, b Fields) Fields {
	merged := make(Fields, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}

func formatLine(level, msg string, fields Fields) string {
	if len(fields) == 0 {
		return fmt.Sprintf("[%s] %s", level, msg)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return fmt.Sprintf("[%s] %s %s", level, msg, strings.Join(parts, " "))
}
