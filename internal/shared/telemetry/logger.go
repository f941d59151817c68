package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// Options controls how Setup builds the default logger.
type Options struct {
	ServiceName string
	Production  bool
	Debug       bool
	// OTLP routes records to the global OTel logger provider instead of stdout.
	OTLP   bool
	Output io.Writer
}

// Setup installs the process-wide slog logger.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch {
	case opts.Production && opts.OTLP:
		handler = otelslog.NewHandler(
			opts.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	case opts.Production:
		handler = NewTraceHandler(slog.NewJSONHandler(out, hopts))
	default:
		handler = NewTraceHandler(slog.NewTextHandler(out, hopts))
	}
	slog.SetDefault(slog.New(handler))
}

// TraceHandler decorates records with the active trace and span IDs.
type TraceHandler struct {
	slog.Handler
}

// NewTraceHandler wraps h.
func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

// Info writes an info-level log line with the given fields.
func Info(ctx context.Context, msg string, fields map[string]any) {
	write(ctx, slog.LevelInfo, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(ctx context.Context, msg string, fields map[string]any) {
	write(ctx, slog.LevelWarn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(ctx context.Context, msg string, fields map[string]any) {
	write(ctx, slog.LevelError, msg, fields)
}

func write(ctx context.Context, level slog.Level, msg string, fields map[string]any) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.Default()
	if !logger.Enabled(ctx, level) {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		attrs = append(attrs, slog.Any(k, v))
	}
	logger.LogAttrs(ctx, level, msg, attrs...)
}
