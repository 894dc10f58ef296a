package database

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingHook is a go-redis hook that wraps every command in a client span.
// A cache miss (redis.Nil) is not an error.
type TracingHook struct {
	tracer trace.Tracer
	addr   string
}

// NewTracingHook creates a hook using the global tracer provider.
func NewTracingHook(addr string) *TracingHook {
	return &TracingHook{
		tracer: otel.Tracer("statspulse/redis"),
		addr:   addr,
	}
}

func (h *TracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		ctx, span := h.tracer.Start(ctx, "redis.dial", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		conn, err := next(ctx, network, addr)
		RecordDatabaseError(span, err)
		return conn, err
	}
}

func (h *TracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		ctx, span := h.tracer.Start(ctx, "redis."+strings.ToLower(cmd.Name()),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", "redis"),
				attribute.String("db.operation", cmd.Name()),
				attribute.String("server.address", h.addr),
			),
		)
		defer span.End()

		err := next(ctx, cmd)
		RecordDatabaseError(span, err)
		return err
	}
}

func (h *TracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		ctx, span := h.tracer.Start(ctx, "redis.pipeline",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", "redis"),
				attribute.Int("db.redis.num_cmd", len(cmds)),
				attribute.String("server.address", h.addr),
			),
		)
		defer span.End()

		err := next(ctx, cmds)
		RecordDatabaseError(span, err)
		return err
	}
}

// RecordDatabaseError marks span as failed unless err is nil or a miss.
func RecordDatabaseError(span trace.Span, err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
