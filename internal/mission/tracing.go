// Tracing instrumentation for mission runs.
package mission

import (
	"context"
	"fmt"

	"github.com/vinayprograms/agentkit/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// startMissionSpan starts the root span for a mission run.
func (c *Controller) startMissionSpan(ctx context.Context, goal string) (context.Context, trace.Span) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.StartSpan(ctx, "mission.run")
	span.SetAttributes(
		attribute.String("mission.id", c.id),
		attribute.String("mission.identity", c.ident.Name),
		attribute.String("mission.goal", truncate(goal, 500)),
		attribute.String("mission.context", c.strategy.Context.String()),
	)
	return ctx, span
}

// endMissionSpan ends the root span with outcome info.
func (c *Controller) endMissionSpan(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String("mission.status", status))
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// startIterationSpan starts a span for one loop iteration.
func (c *Controller) startIterationSpan(ctx context.Context, iteration int) (context.Context, trace.Span) {
	tracer := telemetry.GetTracer()
	ctx, span := tracer.StartSpan(ctx, fmt.Sprintf("mission.iteration.%d", iteration))
	span.SetAttributes(attribute.Int("iteration.number", iteration))
	return ctx, span
}
