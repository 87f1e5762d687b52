package observer

import (
	"context"
	"time"

	"github.com/rahadian/sift"

	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
)

// ObservedAnswerer wraps any Answerer to emit per-question telemetry. The
// wrapper creates a parent span for each Answer call; retrieval and LLM
// operations inside the pipeline appear as child spans via context
// propagation.
type ObservedAnswerer struct {
	inner sift.Answerer
	inst  *Instruments
}

// WrapAnswerer returns an instrumented Answerer.
func WrapAnswerer(inner sift.Answerer, inst *Instruments) *ObservedAnswerer {
	return &ObservedAnswerer{inner: inner, inst: inst}
}

var _ sift.Answerer = (*ObservedAnswerer)(nil)

// Answer wraps the inner Answer call with a qa.answer span. Degraded
// answers mark the span as errored but are still returned unchanged; the
// pipeline's lenient contract is the wrapper's contract too.
func (o *ObservedAnswerer) Answer(ctx context.Context, question string) sift.Answer {
	ctx, span := o.inst.Tracer.Start(ctx, "qa.answer")
	defer span.End()
	start := time.Now()

	ans := o.inner.Answer(ctx, question)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	severity := otellog.SeverityInfo
	if ans.Degraded() {
		status = "degraded"
		severity = otellog.SeverityWarn
		span.SetAttributes(AttrQAReason.String(ans.Reason))
		span.SetStatus(codes.Error, ans.Reason)
	}
	span.SetAttributes(AttrQAStatus.String(status))

	attrs := metric.WithAttributes(AttrQAStatus.String(status))
	o.inst.QAAnswers.Add(ctx, 1, attrs)
	o.inst.QADuration.Record(ctx, durationMs, attrs)

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(severity)
	rec.SetBody(otellog.StringValue("question answered"))
	rec.AddAttributes(
		otellog.String("qa.status", status),
		otellog.Float64("qa.duration_ms", durationMs),
	)
	if ans.Degraded() {
		rec.AddAttributes(otellog.String("qa.degraded_reason", ans.Reason))
	}
	o.inst.Logger.Emit(ctx, rec)

	return ans
}
