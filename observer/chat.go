package observer

import (
	"context"
	"time"

	"github.com/rahadian/sift"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedChat wraps a sift.ChatModel with OTEL instrumentation.
type ObservedChat struct {
	inner sift.ChatModel
	inst  *Instruments
	model string
}

// WrapChat returns an instrumented chat model that emits traces, metrics, and logs.
func WrapChat(inner sift.ChatModel, model string, inst *Instruments) *ObservedChat {
	return &ObservedChat{inner: inner, inst: inst, model: model}
}

var _ sift.ChatModel = (*ObservedChat)(nil)

func (o *ObservedChat) Name() string { return o.inner.Name() }

func (o *ObservedChat) Complete(ctx context.Context, req sift.CompletionRequest) (sift.CompletionResponse, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		AttrLLMModel.String(o.model),
		AttrLLMProvider.String(o.inner.Name()),
	))
	defer span.End()
	start := time.Now()

	resp, err := o.inner.Complete(ctx, req)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	o.record(ctx, span, status, durationMs, resp.Usage)
	return resp, err
}

func (o *ObservedChat) record(ctx context.Context, span trace.Span, status string, durationMs float64, usage sift.Usage) {
	cost := o.inst.Cost.Calculate(o.model, usage.InputTokens, usage.OutputTokens)

	attrs := metric.WithAttributes(
		AttrLLMModel.String(o.model),
		AttrLLMProvider.String(o.inner.Name()),
		AttrLLMMethod.String("complete"),
	)

	span.SetAttributes(
		AttrTokensInput.Int(usage.InputTokens),
		AttrTokensOutput.Int(usage.OutputTokens),
		AttrCostUSD.Float64(cost),
	)

	o.inst.TokenUsage.Add(ctx, int64(usage.InputTokens), metric.WithAttributes(
		AttrLLMModel.String(o.model),
		AttrLLMProvider.String(o.inner.Name()),
		attribute.String("direction", "input"),
	))
	o.inst.TokenUsage.Add(ctx, int64(usage.OutputTokens), metric.WithAttributes(
		AttrLLMModel.String(o.model),
		AttrLLMProvider.String(o.inner.Name()),
		attribute.String("direction", "output"),
	))
	o.inst.CostTotal.Add(ctx, cost, attrs)
	o.inst.LLMRequests.Add(ctx, 1, metric.WithAttributes(
		AttrLLMModel.String(o.model),
		AttrLLMProvider.String(o.inner.Name()),
		AttrLLMMethod.String("complete"),
		attribute.String("status", status),
	))
	o.inst.LLMDuration.Record(ctx, durationMs, attrs)

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("llm call completed"))
	rec.AddAttributes(
		otellog.String("llm.model", o.model),
		otellog.String("llm.provider", o.inner.Name()),
		otellog.Int("llm.tokens.input", usage.InputTokens),
		otellog.Int("llm.tokens.output", usage.OutputTokens),
		otellog.Float64("llm.cost_usd", cost),
		otellog.Float64("llm.duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)
}
