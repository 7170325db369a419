// Package observability provides OpenTelemetry tracing and metrics
// integration for the interview service.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("interviewd"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanQuestionGenerate)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("interviewd"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("interviewd"))
//	metrics.RecordAdapterCall(ctx, "openai", "complete", "ok", duration)
//
// Health Checks:
//
//	health := observability.NewServiceHealth("interviewd", "1.0.0")
//	health.AddComponent(observability.ProviderHealth("llm", provider.IsAvailable(ctx)))
package observability
