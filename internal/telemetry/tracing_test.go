package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartSpan(t *testing.T) {
	t.Run("creates a span with the given name", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		_, span := StartSpan(context.Background(), "test-operation")
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Name != "test-operation" {
			t.Errorf("expected span name test-operation, got %s", spans[0].Name)
		}
	})

	t.Run("child spans share the trace id", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx, parent := StartSpan(context.Background(), "parent")
		_, child := StartSpan(ctx, "child")
		child.End()
		parent.End()

		spans := exp.GetSpans()
		if len(spans) != 2 {
			t.Fatalf("expected 2 spans, got %d", len(spans))
		}
		if spans[0].SpanContext.TraceID() != spans[1].SpanContext.TraceID() {
			t.Error("expected parent and child to share a trace id")
		}
	})
}

func TestAddSpanAttributes(t *testing.T) {
	t.Run("attaches attributes", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		_, span := StartSpan(context.Background(), "attrs")
		AddSpanAttributes(span, attribute.Int64("order.id", 42))
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		found := false
		for _, attr := range spans[0].Attributes {
			if attr.Key == "order.id" && attr.Value.AsInt64() == 42 {
				found = true
			}
		}
		if !found {
			t.Errorf("expected order.id attribute, got %v", spans[0].Attributes)
		}
	})

	t.Run("nil span is a no-op", func(t *testing.T) {
		AddSpanAttributes(nil, attribute.String("k", "v"))
	})
}

func TestRecordSpanError(t *testing.T) {
	t.Run("marks the span as failed", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		_, span := StartSpan(context.Background(), "failing")
		RecordSpanError(span, errors.New("boom"))
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Status.Code != codes.Error {
			t.Errorf("expected error status, got %v", spans[0].Status.Code)
		}
		if len(spans[0].Events) == 0 {
			t.Error("expected a recorded error event")
		}
	})

	t.Run("nil error is a no-op", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		_, span := StartSpan(context.Background(), "clean")
		RecordSpanError(span, nil)
		span.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code == codes.Error {
			t.Error("expected span status to stay unset")
		}
	})
}

func TestSetSpanSuccess(t *testing.T) {
	exp, cleanup := setupTracerProvider(t)
	defer cleanup()

	_, span := StartSpan(context.Background(), "ok")
	SetSpanSuccess(span)
	span.End()

	spans := exp.GetSpans()
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected ok status, got %v", spans[0].Status.Code)
	}
}

func TestTraceAndSpanIDs(t *testing.T) {
	t.Run("returns ids from an active span", func(t *testing.T) {
		_, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx, span := StartSpan(context.Background(), "ids")
		defer span.End()

		if TraceID(ctx) == "" {
			t.Error("expected non-empty trace id")
		}
		if SpanID(ctx) == "" {
			t.Error("expected non-empty span id")
		}
	})

	t.Run("returns empty strings without a span", func(t *testing.T) {
		ctx := context.Background()
		if TraceID(ctx) != "" || SpanID(ctx) != "" {
			t.Error("expected empty ids without an active span")
		}
	})
}
