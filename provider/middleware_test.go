package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/gokv/errors"
	"github.com/kbukum/gokv/logger"
	"github.com/kbukum/gokv/observability"
	"github.com/kbukum/gokv/provider"
)

type namedInput string

func (n namedInput) OperationName() string { return strings.ToUpper(string(n)) }

func echo() provider.RequestResponse[namedInput, string] {
	return provider.Func("echo", func(_ context.Context, in namedInput) (string, error) {
		if in == "fail" {
			return "", errors.RemoteProtocol("FAIL", "boom")
		}
		if in == "cancel" {
			return "", errors.Cancelled(context.Canceled)
		}
		return "echo:" + string(in), nil
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(tag string) provider.Middleware[namedInput, string] {
		return func(inner provider.RequestResponse[namedInput, string]) provider.RequestResponse[namedInput, string] {
			return provider.Func(inner.Name(), func(ctx context.Context, in namedInput) (string, error) {
				order = append(order, tag+":in")
				out, err := inner.Execute(ctx, in)
				order = append(order, tag+":out")
				return out, err
			})
		}
	}

	wrapped := provider.Chain(mw("A"), nil, mw("B"))(echo())
	if _, err := wrapped.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	want := "A:in,B:in,B:out,A:out"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestChain_Empty(t *testing.T) {
	wrapped := provider.Chain[namedInput, string]()(echo())
	got, err := wrapped.Execute(context.Background(), "hi")
	if err != nil || got != "echo:hi" || wrapped.Name() != "echo" {
		t.Fatalf("unexpected result %q err=%v name=%s", got, err, wrapped.Name())
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", "test")
	wrapped := provider.WithLogging[namedInput, string](log)(echo())

	_, _ = wrapped.Execute(context.Background(), "hget")
	_, err := wrapped.Execute(context.Background(), "fail")
	if !errors.IsRemoteProtocol(err) {
		t.Fatalf("error must pass through unchanged, got %v", err)
	}
	_, _ = wrapped.Execute(context.Background(), "cancel")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %s", len(lines), buf.String())
	}
	var entries []map[string]interface{}
	for _, line := range lines {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatal(err)
		}
		entries = append(entries, m)
	}

	if entries[0]["level"] != "debug" || entries[0][logger.FieldOperation] != "HGET" {
		t.Errorf("unexpected success entry %v", entries[0])
	}
	if entries[1]["level"] != "warn" || entries[1]["code"] != "REMOTE_PROTOCOL_ERROR" {
		t.Errorf("unexpected failure entry %v", entries[1])
	}
	if entries[2]["level"] != "debug" {
		t.Errorf("cancellation should log at debug, got %v", entries[2])
	}
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	wrapped := provider.WithTracing[namedInput, string]("redis")(echo())
	_, _ = wrapped.Execute(context.Background(), "hscan")
	_, _ = wrapped.Execute(context.Background(), "fail")

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "HSCAN" {
		t.Errorf("expected span named HSCAN, got %s", spans[0].Name)
	}
	if len(spans[1].Events) == 0 {
		t.Error("expected recorded error event on failing span")
	}
	var code string
	for _, kv := range spans[1].Attributes {
		if string(kv.Key) == observability.AttrErrorCode {
			code = kv.Value.AsString()
		}
	}
	if code != "REMOTE_PROTOCOL_ERROR" {
		t.Errorf("expected error.code attribute, got %q", code)
	}
}

func TestWithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewCommandMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	wrapped := provider.WithMetrics[namedInput, string](metrics)(echo())
	_, _ = wrapped.Execute(context.Background(), "hget")
	_, _ = wrapped.Execute(context.Background(), "fail")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var total, errs int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case "gokv.command.total":
					total += dp.Value
				case "gokv.error.total":
					errs += dp.Value
				}
			}
		}
	}
	if total != 2 || errs != 1 {
		t.Errorf("expected total=2 errors=1, got total=%d errors=%d", total, errs)
	}
}

func TestWithMetrics_NilIsPassthrough(t *testing.T) {
	p := echo()
	if provider.WithMetrics[namedInput, string](nil)(p) != p {
		t.Error("nil metrics should return the provider unchanged")
	}
}

func TestDrain(t *testing.T) {
	it := &sliceIterator{items: []int{1, 2, 3}}
	got, err := provider.Drain[int](context.Background(), it)
	if err != nil || len(got) != 3 || !it.closed {
		t.Fatalf("unexpected drain result %v err=%v closed=%v", got, err, it.closed)
	}
}

type sliceIterator struct {
	items  []int
	closed bool
}

func (s *sliceIterator) Next(context.Context) (int, bool, error) {
	if len(s.items) == 0 {
		return 0, false, nil
	}
	v := s.items[0]
	s.items = s.items[1:]
	return v, true, nil
}

func (s *sliceIterator) Close() error { s.closed = true; return nil }
