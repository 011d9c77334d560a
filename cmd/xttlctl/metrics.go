package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

// sessionMetrics 在进程内收集缓存的操作指标，由 stats 命令按需读取。
type sessionMetrics struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	observer xmetrics.Observer
}

func newSessionMetrics() (*sessionMetrics, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	obs, err := xmetrics.NewOTelObserver(
		xmetrics.WithInstrumentationName("xttlctl"),
		xmetrics.WithMeterProvider(provider),
	)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("create observer: %w", err)
	}
	return &sessionMetrics{reader: reader, provider: provider, observer: obs}, nil
}

// Shutdown 释放 MeterProvider。
func (m *sessionMetrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

type opStats struct {
	count uint64
	sum   float64
}

// Report 按 operation/status 汇总调用次数与平均耗时，每行一项，按名称排序。
func (m *sessionMetrics) Report(ctx context.Context) (string, error) {
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return "", fmt.Errorf("collect metrics: %w", err)
	}

	rows := make(map[string]*opStats)
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != xmetrics.MetricOperationDuration {
				continue
			}
			hist, ok := md.Data.(metricdata.Histogram[float64])
			if !ok {
				continue
			}
			for _, dp := range hist.DataPoints {
				op, _ := dp.Attributes.Value("operation")
				st, _ := dp.Attributes.Value("status")
				name := op.AsString() + "/" + st.AsString()
				r := rows[name]
				if r == nil {
					r = &opStats{}
					rows[name] = r
				}
				r.count += dp.Count
				r.sum += dp.Sum
			}
		}
	}
	if len(rows) == 0 {
		return "(empty)", nil
	}

	names := make([]string, 0, len(rows))
	for name := range rows {
		names = append(names, name)
	}
	slices.Sort(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		r := rows[name]
		avg := time.Duration(r.sum / float64(r.count) * float64(time.Second))
		lines = append(lines, fmt.Sprintf("%s count=%d avg=%s", name, r.count, avg))
	}
	return strings.Join(lines, "\n"), nil
}
