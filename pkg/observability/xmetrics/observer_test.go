package xmetrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omeyang/xttl/pkg/observability/xmetrics"
)

type nilObserver struct{}

func (nilObserver) Start(context.Context, xmetrics.SpanOptions) (context.Context, xmetrics.Span) {
	return nil, nil
}

func TestStart_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		obs  xmetrics.Observer
	}{
		{"nil observer", nil},
		{"noop observer", xmetrics.NoopObserver{}},
		{"observer returning nils", nilObserver{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			//nolint:staticcheck // 验证 nil ctx 兜底
			ctx, span := xmetrics.Start(nil, tt.obs, xmetrics.SpanOptions{})
			assert.NotNil(t, ctx)
			assert.NotNil(t, span)
			assert.NotPanics(t, func() { span.End(xmetrics.Result{}) })
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Internal", xmetrics.KindInternal.String())
	assert.Equal(t, "Client", xmetrics.KindClient.String())
	assert.Equal(t, "Kind(9)", xmetrics.Kind(9).String())
}
