package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/ttdproj/internal/log"
)

func TestCtxWithValues(t *testing.T) {
	tests := map[string]struct {
		ctx       func() context.Context
		values    log.Kv
		expValues log.Kv
	}{
		"Without previous values, the values should be set.": {
			ctx:       context.Background,
			values:    log.Kv{"a": 1},
			expValues: log.Kv{"a": 1},
		},
		"With previous values, the values should be merged and overridden.": {
			ctx: func() context.Context {
				return log.CtxWithValues(context.Background(), log.Kv{"a": 1, "b": 2})
			},
			values:    log.Kv{"b": 3, "c": 4},
			expValues: log.Kv{"a": 1, "b": 3, "c": 4},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := log.CtxWithValues(test.ctx(), test.values)
			assert.Equal(t, test.expValues, log.ValuesFromCtx(ctx))
		})
	}
}

func TestValuesFromCtxEmpty(t *testing.T) {
	assert.Equal(t, log.Kv{}, log.ValuesFromCtx(context.Background()))
}

func TestNoopKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, log.Noop.SetValuesOnCtx(ctx, log.Kv{"a": 1}))
	assert.Equal(t, log.Noop, log.Noop.WithValues(log.Kv{"a": 1}))
}
