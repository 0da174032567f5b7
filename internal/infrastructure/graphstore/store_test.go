package graphstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"datagraph-backend/internal/infrastructure/graphstore"
	"datagraph-backend/internal/infrastructure/graphstore/mocks"
	"datagraph-backend/internal/infrastructure/observability"
)

func TestRecordAccessors(t *testing.T) {
	rec := graphstore.Record{
		"name":   "cats",
		"count":  int64(3),
		"props":  map[string]interface{}{"url": "x"},
		"labels": []interface{}{"Dataset", 7},
		"nil":    nil,
	}

	assert.Equal(t, "cats", rec.String("name"))
	assert.Equal(t, "", rec.String("count"))
	assert.Equal(t, int64(3), rec.Int("count"))
	assert.Equal(t, map[string]interface{}{"url": "x"}, rec.Map("props"))
	assert.Equal(t, []string{"Dataset"}, rec.Strings("labels"))
	assert.Nil(t, rec.OptionalString("nil"))
	require.NotNil(t, rec.OptionalString("name"))
	assert.Equal(t, "cats", *rec.OptionalString("name"))
}

func TestCircuitBreakerStore_OpensAfterFailures(t *testing.T) {
	inner := new(mocks.MockStore)
	boom := errors.New("connection refused")
	inner.On("Read", mock.Anything, "MATCH (n) RETURN n", mock.Anything).Return(nil, boom)

	var states []gobreaker.State
	cfg := graphstore.BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	store := graphstore.NewCircuitBreakerStore(inner, cfg, zap.NewNop(), func(_ string, s gobreaker.State) {
		states = append(states, s)
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := store.Read(ctx, "MATCH (n) RETURN n", nil)
		assert.ErrorIs(t, err, boom)
	}

	_, err := store.Read(ctx, "MATCH (n) RETURN n", nil)
	assert.ErrorIs(t, err, graphstore.ErrUnavailable)
	assert.Equal(t, gobreaker.StateOpen, store.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, states)
	inner.AssertNumberOfCalls(t, "Read", 2)
}

func TestCircuitBreakerStore_CanceledDoesNotTrip(t *testing.T) {
	inner := new(mocks.MockStore)
	inner.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled)

	cfg := graphstore.DefaultBreakerConfig()
	cfg.MinRequests = 1
	store := graphstore.NewCircuitBreakerStore(inner, cfg, zap.NewNop(), nil)

	for i := 0; i < 3; i++ {
		_, err := store.Write(context.Background(), "MERGE (n)", nil)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestInstrumentedStore_RecordsMetrics(t *testing.T) {
	inner := new(mocks.MockStore)
	inner.On("Read", mock.Anything, "MATCH (c:Category) RETURN c", mock.Anything).
		Return([]graphstore.Record{{"c": "x"}}, nil)
	inner.On("Write", mock.Anything, "MERGE (c:Category)", mock.Anything).
		Return(nil, errors.New("boom"))

	collector := observability.NewCollector("test")
	store := graphstore.NewInstrumentedStore(inner, collector, zap.NewNop())

	records, err := store.Read(context.Background(), "MATCH (c:Category) RETURN c", nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = store.Write(context.Background(), "MERGE (c:Category)", nil)
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StoreOperations.WithLabelValues("read", "MATCH", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StoreOperations.WithLabelValues("write", "MERGE", "error")))
}
