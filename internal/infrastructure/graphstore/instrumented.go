package graphstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"datagraph-backend/internal/infrastructure/observability"
)

const tracerName = "datagraph-backend/graphstore"

// InstrumentedStore records a span, metrics and a debug log line for every
// statement. collector may be nil.
type InstrumentedStore struct {
	next      Store
	collector *observability.Collector
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewInstrumentedStore wraps next.
func NewInstrumentedStore(next Store, collector *observability.Collector, logger *zap.Logger) *InstrumentedStore {
	return &InstrumentedStore{
		next:      next,
		collector: collector,
		logger:    logger.Named("graphstore"),
		tracer:    otel.Tracer(tracerName),
	}
}

// Read implements Store.
func (s *InstrumentedStore) Read(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error) {
	return s.observe(ctx, "read", cypher, params, s.next.Read)
}

// Write implements Store.
func (s *InstrumentedStore) Write(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error) {
	return s.observe(ctx, "write", cypher, params, s.next.Write)
}

// Ping implements Store.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "graphstore.ping", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	err := s.next.Ping(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Close implements Store.
func (s *InstrumentedStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}

type runFunc func(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error)

func (s *InstrumentedStore) observe(ctx context.Context, mode, cypher string, params map[string]interface{}, run runFunc) ([]Record, error) {
	op := operationName(cypher)

	ctx, span := s.tracer.Start(ctx, "graphstore."+mode,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "neo4j"),
			attribute.String("db.operation", op),
			attribute.Int("db.params", len(params)),
		),
	)
	defer span.End()

	start := time.Now()
	records, err := run(ctx, cypher, params)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("statement failed",
			zap.String("mode", mode),
			zap.String("operation", op),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
	} else {
		span.SetAttributes(attribute.Int("db.records", len(records)))
		s.logger.Debug("statement executed",
			zap.String("mode", mode),
			zap.String("operation", op),
			zap.Int("records", len(records)),
			zap.Duration("duration", elapsed),
		)
	}

	if s.collector != nil {
		s.collector.StoreOperations.WithLabelValues(mode, op, status).Inc()
		s.collector.StoreDuration.WithLabelValues(mode, op).Observe(elapsed.Seconds())
	}

	return records, err
}
