package graphstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jConfig holds the connection settings for Neo4jStore.
type Neo4jConfig struct {
	URI            string
	Username       string
	Password       string
	Database       string
	MaxPoolSize    int
	AcquireTimeout time.Duration
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// Neo4jStore implements Store on top of the official Neo4j driver.
type Neo4jStore struct {
	driver       neo4j.DriverWithContext
	database     string
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewNeo4jStore creates the driver. It does not contact the server; call Ping
// to fail fast on bad credentials or an unreachable URI.
//
// Statements are never retried. A failed call surfaces its error to the
// caller as soon as it happens.
func NewNeo4jStore(cfg Neo4jConfig, logger *zap.Logger) (*Neo4jStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxTransactionRetryTime = 0
			if cfg.MaxPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxPoolSize
			}
			if cfg.AcquireTimeout > 0 {
				c.ConnectionAcquisitionTimeout = cfg.AcquireTimeout
			}
			if cfg.ConnectTimeout > 0 {
				c.SocketConnectTimeout = cfg.ConnectTimeout
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	return &Neo4jStore{
		driver:       driver,
		database:     cfg.Database,
		queryTimeout: cfg.QueryTimeout,
		logger:       logger.Named("neo4j"),
	}, nil
}

// Read implements Store.
func (s *Neo4jStore) Read(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error) {
	return s.run(ctx, neo4j.AccessModeRead, cypher, params)
}

// Write implements Store.
func (s *Neo4jStore) Write(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error) {
	return s.run(ctx, neo4j.AccessModeWrite, cypher, params)
}

// Ping implements Store.
func (s *Neo4jStore) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j connectivity: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) run(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]interface{}) ([]Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
	defer func() {
		if err := session.Close(ctx); err != nil {
			s.logger.Warn("failed to close session", zap.Error(err))
		}
	}()

	var txConfig []func(*neo4j.TransactionConfig)
	if s.queryTimeout > 0 {
		txConfig = append(txConfig, neo4j.WithTxTimeout(s.queryTimeout))
	}

	label := "read"
	if mode == neo4j.AccessModeWrite {
		label = "write"
	}

	// Auto-commit: one attempt per statement.
	result, err := session.Run(ctx, cypher, params, txConfig...)
	if err != nil {
		return nil, wrapQueryError(label, err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, wrapQueryError(label, err)
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, convertRecord(rec))
	}
	return out, nil
}

func convertRecord(rec *neo4j.Record) Record {
	out := make(Record, len(rec.Keys))
	for i, key := range rec.Keys {
		out[key] = convertValue(rec.Values[i])
	}
	return out
}

// convertValue maps driver types onto plain Go values so callers never import
// the driver.
func convertValue(v any) any {
	switch val := v.(type) {
	case neo4j.Node:
		return convertMap(val.Props)
	case neo4j.Relationship:
		return convertMap(val.Props)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convertValue(item)
		}
		return out
	case map[string]any:
		return convertMap(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return v
	}
}

func convertMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = convertValue(v)
	}
	return out
}
