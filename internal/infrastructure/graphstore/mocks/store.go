// Package mocks provides a testify mock of graphstore.Store.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"datagraph-backend/internal/infrastructure/graphstore"
)

// MockStore is a mock implementation of graphstore.Store.
type MockStore struct {
	mock.Mock
}

// Read mocks graphstore.Store.Read.
func (m *MockStore) Read(ctx context.Context, cypher string, params map[string]interface{}) ([]graphstore.Record, error) {
	args := m.Called(ctx, cypher, params)
	records, _ := args.Get(0).([]graphstore.Record)
	return records, args.Error(1)
}

// Write mocks graphstore.Store.Write.
func (m *MockStore) Write(ctx context.Context, cypher string, params map[string]interface{}) ([]graphstore.Record, error) {
	args := m.Called(ctx, cypher, params)
	records, _ := args.Get(0).([]graphstore.Record)
	return records, args.Error(1)
}

// Ping mocks graphstore.Store.Ping.
func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks graphstore.Store.Close.
func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
