package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/subscriptions/internal/logger"
	"github.com/flexprice/subscriptions/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

type mockTxKey struct{}

// MockPostgresClient serialises transactions so that read-modify-write
// sequences behave as they would under row locks. It does not roll back.
type MockPostgresClient struct {
	mu     sync.Mutex
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{logger: logger}
}

// WithTx executes fn while holding the client lock. Nested calls join the outer one.
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(mockTxKey{}) != nil {
		return fn(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(context.WithValue(ctx, mockTxKey{}, true))
}
