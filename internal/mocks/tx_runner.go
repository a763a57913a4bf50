package mocks

import (
	"context"

	"github.com/efme/efme-api/internal/store"
)

// MockTxRunner implements store.TxRunner without a database. By default
// the transactional body runs against a nil transaction, which the mock
// stores accept because their WithTx ignores it.
type MockTxRunner struct {
	// RunTxFn overrides the default behavior
	RunTxFn func(ctx context.Context, fn store.TxFn) error
}

// NewMockTxRunner creates a MockTxRunner with default behavior.
func NewMockTxRunner() *MockTxRunner {
	return &MockTxRunner{}
}

// RunTx implements the store.TxRunner interface.
func (m *MockTxRunner) RunTx(ctx context.Context, fn store.TxFn) error {
	if m.RunTxFn != nil {
		return m.RunTxFn(ctx, fn)
	}
	return fn(ctx, nil)
}

// Verify interface compliance at compile time.
var _ store.TxRunner = (*MockTxRunner)(nil)
