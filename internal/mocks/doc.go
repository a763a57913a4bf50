// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of the store and service
// interfaces used throughout the application, facilitating consistent
// testing across packages. Each mock exposes per-method function fields
// that override the default in-memory behavior, so a test overrides only
// what it cares about:
//
//	mockTasks := mocks.NewMockTaskStore()
//	mockTasks.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
//	    return nil, store.ErrTaskNotFound
//	}
//
// The default implementations of the task and postponement mocks honor
// the conditional-update semantics of their real counterparts under a
// mutex, so concurrency tests exercise the same single-winner behavior
// the database enforces.
package mocks
