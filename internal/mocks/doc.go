// Package mocks provides function-field fakes of the service interfaces for
// handler and middleware tests.
//
// Each mock has one XxxFn field per interface method. Calling a method whose
// field is nil returns the zero value and ErrNotConfigured, so a test fails
// loudly when it reaches an unexpected dependency.
//
//	tasks := &mocks.MockTaskService{
//	    GetTaskFn: func(ctx context.Context, actor *domain.Employee, id uuid.UUID) (*domain.TaskInstance, error) {
//	        return task, nil
//	    },
//	}
package mocks

import "errors"

// ErrNotConfigured is returned by a mock method whose function field is nil.
var ErrNotConfigured = errors.New("mock method not configured")
