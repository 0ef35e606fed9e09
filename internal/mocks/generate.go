// Package mocks provides mock implementations for testing the e-invoice
// transmission system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core ports. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockProvider := mocks.NewMockProvider(ctrl)
//	mockProvider.EXPECT().Submit(gomock.Any(), gomock.Any()).Return("tx-1", nil)
package mocks

// Generate mock for Provider interface from internal/core package.
// This creates MockProvider with methods for all Provider interface methods:
// Submit, Status
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=provider_mock.go github.com/sergejparity/e-invoice/internal/core Provider

// Generate mock for AuditRecorder interface from internal/core package.
// This creates MockAuditRecorder with methods for all AuditRecorder interface methods:
// Record
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=audit_recorder_mock.go github.com/sergejparity/e-invoice/internal/core AuditRecorder
