//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are invoked via `go run` or installed globally and are not
// tracked in go.mod since they are development tools, not runtime
// dependencies.
package tools

// Development tools:
//
// mockgen - generates the gomock doubles under internal/mocks
//   Invoke: go generate ./internal/mocks
//   Version: v0.6.0 (pinned in the //go:generate directives)
//   Docs: https://github.com/uber-go/mock
