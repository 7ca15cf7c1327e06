package server

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/curve"
	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
)

// Error type constants for classification
const (
	ErrTypeNetwork    = "network"
	ErrTypeTimeout    = "timeout"
	ErrTypeLLM        = "llm"
	ErrTypeDatabase   = "database"
	ErrTypeValidation = "validation"
	ErrTypeUnknown    = "unknown"
)

// classifyError inspects an error and returns its type classification.
// This groups errors by category in metrics and traces.
func classifyError(err error) string {
	if err == nil {
		return ""
	}

	var cmpErr *similarity.ComparisonError
	if errors.As(err, &cmpErr) ||
		errors.Is(err, curve.ErrEmptyCurve) ||
		errors.Is(err, curve.ErrTooFewColumns) {
		return ErrTypeValidation
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(errStrLower, "timeout") || strings.Contains(errStrLower, "deadline exceeded") {
		return ErrTypeTimeout
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrTypeNetwork
	}
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "connection reset") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "network is unreachable") ||
		strings.Contains(errStrLower, "dial tcp") {
		return ErrTypeNetwork
	}

	if strings.Contains(errStrLower, "api error") ||
		strings.Contains(errStrLower, "rate limit") ||
		strings.Contains(errStrLower, "gemini") ||
		strings.Contains(errStrLower, "openai") ||
		strings.Contains(errStrLower, "completion") {
		return ErrTypeLLM
	}

	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") {
		return ErrTypeDatabase
	}

	if strings.Contains(errStrLower, "invalid") ||
		strings.Contains(errStrLower, "required") ||
		strings.Contains(errStrLower, "fewer than") ||
		strings.Contains(errStrLower, "no data points") {
		return ErrTypeValidation
	}

	return ErrTypeUnknown
}
