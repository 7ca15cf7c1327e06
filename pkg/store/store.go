// Package store provides persistence for completed analyses.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
)

// ErrAnalysisNotFound is returned when an analysis ID does not exist.
var ErrAnalysisNotFound = errors.New("analysis not found")

// Analysis is one persisted comparison result.
type Analysis struct {
	ID           string             `json:"id"`
	BaselineFile string             `json:"baseline_file"`
	SampleFile   string             `json:"sample_file"`
	SampleName   string             `json:"sample_name"`
	BaselineHash string             `json:"baseline_hash"` // xxhash of the uploaded baseline bytes, hex
	SampleHash   string             `json:"sample_hash"`   // xxhash of the uploaded sample bytes, hex
	Report       *similarity.Report `json:"report"`
	Insights     string             `json:"insights,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// AnalysisStore defines the interface for analysis persistence.
type AnalysisStore interface {
	// Save persists an analysis. A missing ID is filled with a new UUID.
	Save(ctx context.Context, a *Analysis) error

	// Get retrieves an analysis by ID. Returns ErrAnalysisNotFound when the
	// ID does not exist.
	Get(ctx context.Context, id string) (*Analysis, error)

	// List returns the most recent analyses, newest first, up to limit.
	// A non-positive limit returns all.
	List(ctx context.Context, limit int) ([]*Analysis, error)

	// Delete removes an analysis. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored analyses.
	Count(ctx context.Context) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
