// Package results persists scored transactions and serves fraud queries.
//
// Every scoring call appends exactly one denormalized row: the full
// transaction, the prediction, and scoring metadata. Rows are append-only
// and never updated or deleted by this service.
package results

import (
	"context"
	"time"

	"github.com/fraudscore/fraudscore/internal/features"
	"github.com/fraudscore/fraudscore/internal/scoring"
)

// Output is one persisted prediction row: the union of the transaction,
// the prediction, and scoring metadata.
type Output struct {
	features.Transaction
	scoring.Prediction
	Timestamp     time.Time `json:"timestamp"`
	ModelVersion  string    `json:"model_version"`
	ScalerVersion string    `json:"scaler_version"`
}

// Store persists prediction rows.
//
// QueryFrauds supports two predicates: with a nil threshold it returns all
// rows predicted fraudulent; with a threshold it returns rows whose recorded
// probability is >= the threshold (rows without a probability are excluded).
// Results are ordered by scoring time, newest first. An empty result is a
// valid outcome, not an error.
type Store interface {
	Append(ctx context.Context, rec *Output) error
	QueryFrauds(ctx context.Context, probaThreshold *float64) ([]*Output, error)
}

// Metadata identifies the artifacts a prediction was produced with.
type Metadata struct {
	ModelVersion  string
	ScalerVersion string
}

// Service builds output rows and delegates to the store. The metadata is
// fixed at construction since artifacts never change for the process
// lifetime.
type Service struct {
	store Store
	meta  Metadata
	now   func() time.Time
}

// NewService creates a results service.
func NewService(store Store, meta Metadata) *Service {
	return &Service{store: store, meta: meta, now: time.Now}
}

// Record appends one prediction row. A write failure propagates to the
// caller; scoring and persistence succeed or fail together.
func (s *Service) Record(ctx context.Context, tx features.Transaction, pred scoring.Prediction) (*Output, error) {
	rec := &Output{
		Transaction:   tx,
		Prediction:    pred,
		Timestamp:     s.now().UTC(),
		ModelVersion:  s.meta.ModelVersion,
		ScalerVersion: s.meta.ScalerVersion,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Frauds returns stored predictions matching the threshold predicate.
func (s *Service) Frauds(ctx context.Context, probaThreshold *float64) ([]*Output, error) {
	return s.store.QueryFrauds(ctx, probaThreshold)
}
