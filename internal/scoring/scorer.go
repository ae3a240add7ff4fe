// Package scoring applies pretrained scaling and classification artifacts
// to derived transaction features.
//
// Artifacts are loaded once at startup into an immutable Scorer shared by
// all requests; nothing is mutated after construction, so no locking is
// needed. There is no retraining or hot reload.
package scoring

import "github.com/fraudscore/fraudscore/internal/features"

// Prediction is the scoring result. PredProba is set only when the
// classifier supports probability estimation.
type Prediction struct {
	Pred      bool     `json:"pred"`
	PredProba *float64 `json:"pred_proba"`
}

// Scorer holds the loaded artifacts as read-only shared state.
type Scorer struct {
	scaler *Scaler
	clf    Classifier
}

// New builds a Scorer from already-loaded artifacts. Used by tests to
// inject doubles.
func New(scaler *Scaler, clf Classifier) *Scorer {
	return &Scorer{scaler: scaler, clf: clf}
}

// Load reads both artifacts from disk and constructs a Scorer. Any schema
// or shape problem fails here, at startup, rather than per request.
func Load(scalerPath, modelPath string) (*Scorer, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	clf, err := LoadClassifier(modelPath)
	if err != nil {
		return nil, err
	}
	return &Scorer{scaler: scaler, clf: clf}, nil
}

// ScalerVersion returns the loaded scaler's version string.
func (s *Scorer) ScalerVersion() string { return s.scaler.Version() }

// ModelVersion returns the loaded classifier's version string.
func (s *Scorer) ModelVersion() string { return s.clf.Version() }

// Score produces a prediction for the derived features.
//
// Transactions whose encoded type is the sentinel are definitionally
// non-fraudulent in this domain model: they return {false, nil} without
// invoking the scaler or classifier. This is a business rule, not an
// optimization.
func (s *Scorer) Score(f features.Features) (Prediction, error) {
	if f.TransacType == features.SentinelType {
		return Prediction{Pred: false, PredProba: nil}, nil
	}

	scaled, err := s.scaler.Transform(f.Vector())
	if err != nil {
		return Prediction{}, err
	}

	label, err := s.clf.Predict(scaled)
	if err != nil {
		return Prediction{}, err
	}

	pred := Prediction{Pred: label}
	if est, ok := s.clf.(ProbabilityEstimator); ok {
		p, err := est.PredictProba(scaled)
		if err != nil {
			return Prediction{}, err
		}
		pred.PredProba = &p
	}
	return pred, nil
}
