package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/fraudscore/fraudscore/internal/features"
)

// Classifier kinds supported in model artifacts.
const (
	KindLogisticRegression = "logistic_regression"
	KindLinearSVC          = "linear_svc"
)

// ErrShapeMismatch indicates a feature vector whose shape does not match the
// loaded artifacts. This is a fatal configuration error (artifact/feature
// mismatch), not a per-request condition.
var ErrShapeMismatch = fmt.Errorf("feature vector shape does not match artifact")

// Scaler is a pretrained standardization transform: per-feature mean and
// scale fitted at training time. Read-only after load.
type Scaler struct {
	version string
	mean    []float64
	scale   []float64
}

// Version returns the artifact version string.
func (s *Scaler) Version() string { return s.version }

// Transform standardizes a feature vector in canonical order. Errors when the
// vector shape does not match the fitted parameters.
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.mean) {
		return nil, fmt.Errorf("%w: got %d features, scaler fitted on %d", ErrShapeMismatch, len(vec), len(s.mean))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// Classifier maps a scaled feature vector to a fraud label.
type Classifier interface {
	Version() string
	Predict(scaled []float64) (bool, error)
}

// ProbabilityEstimator is implemented by classifiers that can also estimate
// the probability of the positive (fraud) class.
type ProbabilityEstimator interface {
	PredictProba(scaled []float64) (float64, error)
}

// linearModel is a fitted linear decision function shared by both classifier
// kinds: coefficients, intercept, and (for logistic regression) the decision
// threshold on the positive-class probability.
type linearModel struct {
	version   string
	coef      []float64
	intercept float64
	threshold float64
}

func (m *linearModel) decision(scaled []float64) (float64, error) {
	if len(scaled) != len(m.coef) {
		return 0, fmt.Errorf("%w: got %d features, model fitted on %d", ErrShapeMismatch, len(scaled), len(m.coef))
	}
	d := m.intercept
	for i, v := range scaled {
		d += m.coef[i] * v
	}
	return d, nil
}

// logisticClassifier predicts via the sigmoid of the decision function and
// exposes the positive-class probability.
type logisticClassifier struct{ linearModel }

func (c *logisticClassifier) Version() string { return c.version }

func (c *logisticClassifier) Predict(scaled []float64) (bool, error) {
	p, err := c.PredictProba(scaled)
	if err != nil {
		return false, err
	}
	return p >= c.threshold, nil
}

func (c *logisticClassifier) PredictProba(scaled []float64) (float64, error) {
	d, err := c.decision(scaled)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + math.Exp(-d)), nil
}

// svcClassifier predicts from the sign of the decision function. It has no
// calibrated probability, so it deliberately does not implement
// ProbabilityEstimator.
type svcClassifier struct{ linearModel }

func (c *svcClassifier) Version() string { return c.version }

func (c *svcClassifier) Predict(scaled []float64) (bool, error) {
	d, err := c.decision(scaled)
	if err != nil {
		return false, err
	}
	return d > 0, nil
}

// scalerArtifact is the on-disk JSON form of a fitted scaler.
type scalerArtifact struct {
	Version  string    `json:"version"`
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// modelArtifact is the on-disk JSON form of a fitted classifier.
type modelArtifact struct {
	Version   string    `json:"version"`
	Kind      string    `json:"kind"`
	Features  []string  `json:"features"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold"`
}

// LoadScaler reads and validates a scaler artifact. The artifact's feature
// list must match the canonical order exactly; a silent mismatch would
// invalidate the model without detection.
func LoadScaler(path string) (*Scaler, error) {
	var a scalerArtifact
	if err := readArtifact(path, &a); err != nil {
		return nil, err
	}
	if err := checkFeatureSchema(path, a.Features); err != nil {
		return nil, err
	}
	if len(a.Mean) != len(a.Features) || len(a.Scale) != len(a.Features) {
		return nil, fmt.Errorf("scaler artifact %s: mean/scale length does not match feature list", path)
	}
	for i, s := range a.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler artifact %s: zero scale for feature %s", path, a.Features[i])
		}
	}
	if a.Version == "" {
		return nil, fmt.Errorf("scaler artifact %s: missing version", path)
	}
	return &Scaler{version: a.Version, mean: a.Mean, scale: a.Scale}, nil
}

// LoadClassifier reads and validates a classifier artifact.
func LoadClassifier(path string) (Classifier, error) {
	var a modelArtifact
	if err := readArtifact(path, &a); err != nil {
		return nil, err
	}
	if err := checkFeatureSchema(path, a.Features); err != nil {
		return nil, err
	}
	if len(a.Coef) != len(a.Features) {
		return nil, fmt.Errorf("model artifact %s: coefficient length does not match feature list", path)
	}
	if a.Version == "" {
		return nil, fmt.Errorf("model artifact %s: missing version", path)
	}

	m := linearModel{
		version:   a.Version,
		coef:      a.Coef,
		intercept: a.Intercept,
		threshold: a.Threshold,
	}

	switch a.Kind {
	case KindLogisticRegression:
		if m.threshold <= 0 || m.threshold >= 1 {
			m.threshold = 0.5
		}
		return &logisticClassifier{m}, nil
	case KindLinearSVC:
		return &svcClassifier{m}, nil
	default:
		return nil, fmt.Errorf("model artifact %s: unsupported kind %q", path, a.Kind)
	}
}

func readArtifact(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return nil
}

// checkFeatureSchema rejects artifacts fitted against a different feature
// layout than the one this binary derives.
func checkFeatureSchema(path string, got []string) error {
	want := features.FeatureNames
	if len(got) != len(want) {
		return fmt.Errorf("artifact %s: fitted on %d features, this service derives %d", path, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("artifact %s: feature %d is %q, expected %q", path, i, got[i], want[i])
		}
	}
	return nil
}
