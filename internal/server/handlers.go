package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fraudscore/fraudscore/internal/features"
	"github.com/fraudscore/fraudscore/internal/logging"
	"github.com/fraudscore/fraudscore/internal/metrics"
	"github.com/fraudscore/fraudscore/internal/results"
	"github.com/fraudscore/fraudscore/internal/traces"
	"github.com/fraudscore/fraudscore/internal/validation"
)

// predictRequest is the POST /predict body. Required numerics are pointers
// so that a legitimate zero value is distinguishable from an absent field.
type predictRequest struct {
	TimeInd        *int     `json:"time_ind" binding:"required"`
	TransacType    *string  `json:"transac_type" binding:"required"`
	Amount         *float64 `json:"amount" binding:"required"`
	SrcAcc         *string  `json:"src_acc"`
	SrcBal         *float64 `json:"src_bal" binding:"required"`
	SrcNewBal      *float64 `json:"src_new_bal" binding:"required"`
	DstAcc         *string  `json:"dst_acc"`
	DstBal         *float64 `json:"dst_bal" binding:"required"`
	DstNewBal      *float64 `json:"dst_new_bal" binding:"required"`
	IsFraud        *bool    `json:"is_fraud"`
	IsFlaggedFraud *bool    `json:"is_flagged_fraud"`
}

func (r predictRequest) transaction() features.Transaction {
	return features.Transaction{
		TimeInd:        *r.TimeInd,
		TransacType:    *r.TransacType,
		Amount:         *r.Amount,
		SrcAcc:         r.SrcAcc,
		SrcBal:         *r.SrcBal,
		SrcNewBal:      *r.SrcNewBal,
		DstAcc:         r.DstAcc,
		DstBal:         *r.DstBal,
		DstNewBal:      *r.DstNewBal,
		IsFraud:        r.IsFraud,
		IsFlaggedFraud: r.IsFlaggedFraud,
	}
}

// predictHandler scores one transaction and persists the outcome.
// Scoring and persistence succeed or fail together: a row that cannot be
// written is a 500, not a silently unpersisted prediction.
func (s *Server) predictHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	tx := req.transaction()
	if errs := validation.CheckTransaction(tx); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	ctx, span := traces.StartSpan(ctx, "predict",
		traces.TransacType(tx.TransacType),
		traces.Amount(tx.Amount),
	)
	defer span.End()

	start := time.Now()
	feat := features.Derive(tx)
	pred, err := s.scorer.Score(feat)
	if err != nil {
		logging.L(ctx).Error("scoring failed", "error", err, "transac_type", tx.TransacType)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "scoring_error",
			"message": "Failed to score transaction",
		})
		return
	}
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	shortCircuit := feat.TransacType == features.SentinelType
	metrics.ObservePrediction(pred.Pred, shortCircuit)
	span.SetAttributes(traces.Fraud(pred.Pred), traces.ShortCircuit(shortCircuit))

	if _, err := s.results.Record(ctx, tx, pred); err != nil {
		metrics.ResultWritesTotal.WithLabelValues("error").Inc()
		logging.L(ctx).Error("failed to persist prediction", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "storage_error",
			"message": "Failed to persist prediction",
		})
		return
	}
	metrics.ResultWritesTotal.WithLabelValues("ok").Inc()

	c.JSON(http.StatusOK, pred)
}

// fraudsHandler returns stored predictions flagged as fraudulent.
// Without proba_threshold the label predicate applies; with it, rows whose
// recorded probability meets the threshold (inclusive) are returned.
func (s *Server) fraudsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var threshold *float64
	if raw, ok := c.GetQuery("proba_threshold"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_threshold",
				"message": "proba_threshold must be a number",
			})
			return
		}
		if errs := validation.CheckThreshold(v); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_threshold",
				"message": errs.Error(),
			})
			return
		}
		threshold = &v
	}

	ctx, span := traces.StartSpan(ctx, "query_frauds")
	if threshold != nil {
		span.SetAttributes(traces.Threshold(*threshold))
	}
	defer span.End()

	rows, err := s.results.Frauds(ctx, threshold)
	if err != nil {
		logging.L(ctx).Error("fraud query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "storage_error",
			"message": "Failed to query fraud predictions",
		})
		return
	}

	// An empty result serializes as [], never null.
	if rows == nil {
		rows = []*results.Output{}
	}
	c.JSON(http.StatusOK, rows)
}

// -----------------------------------------------------------------------------
// Health & info
// -----------------------------------------------------------------------------

// HealthResponse for health check endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	healthy, statuses := s.healthReg.CheckAll(c.Request.Context())

	checks := make(map[string]string, len(statuses))
	for _, st := range statuses {
		if st.Healthy {
			checks[st.Name] = "healthy"
		} else {
			checks[st.Name] = "unhealthy"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           "fraudscore",
		"description":    "Transaction fraud scoring service",
		"version":        "0.1.0",
		"model_version":  s.scorer.ModelVersion(),
		"scaler_version": s.scorer.ScalerVersion(),
	})
}
