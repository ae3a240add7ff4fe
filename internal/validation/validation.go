// Package validation provides input validation for the scoring API.
package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fraudscore/fraudscore/internal/features"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxTimeInd is the last simulation hour: 744 hourly steps cover 30 days.
const MaxTimeInd = 743

// MaxAccountLength bounds account identifier length.
const MaxAccountLength = 64

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// CheckTransaction validates the basic shape of a transaction before it
// reaches feature derivation. Unknown transaction types are NOT rejected
// here: they are valid input and map to the non-scorable sentinel.
func CheckTransaction(tx features.Transaction) ValidationErrors {
	var errs ValidationErrors

	if tx.TransacType == "" {
		errs = append(errs, ValidationError{Field: "transac_type", Message: "is required"})
	}
	if tx.TimeInd < 0 || tx.TimeInd > MaxTimeInd {
		errs = append(errs, ValidationError{Field: "time_ind", Message: "must be between 0 and 743"})
	}
	if tx.Amount < 0 {
		errs = append(errs, ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	if tx.SrcAcc != nil && len(*tx.SrcAcc) > MaxAccountLength {
		errs = append(errs, ValidationError{Field: "src_acc", Message: "exceeds maximum length"})
	}
	if tx.DstAcc != nil && len(*tx.DstAcc) > MaxAccountLength {
		errs = append(errs, ValidationError{Field: "dst_acc", Message: "exceeds maximum length"})
	}

	return errs
}

// CheckThreshold validates the proba_threshold query value.
func CheckThreshold(v float64) ValidationErrors {
	if v < 0 || v > 1 {
		return ValidationErrors{{Field: "proba_threshold", Message: "must be between 0 and 1"}}
	}
	return nil
}
