package validation

import (
	"testing"

	"github.com/fraudscore/fraudscore/internal/features"
)

func validTx() features.Transaction {
	return features.Transaction{
		TimeInd:     42,
		TransacType: features.TypePayment,
		Amount:      9839.64,
		SrcBal:      170136.0,
		SrcNewBal:   160296.36,
	}
}

func TestCheckTransaction_Valid(t *testing.T) {
	if errs := CheckTransaction(validTx()); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
}

func TestCheckTransaction_UnknownTypeAccepted(t *testing.T) {
	// Unknown types are scorable input: they hit the sentinel path,
	// not a 4xx.
	tx := validTx()
	tx.TransacType = "WIRE"
	if errs := CheckTransaction(tx); len(errs) != 0 {
		t.Errorf("Expected no errors for unknown type, got %v", errs)
	}
}

func TestCheckTransaction_Invalid(t *testing.T) {
	longAcc := make([]byte, MaxAccountLength+1)
	for i := range longAcc {
		longAcc[i] = 'C'
	}
	long := string(longAcc)

	tests := []struct {
		name   string
		mutate func(*features.Transaction)
		field  string
	}{
		{"missing type", func(tx *features.Transaction) { tx.TransacType = "" }, "transac_type"},
		{"negative time_ind", func(tx *features.Transaction) { tx.TimeInd = -1 }, "time_ind"},
		{"time_ind past end", func(tx *features.Transaction) { tx.TimeInd = 744 }, "time_ind"},
		{"negative amount", func(tx *features.Transaction) { tx.Amount = -0.01 }, "amount"},
		{"src account too long", func(tx *features.Transaction) { tx.SrcAcc = &long }, "src_acc"},
		{"dst account too long", func(tx *features.Transaction) { tx.DstAcc = &long }, "dst_acc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx()
			tc.mutate(&tx)
			errs := CheckTransaction(tx)
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
			}
			if errs[0].Field != tc.field {
				t.Errorf("Expected error on %s, got %s", tc.field, errs[0].Field)
			}
		})
	}
}

func TestCheckTransaction_TimeIndBoundaries(t *testing.T) {
	for _, ind := range []int{0, 743} {
		tx := validTx()
		tx.TimeInd = ind
		if errs := CheckTransaction(tx); len(errs) != 0 {
			t.Errorf("time_ind=%d should be valid, got %v", ind, errs)
		}
	}
}

func TestCheckTransaction_MultipleErrors(t *testing.T) {
	tx := features.Transaction{TimeInd: 900, TransacType: "", Amount: -5}
	errs := CheckTransaction(tx)
	if len(errs) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestCheckThreshold(t *testing.T) {
	tests := []struct {
		value float64
		valid bool
	}{
		{0, true},
		{0.5, true},
		{1, true},
		{-0.01, false},
		{1.01, false},
	}

	for _, tc := range tests {
		errs := CheckThreshold(tc.value)
		if (len(errs) == 0) != tc.valid {
			t.Errorf("CheckThreshold(%v) valid=%v, want %v", tc.value, len(errs) == 0, tc.valid)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{{Field: "amount", Message: "must be non-negative"}}
	if got := errs.Error(); got != "amount: must be non-negative" {
		t.Errorf("Error() = %q", got)
	}
	if got := (ValidationErrors{}).Error(); got != "validation failed" {
		t.Errorf("empty Error() = %q", got)
	}
}
