// Package features defines the transaction input record and the fixed
// feature vector derived from it for scoring.
//
// The derivation must stay bit-for-bit consistent with the mapping used
// when the scaler and classifier artifacts were fitted; the artifact
// loader cross-checks FeatureNames against each artifact at startup.
package features

// Transaction types observed in the simulation data.
const (
	TypeCashIn   = "CASH_IN"
	TypeCashOut  = "CASH_OUT"
	TypeDebit    = "DEBIT"
	TypePayment  = "PAYMENT"
	TypeTransfer = "TRANSFER"
)

// SentinelType is the encoded transaction type meaning "not eligible for
// scoring; assumed non-fraudulent". Only TRANSFER and CASH_OUT carry fraud
// in this domain model.
const SentinelType = -1

// Transaction is one raw financial movement as submitted for scoring.
// time_ind is a simulation hour: step 1 is 1 hour, 744 steps cover 30 days.
type Transaction struct {
	TimeInd        int      `json:"time_ind"`
	TransacType    string   `json:"transac_type"`
	Amount         float64  `json:"amount"`
	SrcAcc         *string  `json:"src_acc"`
	SrcBal         float64  `json:"src_bal"`
	SrcNewBal      float64  `json:"src_new_bal"`
	DstAcc         *string  `json:"dst_acc"`
	DstBal         float64  `json:"dst_bal"`
	DstNewBal      float64  `json:"dst_new_bal"`
	IsFraud        *bool    `json:"is_fraud"`
	IsFlaggedFraud *bool    `json:"is_flagged_fraud"`
}

// Features is the fixed-shape vector consumed by the scaler and classifier.
// Ephemeral: computed per request, never persisted.
type Features struct {
	TransacType int     // 1 = TRANSFER, 0 = CASH_OUT, -1 = sentinel
	Amount      float64
	SrcBal      float64
	SrcNewBal   float64
	DstBal      float64
	DstNewBal   float64
	DayOfMonth  int // 1-indexed day derived from TimeInd
	HourOfDay   int
}

// FeatureNames is the canonical field order of the vector, matching the
// order the artifacts were fitted against.
var FeatureNames = []string{
	"transac_type",
	"amount",
	"src_bal",
	"src_new_bal",
	"dst_bal",
	"dst_new_bal",
	"day_of_month",
	"hour_of_day",
}

// Derive maps a transaction to its feature vector. Total and deterministic:
// unknown transaction types fall through to the sentinel rather than erroring.
func Derive(t Transaction) Features {
	encoded := SentinelType
	switch t.TransacType {
	case TypeTransfer:
		encoded = 1
	case TypeCashOut:
		encoded = 0
	}

	return Features{
		TransacType: encoded,
		Amount:      t.Amount,
		SrcBal:      t.SrcBal,
		SrcNewBal:   t.SrcNewBal,
		DstBal:      t.DstBal,
		DstNewBal:   t.DstNewBal,
		DayOfMonth:  t.TimeInd/24 + 1,
		HourOfDay:   t.TimeInd % 24,
	}
}

// Vector returns the features in canonical order for the scaling transform.
func (f Features) Vector() []float64 {
	return []float64{
		float64(f.TransacType),
		f.Amount,
		f.SrcBal,
		f.SrcNewBal,
		f.DstBal,
		f.DstNewBal,
		float64(f.DayOfMonth),
		float64(f.HourOfDay),
	}
}
