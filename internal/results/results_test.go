package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fraudscore/fraudscore/internal/features"
	"github.com/fraudscore/fraudscore/internal/scoring"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

func sampleTx() features.Transaction {
	return features.Transaction{
		TimeInd:        42,
		TransacType:    features.TypeTransfer,
		Amount:         181.0,
		SrcAcc:         strPtr("C1305486145"),
		SrcBal:         181.0,
		SrcNewBal:      0,
		DstAcc:         strPtr("C553264065"),
		DstBal:         0,
		DstNewBal:      0,
		IsFlaggedFraud: boolPtr(false),
	}
}

func record(store Store, pred bool, proba *float64, ts time.Time) *Output {
	rec := &Output{
		Transaction:   sampleTx(),
		Prediction:    scoring.Prediction{Pred: pred, PredProba: proba},
		Timestamp:     ts,
		ModelVersion:  "logreg-2024.1",
		ScalerVersion: "scaler-2024.1",
	}
	_ = store.Append(context.Background(), rec)
	return rec
}

func TestQueryFrauds_NoThreshold_LabelPredicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	record(store, true, floatPtr(0.97), now)
	record(store, false, floatPtr(0.12), now.Add(time.Second))

	got, err := store.QueryFrauds(ctx, nil)
	if err != nil {
		t.Fatalf("QueryFrauds failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 fraud row, got %d", len(got))
	}
	if !got[0].Pred {
		t.Error("non-fraud row returned by label predicate")
	}
}

func TestQueryFrauds_ThresholdInclusive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	record(store, true, floatPtr(0.85), now)
	record(store, true, floatPtr(0.9), now.Add(time.Second))
	record(store, true, nil, now.Add(2*time.Second)) // no probability recorded

	got, err := store.QueryFrauds(ctx, floatPtr(0.9))
	if err != nil {
		t.Fatalf("QueryFrauds failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly the 0.9 row, got %d rows", len(got))
	}
	if got[0].PredProba == nil || *got[0].PredProba != 0.9 {
		t.Errorf("threshold boundary not inclusive: %+v", got[0].Prediction)
	}
}

func TestQueryFrauds_Empty(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.QueryFrauds(context.Background(), nil)
	if err != nil {
		t.Fatalf("QueryFrauds on empty store errored: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d rows", len(got))
	}
}

func TestQueryFrauds_NewestFirst(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()

	record(store, true, floatPtr(0.6), now)
	record(store, true, floatPtr(0.7), now.Add(2*time.Second))
	record(store, true, floatPtr(0.8), now.Add(time.Second))

	got, err := store.QueryFrauds(context.Background(), nil)
	if err != nil {
		t.Fatalf("QueryFrauds failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("rows not ordered newest first: %v before %v", got[i-1].Timestamp, got[i].Timestamp)
		}
	}
}

func TestRoundTrip_PreservesFields(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()

	want := record(store, true, floatPtr(0.93), now)

	got, err := store.QueryFrauds(context.Background(), nil)
	if err != nil {
		t.Fatalf("QueryFrauds failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	rec := got[0]

	if rec.TimeInd != want.TimeInd || rec.TransacType != want.TransacType || rec.Amount != want.Amount {
		t.Errorf("transaction fields changed: %+v", rec.Transaction)
	}
	if rec.SrcAcc == nil || *rec.SrcAcc != *want.SrcAcc {
		t.Errorf("src_acc changed: %v", rec.SrcAcc)
	}
	if rec.IsFraud != nil {
		t.Errorf("absent is_fraud became %v on read", *rec.IsFraud)
	}
	if rec.IsFlaggedFraud == nil || *rec.IsFlaggedFraud != false {
		t.Error("is_flagged_fraud boolean not preserved")
	}
	if rec.Pred != true {
		t.Error("pred boolean not preserved")
	}
	if rec.PredProba == nil || *rec.PredProba != 0.93 {
		t.Errorf("pred_proba changed: %v", rec.PredProba)
	}
	if rec.ModelVersion != want.ModelVersion || rec.ScalerVersion != want.ScalerVersion {
		t.Error("metadata changed on read")
	}
}

func TestMemoryStore_AppendCopies(t *testing.T) {
	store := NewMemoryStore()
	rec := record(store, true, floatPtr(0.5), time.Now().UTC())

	// Mutating the caller's record must not reach the stored row.
	rec.Pred = false

	got, _ := store.QueryFrauds(context.Background(), nil)
	if len(got) != 1 || !got[0].Pred {
		t.Error("stored row shares memory with the caller's record")
	}
}

// --- Service ---

type failingStore struct{ MemoryStore }

func (f *failingStore) Append(ctx context.Context, rec *Output) error {
	return errors.New("connection refused")
}

func TestService_RecordStampsMetadata(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, Metadata{ModelVersion: "m-1", ScalerVersion: "s-1"})
	fixed := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	rec, err := svc.Record(context.Background(), sampleTx(), scoring.Prediction{Pred: true, PredProba: floatPtr(0.8)})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if rec.ModelVersion != "m-1" || rec.ScalerVersion != "s-1" {
		t.Errorf("metadata not stamped: %+v", rec)
	}
	if !rec.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, fixed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored row, got %d", store.Len())
	}
}

func TestService_RecordPropagatesWriteFailure(t *testing.T) {
	svc := NewService(&failingStore{}, Metadata{})

	_, err := svc.Record(context.Background(), sampleTx(), scoring.Prediction{})
	if err == nil {
		t.Fatal("persistence failure must propagate to the caller")
	}
}
