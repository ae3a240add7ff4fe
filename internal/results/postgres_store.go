package results

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/lib/pq"
)

// tableNameRe restricts the configured table name to a bare SQL identifier.
// The name is still quoted on every statement; user-supplied values are
// always bound parameters, never interpolated.
var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgresStore creates a PostgreSQL-backed results store writing to the
// named table.
func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid results table name %q", table)
	}
	return &PostgresStore{db: db, table: table}, nil
}

// Compile-time interface check
var _ Store = (*PostgresStore)(nil)

// Migrate creates the results table if it does not exist. The configured
// table may differ from the default covered by migrations/, so the store
// auto-creates its own schema on startup.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	table := pq.QuoteIdentifier(p.table)
	predIdx := pq.QuoteIdentifier("idx_" + p.table + "_pred")
	probaIdx := pq.QuoteIdentifier("idx_" + p.table + "_pred_proba")

	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			time_ind         INTEGER NOT NULL,
			transac_type     VARCHAR(20) NOT NULL,
			amount           DOUBLE PRECISION NOT NULL,
			src_acc          VARCHAR(64),
			src_bal          DOUBLE PRECISION NOT NULL,
			src_new_bal      DOUBLE PRECISION NOT NULL,
			dst_acc          VARCHAR(64),
			dst_bal          DOUBLE PRECISION NOT NULL,
			dst_new_bal      DOUBLE PRECISION NOT NULL,
			is_fraud         BOOLEAN,
			is_flagged_fraud BOOLEAN,
			pred             BOOLEAN NOT NULL,
			pred_proba       DOUBLE PRECISION,
			scored_at        TIMESTAMPTZ NOT NULL,
			model_version    VARCHAR(64) NOT NULL,
			scaler_version   VARCHAR(64) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS %s ON %s (pred) WHERE pred;
		CREATE INDEX IF NOT EXISTS %s ON %s (pred_proba) WHERE pred_proba IS NOT NULL;
	`, table, predIdx, table, probaIdx, table))
	return err
}

// Append writes one prediction row.
func (p *PostgresStore) Append(ctx context.Context, rec *Output) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			time_ind, transac_type, amount, src_acc, src_bal, src_new_bal,
			dst_acc, dst_bal, dst_new_bal, is_fraud, is_flagged_fraud,
			pred, pred_proba, scored_at, model_version, scaler_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, pq.QuoteIdentifier(p.table)),
		rec.TimeInd, rec.TransacType, rec.Amount, rec.SrcAcc, rec.SrcBal, rec.SrcNewBal,
		rec.DstAcc, rec.DstBal, rec.DstNewBal, rec.IsFraud, rec.IsFlaggedFraud,
		rec.Pred, rec.PredProba, rec.Timestamp, rec.ModelVersion, rec.ScalerVersion,
	)
	return err
}

const outputColumns = `time_ind, transac_type, amount, src_acc, src_bal, src_new_bal,
		dst_acc, dst_bal, dst_new_bal, is_fraud, is_flagged_fraud,
		pred, pred_proba, scored_at, model_version, scaler_version`

// QueryFrauds returns stored predictions, newest first.
func (p *PostgresStore) QueryFrauds(ctx context.Context, probaThreshold *float64) ([]*Output, error) {
	var (
		rows *sql.Rows
		err  error
	)
	table := pq.QuoteIdentifier(p.table)

	if probaThreshold != nil {
		rows, err = p.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE pred_proba IS NOT NULL AND pred_proba >= $1
			ORDER BY scored_at DESC
		`, outputColumns, table), *probaThreshold)
	} else {
		rows, err = p.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE pred
			ORDER BY scored_at DESC
		`, outputColumns, table))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Output
	for rows.Next() {
		rec := &Output{}
		var (
			srcAcc, dstAcc          sql.NullString
			isFraud, isFlaggedFraud sql.NullBool
			predProba               sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.TimeInd, &rec.TransacType, &rec.Amount, &srcAcc, &rec.SrcBal, &rec.SrcNewBal,
			&dstAcc, &rec.DstBal, &rec.DstNewBal, &isFraud, &isFlaggedFraud,
			&rec.Pred, &predProba, &rec.Timestamp, &rec.ModelVersion, &rec.ScalerVersion,
		); err != nil {
			return nil, err
		}

		if srcAcc.Valid {
			rec.SrcAcc = &srcAcc.String
		}
		if dstAcc.Valid {
			rec.DstAcc = &dstAcc.String
		}
		if isFraud.Valid {
			v := isFraud.Bool
			rec.IsFraud = &v
		}
		if isFlaggedFraud.Valid {
			v := isFlaggedFraud.Bool
			rec.IsFlaggedFraud = &v
		}
		if predProba.Valid {
			v := predProba.Float64
			rec.PredProba = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
