package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository"
)

// historyRow mirrors lab_results on the replica. performed_at is read as
// text so malformed upstream values reach the detector unchanged.
type historyRow struct {
	ID          sql.NullString `db:"id"`
	PatientMRN  string         `db:"patient_mrn"`
	TestName    string         `db:"test_name"`
	PerformedAt sql.NullString `db:"performed_at"`
}

func (r historyRow) toRecord() model.TestRecord {
	return model.TestRecord{
		ID:          r.ID.String,
		PatientMRN:  r.PatientMRN,
		TestName:    r.TestName,
		PerformedAt: r.PerformedAt.String,
	}
}

const historyQuery = `
	SELECT id, patient_mrn, test_name, performed_at::text AS performed_at
	FROM lab_results
	WHERE patient_mrn = $1
	ORDER BY performed_at DESC
`

type historyRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewHistoryRepository(db *sqlx.DB, timeout time.Duration) repository.HistoryRepository {
	return &historyRepository{db: db, timeout: timeout}
}

func (r *historyRepository) GetHistory(ctx context.Context, mrn string) ([]model.TestRecord, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, historyQuery, mrn); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	records := make([]model.TestRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}
