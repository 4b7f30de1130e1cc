package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type emailHistoryRepository struct {
	db *sql.DB
}

func newEmailHistoryRepository(db *sql.DB) *emailHistoryRepository {
	return &emailHistoryRepository{db: db}
}

func (r *emailHistoryRepository) Append(ctx context.Context, record *model.EmailRecord) (*model.EmailRecord, error) {
	created := *record
	if created.ID == "" {
		created.ID = model.NewEmailRecordID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nudge_emails (id, employee_id, subject, body, nudge_snippet, sent, sent_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(created.ID), string(created.EmployeeID),
		created.Subject, created.Body, created.NudgeSnippet,
		created.Sent, created.SentAt, created.CreatedAt,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append email record",
			goerr.V("employeeID", created.EmployeeID))
	}

	return &created, nil
}

func (r *emailHistoryRepository) ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.EmailRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, employee_id, subject, body, COALESCE(nudge_snippet, ''), sent, sent_at, created_at
		 FROM nudge_emails WHERE employee_id = ? ORDER BY created_at DESC`,
		string(employeeID),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query email records",
			goerr.V("employeeID", employeeID))
	}
	defer func() { _ = rows.Close() }()

	records := make([]*model.EmailRecord, 0)
	for rows.Next() {
		var rec model.EmailRecord
		var id, eid string
		var sentAt sql.NullTime
		if err := rows.Scan(&id, &eid, &rec.Subject, &rec.Body, &rec.NudgeSnippet, &rec.Sent, &sentAt, &rec.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan email record",
				goerr.V("employeeID", employeeID))
		}
		rec.ID = model.EmailRecordID(id)
		rec.EmployeeID = types.EmployeeID(eid)
		if sentAt.Valid {
			t := sentAt.Time
			rec.SentAt = &t
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate email records",
			goerr.V("employeeID", employeeID))
	}

	return records, nil
}

func (r *emailHistoryRepository) MarkSent(ctx context.Context, id model.EmailRecordID, sentAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE nudge_emails SET sent = 1, sent_at = ? WHERE id = ?",
		sentAt, string(id),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to mark email record sent", goerr.V("id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check update result", goerr.V("id", id))
	}
	if affected == 0 {
		return goerr.Wrap(ErrNotFound, "email record not found", goerr.V("id", id))
	}

	return nil
}
