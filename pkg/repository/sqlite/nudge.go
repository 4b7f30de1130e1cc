package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type nudgeRepository struct {
	db *sql.DB
}

func newNudgeRepository(db *sql.DB) *nudgeRepository {
	return &nudgeRepository{db: db}
}

func (r *nudgeRepository) Put(ctx context.Context, rows []*model.NudgeRow) ([]*model.NudgeRow, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	created := make([]*model.NudgeRow, 0, len(rows))
	for _, row := range rows {
		c := *row
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.Status == "" {
			c.Status = "active"
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO nudges (employee_id, nudge_type, title, message, instructions,
			   metric_name, metric_value, threshold, operator, unit,
			   date_range_from, date_range_to, prior_date_range_from, prior_date_range_to,
			   status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(c.EmployeeID), c.NudgeType, c.Title, c.Message, c.Instructions,
			c.MetricName, c.MetricValue, c.Threshold, c.Operator, c.Unit,
			c.DateRangeFrom, c.DateRangeTo, c.PriorDateRangeFrom, c.PriorDateRangeTo,
			c.Status, c.CreatedAt,
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to insert nudge row",
				goerr.V("employeeID", c.EmployeeID), goerr.V("title", c.Title))
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read inserted nudge ID")
		}
		c.ID = id
		created = append(created, &c)
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit nudge rows")
	}

	return created, nil
}

func (r *nudgeRepository) ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.NudgeRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, employee_id, COALESCE(nudge_type, ''), title, COALESCE(message, ''),
		        COALESCE(instructions, ''), COALESCE(metric_name, ''), metric_value, threshold,
		        COALESCE(operator, ''), COALESCE(unit, ''),
		        date_range_from, date_range_to, prior_date_range_from, prior_date_range_to,
		        status, created_at
		 FROM nudges WHERE employee_id = ? ORDER BY id`,
		string(employeeID),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query nudge rows",
			goerr.V("employeeID", employeeID))
	}
	defer func() { _ = rows.Close() }()

	result := make([]*model.NudgeRow, 0)
	for rows.Next() {
		var nr model.NudgeRow
		var eid string
		var metricValue, threshold sql.NullFloat64
		var from, to, priorFrom, priorTo sql.NullTime
		err := rows.Scan(&nr.ID, &eid, &nr.NudgeType, &nr.Title, &nr.Message,
			&nr.Instructions, &nr.MetricName, &metricValue, &threshold,
			&nr.Operator, &nr.Unit, &from, &to, &priorFrom, &priorTo,
			&nr.Status, &nr.CreatedAt)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan nudge row",
				goerr.V("employeeID", employeeID))
		}

		nr.EmployeeID = types.EmployeeID(eid)
		if metricValue.Valid {
			nr.MetricValue = &metricValue.Float64
		}
		if threshold.Valid {
			nr.Threshold = &threshold.Float64
		}
		if from.Valid {
			nr.DateRangeFrom = &from.Time
		}
		if to.Valid {
			nr.DateRangeTo = &to.Time
		}
		if priorFrom.Valid {
			nr.PriorDateRangeFrom = &priorFrom.Time
		}
		if priorTo.Valid {
			nr.PriorDateRangeTo = &priorTo.Time
		}
		result = append(result, &nr)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate nudge rows",
			goerr.V("employeeID", employeeID))
	}

	return result, nil
}
