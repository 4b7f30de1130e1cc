package firestore

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type nudgeRowDoc struct {
	ID                 int64      `firestore:"ID"`
	EmployeeID         string     `firestore:"EmployeeID"`
	NudgeType          string     `firestore:"NudgeType"`
	Title              string     `firestore:"Title"`
	Message            string     `firestore:"Message"`
	Instructions       string     `firestore:"Instructions"`
	MetricName         string     `firestore:"MetricName"`
	MetricValue        *float64   `firestore:"MetricValue,omitempty"`
	Threshold          *float64   `firestore:"Threshold,omitempty"`
	Operator           string     `firestore:"Operator"`
	Unit               string     `firestore:"Unit"`
	DateRangeFrom      *time.Time `firestore:"DateRangeFrom,omitempty"`
	DateRangeTo        *time.Time `firestore:"DateRangeTo,omitempty"`
	PriorDateRangeFrom *time.Time `firestore:"PriorDateRangeFrom,omitempty"`
	PriorDateRangeTo   *time.Time `firestore:"PriorDateRangeTo,omitempty"`
	Status             string     `firestore:"Status"`
	CreatedAt          time.Time  `firestore:"CreatedAt"`
}

func toNudgeRowDoc(row *model.NudgeRow) *nudgeRowDoc {
	return &nudgeRowDoc{
		ID:                 row.ID,
		EmployeeID:         string(row.EmployeeID),
		NudgeType:          row.NudgeType,
		Title:              row.Title,
		Message:            row.Message,
		Instructions:       row.Instructions,
		MetricName:         row.MetricName,
		MetricValue:        row.MetricValue,
		Threshold:          row.Threshold,
		Operator:           row.Operator,
		Unit:               row.Unit,
		DateRangeFrom:      row.DateRangeFrom,
		DateRangeTo:        row.DateRangeTo,
		PriorDateRangeFrom: row.PriorDateRangeFrom,
		PriorDateRangeTo:   row.PriorDateRangeTo,
		Status:             row.Status,
		CreatedAt:          row.CreatedAt,
	}
}

func fromNudgeRowDoc(d *nudgeRowDoc) *model.NudgeRow {
	return &model.NudgeRow{
		ID:                 d.ID,
		EmployeeID:         types.EmployeeID(d.EmployeeID),
		NudgeType:          d.NudgeType,
		Title:              d.Title,
		Message:            d.Message,
		Instructions:       d.Instructions,
		MetricName:         d.MetricName,
		MetricValue:        d.MetricValue,
		Threshold:          d.Threshold,
		Operator:           d.Operator,
		Unit:               d.Unit,
		DateRangeFrom:      d.DateRangeFrom,
		DateRangeTo:        d.DateRangeTo,
		PriorDateRangeFrom: d.PriorDateRangeFrom,
		PriorDateRangeTo:   d.PriorDateRangeTo,
		Status:             d.Status,
		CreatedAt:          d.CreatedAt,
	}
}

type nudgeRepository struct {
	client *firestore.Client
}

func newNudgeRepository(client *firestore.Client) *nudgeRepository {
	return &nudgeRepository{client: client}
}

func (r *nudgeRepository) nudgesCollection() *firestore.CollectionRef {
	return r.client.Collection("nudges")
}

func (r *nudgeRepository) Put(ctx context.Context, rows []*model.NudgeRow) ([]*model.NudgeRow, error) {
	now := time.Now().UTC()

	created := make([]*model.NudgeRow, 0, len(rows))
	bw := r.client.BulkWriter(ctx)
	for _, row := range rows {
		c := *row
		if c.ID == 0 {
			// Time-ordered IDs preserve insertion order without a counter document
			c.ID = time.Now().UnixNano()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}

		docRef := r.nudgesCollection().Doc(strconv.FormatInt(c.ID, 10))
		if _, err := bw.Set(docRef, toNudgeRowDoc(&c)); err != nil {
			return nil, goerr.Wrap(err, "failed to queue nudge row write", goerr.V("id", c.ID))
		}
		created = append(created, &c)
	}
	bw.End()

	return created, nil
}

func (r *nudgeRepository) ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.NudgeRow, error) {
	iter := r.nudgesCollection().
		Where("EmployeeID", "==", string(employeeID)).
		OrderBy("ID", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	rows := make([]*model.NudgeRow, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate nudge rows",
				goerr.V("employeeID", employeeID))
		}

		var d nudgeRowDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal nudge row",
				goerr.V("employeeID", employeeID))
		}

		rows = append(rows, fromNudgeRowDoc(&d))
	}

	return rows, nil
}
