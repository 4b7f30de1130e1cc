package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type emailRecordDoc struct {
	ID           string     `firestore:"ID"`
	EmployeeID   string     `firestore:"EmployeeID"`
	Subject      string     `firestore:"Subject"`
	Body         string     `firestore:"Body"`
	NudgeSnippet string     `firestore:"NudgeSnippet"`
	Sent         bool       `firestore:"Sent"`
	SentAt       *time.Time `firestore:"SentAt,omitempty"`
	CreatedAt    time.Time  `firestore:"CreatedAt"`
}

func toEmailRecordDoc(rec *model.EmailRecord) *emailRecordDoc {
	return &emailRecordDoc{
		ID:           string(rec.ID),
		EmployeeID:   string(rec.EmployeeID),
		Subject:      rec.Subject,
		Body:         rec.Body,
		NudgeSnippet: rec.NudgeSnippet,
		Sent:         rec.Sent,
		SentAt:       rec.SentAt,
		CreatedAt:    rec.CreatedAt,
	}
}

func fromEmailRecordDoc(d *emailRecordDoc) *model.EmailRecord {
	return &model.EmailRecord{
		ID:           model.EmailRecordID(d.ID),
		EmployeeID:   types.EmployeeID(d.EmployeeID),
		Subject:      d.Subject,
		Body:         d.Body,
		NudgeSnippet: d.NudgeSnippet,
		Sent:         d.Sent,
		SentAt:       d.SentAt,
		CreatedAt:    d.CreatedAt,
	}
}

type emailHistoryRepository struct {
	client *firestore.Client
}

func newEmailHistoryRepository(client *firestore.Client) *emailHistoryRepository {
	return &emailHistoryRepository{client: client}
}

func (r *emailHistoryRepository) emailsCollection() *firestore.CollectionRef {
	return r.client.Collection("emails")
}

func (r *emailHistoryRepository) Append(ctx context.Context, record *model.EmailRecord) (*model.EmailRecord, error) {
	created := *record
	if created.ID == "" {
		created.ID = model.NewEmailRecordID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docRef := r.emailsCollection().Doc(string(created.ID))
	if _, err := docRef.Create(ctx, toEmailRecordDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to append email record",
			goerr.V("employeeID", created.EmployeeID))
	}

	return &created, nil
}

func (r *emailHistoryRepository) ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.EmailRecord, error) {
	iter := r.emailsCollection().
		Where("EmployeeID", "==", string(employeeID)).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*model.EmailRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate email records",
				goerr.V("employeeID", employeeID))
		}

		var d emailRecordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal email record",
				goerr.V("employeeID", employeeID))
		}

		records = append(records, fromEmailRecordDoc(&d))
	}

	return records, nil
}

func (r *emailHistoryRepository) MarkSent(ctx context.Context, id model.EmailRecordID, sentAt time.Time) error {
	docRef := r.emailsCollection().Doc(string(id))
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "Sent", Value: true},
		{Path: "SentAt", Value: sentAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "email record not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to mark email record sent", goerr.V("id", id))
	}

	return nil
}
