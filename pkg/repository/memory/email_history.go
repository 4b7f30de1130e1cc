package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type emailHistoryRepository struct {
	mu      sync.RWMutex
	records map[model.EmailRecordID]*model.EmailRecord
}

func newEmailHistoryRepository() *emailHistoryRepository {
	return &emailHistoryRepository{
		records: make(map[model.EmailRecordID]*model.EmailRecord),
	}
}

func copyEmailRecord(rec *model.EmailRecord) *model.EmailRecord {
	copied := *rec
	if rec.SentAt != nil {
		t := *rec.SentAt
		copied.SentAt = &t
	}
	return &copied
}

func (r *emailHistoryRepository) Append(ctx context.Context, record *model.EmailRecord) (*model.EmailRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyEmailRecord(record)
	if created.ID == "" {
		created.ID = model.NewEmailRecordID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.records[created.ID] = created
	return copyEmailRecord(created), nil
}

func (r *emailHistoryRepository) ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.EmailRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.EmailRecord, 0)
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID {
			result = append(result, copyEmailRecord(rec))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *emailHistoryRepository) MarkSent(ctx context.Context, id model.EmailRecordID, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "email record not found", goerr.V("id", id))
	}

	rec.Sent = true
	rec.SentAt = &sentAt
	return nil
}
