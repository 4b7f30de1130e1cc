package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type nudgeRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*model.NudgeRow
	nextID int64
}

func newNudgeRepository() *nudgeRepository {
	return &nudgeRepository{
		rows:   make(map[int64]*model.NudgeRow),
		nextID: 1,
	}
}

func copyNudgeRow(row *model.NudgeRow) *model.NudgeRow {
	copied := *row
	return &copied
}

func (r *nudgeRepository) Put(ctx context.Context, rows []*model.NudgeRow) ([]*model.NudgeRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := make([]*model.NudgeRow, 0, len(rows))
	for _, row := range rows {
		c := copyNudgeRow(row)
		if c.ID == 0 {
			c.ID = r.nextID
			r.nextID++
		} else if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		r.rows[c.ID] = c
		created = append(created, copyNudgeRow(c))
	}

	return created, nil
}

func (r *nudgeRepository) ListByEmployee(ctx context.Context, employeeID types.EmployeeID) ([]*model.NudgeRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.NudgeRow, 0)
	for _, row := range r.rows {
		if row.EmployeeID != employeeID {
			continue
		}
		result = append(result, copyNudgeRow(row))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}
