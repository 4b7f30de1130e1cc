package memory

import (
	"context"
	"sync"
	"time"

	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type styleSampleRepository struct {
	mu      sync.RWMutex
	samples map[types.UserID][]*model.StyleSample
}

func newStyleSampleRepository() *styleSampleRepository {
	return &styleSampleRepository{
		samples: make(map[types.UserID][]*model.StyleSample),
	}
}

func copyStyleSample(s *model.StyleSample) *model.StyleSample {
	copied := &model.StyleSample{
		UserID:    s.UserID,
		Text:      s.Text,
		Seq:       s.Seq,
		CreatedAt: s.CreatedAt,
	}
	if s.Embedding != nil {
		copied.Embedding = make([]float32, len(s.Embedding))
		copy(copied.Embedding, s.Embedding)
	}
	return copied
}

func (r *styleSampleRepository) Append(ctx context.Context, userID types.UserID, samples []*model.StyleSample) ([]*model.StyleSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	existing := r.samples[userID]

	created := make([]*model.StyleSample, 0, len(samples))
	for i, s := range samples {
		c := copyStyleSample(s)
		c.UserID = userID
		c.Seq = len(existing) + i
		c.CreatedAt = now
		created = append(created, c)
	}

	r.samples[userID] = append(existing, created...)

	result := make([]*model.StyleSample, len(created))
	for i, c := range created {
		result[i] = copyStyleSample(c)
	}
	return result, nil
}

func (r *styleSampleRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.StyleSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.samples[userID]
	result := make([]*model.StyleSample, len(stored))
	for i, s := range stored {
		result[i] = copyStyleSample(s)
	}
	return result, nil
}
