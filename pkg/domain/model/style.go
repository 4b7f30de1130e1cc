package model

import (
	"time"

	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector.
// All samples in a store must be embedded with the same model and
// dimension; mixing embedding spaces corrupts similarity ranking.
const EmbeddingDimension = 768

// StyleSample is one example of a user's writing, stored with its
// embedding for nearest-neighbor retrieval. Samples are immutable once
// seeded; a re-seed appends additional samples rather than replacing.
type StyleSample struct {
	UserID    types.UserID
	Text      string
	Embedding []float32 // Vector embedding for similarity search (768 dimensions)
	Seq       int       // Insertion order within the user's profile, assigned by the repository
	CreatedAt time.Time
}
