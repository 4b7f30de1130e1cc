package interfaces

import (
	"context"

	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type StyleSampleRepository interface {
	// Append adds samples to a user's profile, assigning insertion
	// sequence numbers and creation timestamps. The append is atomic
	// with respect to concurrent appends for the same user.
	Append(ctx context.Context, userID types.UserID, samples []*model.StyleSample) ([]*model.StyleSample, error)

	// ListByUser retrieves all samples of one user in insertion order.
	// A user with no samples yields an empty slice, not an error.
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.StyleSample, error)
}
