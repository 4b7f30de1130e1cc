package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// styleSampleDoc is the Firestore document representation of
// model.StyleSample. Embedding is stored as firestore.Vector32.
type styleSampleDoc struct {
	UserID    string             `firestore:"UserID"`
	Text      string             `firestore:"Text"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	Seq       int                `firestore:"Seq"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

// userProfileDoc holds the per-user sample counter used to assign
// monotonically increasing sequence numbers under concurrent appends.
type userProfileDoc struct {
	NextSeq int `firestore:"NextSeq"`
}

func toStyleSampleDoc(s *model.StyleSample) *styleSampleDoc {
	doc := &styleSampleDoc{
		UserID:    string(s.UserID),
		Text:      s.Text,
		Seq:       s.Seq,
		CreatedAt: s.CreatedAt,
	}
	if len(s.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(s.Embedding)
	}
	return doc
}

func fromStyleSampleDoc(d *styleSampleDoc) *model.StyleSample {
	s := &model.StyleSample{
		UserID:    types.UserID(d.UserID),
		Text:      d.Text,
		Seq:       d.Seq,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		s.Embedding = []float32(d.Embedding)
	}
	return s
}

type styleSampleRepository struct {
	client *firestore.Client
}

func newStyleSampleRepository(client *firestore.Client) *styleSampleRepository {
	return &styleSampleRepository{client: client}
}

// samplesCollection returns the subcollection path:
// style_profiles/{userID}/samples
func (r *styleSampleRepository) samplesCollection(userID types.UserID) *firestore.CollectionRef {
	return r.client.Collection("style_profiles").Doc(string(userID)).Collection("samples")
}

func (r *styleSampleRepository) Append(ctx context.Context, userID types.UserID, samples []*model.StyleSample) ([]*model.StyleSample, error) {
	profileRef := r.client.Collection("style_profiles").Doc(string(userID))
	now := time.Now().UTC()

	created := make([]*model.StyleSample, len(samples))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		nextSeq := 0
		snap, err := tx.Get(profileRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get style profile", goerr.V("userID", userID))
		}
		if snap != nil && snap.Exists() {
			var profile userProfileDoc
			if err := snap.DataTo(&profile); err != nil {
				return goerr.Wrap(err, "failed to unmarshal style profile", goerr.V("userID", userID))
			}
			nextSeq = profile.NextSeq
		}

		for i, s := range samples {
			c := &model.StyleSample{
				UserID:    userID,
				Text:      s.Text,
				Embedding: s.Embedding,
				Seq:       nextSeq + i,
				CreatedAt: now,
			}
			docRef := r.samplesCollection(userID).Doc(fmt.Sprintf("%08d", c.Seq))
			if err := tx.Set(docRef, toStyleSampleDoc(c)); err != nil {
				return goerr.Wrap(err, "failed to write style sample", goerr.V("userID", userID))
			}
			created[i] = c
		}

		return tx.Set(profileRef, &userProfileDoc{NextSeq: nextSeq + len(samples)})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append style samples", goerr.V("userID", userID))
	}

	return created, nil
}

func (r *styleSampleRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.StyleSample, error) {
	iter := r.samplesCollection(userID).
		OrderBy("Seq", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	samples := make([]*model.StyleSample, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate style samples", goerr.V("userID", userID))
		}

		var d styleSampleDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal style sample", goerr.V("userID", userID))
		}

		samples = append(samples, fromStyleSampleDoc(&d))
	}

	return samples, nil
}
