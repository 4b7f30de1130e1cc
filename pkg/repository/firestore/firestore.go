package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
)

type Firestore struct {
	client       *firestore.Client
	styleSample  *styleSampleRepository
	artifact     *artifactRepository
	emailHistory *emailHistoryRepository
	nudge        *nudgeRepository
}

var _ interfaces.Repository = &Firestore{}

func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	return &Firestore{
		client:       client,
		styleSample:  newStyleSampleRepository(client),
		artifact:     newArtifactRepository(client),
		emailHistory: newEmailHistoryRepository(client),
		nudge:        newNudgeRepository(client),
	}, nil
}

func (f *Firestore) StyleSample() interfaces.StyleSampleRepository {
	return f.styleSample
}

func (f *Firestore) Artifact() interfaces.ArtifactRepository {
	return f.artifact
}

func (f *Firestore) EmailHistory() interfaces.EmailHistoryRepository {
	return f.emailHistory
}

func (f *Firestore) Nudge() interfaces.NudgeRepository {
	return f.nudge
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
