package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type artifactDoc struct {
	EmployeeID   string    `firestore:"EmployeeID"`
	Kind         string    `firestore:"Kind"`
	Summary      string    `firestore:"Summary,omitempty"`
	Subject      string    `firestore:"Subject,omitempty"`
	Body         string    `firestore:"Body,omitempty"`
	NudgeSnippet string    `firestore:"NudgeSnippet"`
	CreatedAt    time.Time `firestore:"CreatedAt"`
}

func toArtifactDoc(a *model.Artifact) *artifactDoc {
	return &artifactDoc{
		EmployeeID:   string(a.EmployeeID),
		Kind:         string(a.Kind),
		Summary:      a.Summary,
		Subject:      a.Subject,
		Body:         a.Body,
		NudgeSnippet: a.NudgeSnippet,
		CreatedAt:    a.CreatedAt,
	}
}

func fromArtifactDoc(d *artifactDoc) *model.Artifact {
	return &model.Artifact{
		EmployeeID:   types.EmployeeID(d.EmployeeID),
		Kind:         types.TaskKind(d.Kind),
		Summary:      d.Summary,
		Subject:      d.Subject,
		Body:         d.Body,
		NudgeSnippet: d.NudgeSnippet,
		CreatedAt:    d.CreatedAt,
	}
}

type artifactRepository struct {
	client *firestore.Client
}

func newArtifactRepository(client *firestore.Client) *artifactRepository {
	return &artifactRepository{client: client}
}

// artifactDocID keys the single live artifact per (employee, kind)
func artifactDocID(employeeID types.EmployeeID, kind types.TaskKind) string {
	return fmt.Sprintf("%s_%s", employeeID, kind)
}

func (r *artifactRepository) Get(ctx context.Context, employeeID types.EmployeeID, kind types.TaskKind) (*model.Artifact, error) {
	docRef := r.client.Collection("artifacts").Doc(artifactDocID(employeeID, kind))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "artifact not found",
				goerr.V("employeeID", employeeID), goerr.V("kind", kind))
		}
		return nil, goerr.Wrap(err, "failed to get artifact",
			goerr.V("employeeID", employeeID), goerr.V("kind", kind))
	}

	var d artifactDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal artifact",
			goerr.V("employeeID", employeeID), goerr.V("kind", kind))
	}

	return fromArtifactDoc(&d), nil
}

func (r *artifactRepository) Put(ctx context.Context, artifact *model.Artifact) error {
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection("artifacts").Doc(artifactDocID(artifact.EmployeeID, artifact.Kind))
	if _, err := docRef.Set(ctx, toArtifactDoc(artifact)); err != nil {
		return goerr.Wrap(err, "failed to put artifact",
			goerr.V("employeeID", artifact.EmployeeID), goerr.V("kind", artifact.Kind))
	}

	return nil
}
