package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

type artifactRepository struct {
	db *sql.DB
}

func newArtifactRepository(db *sql.DB) *artifactRepository {
	return &artifactRepository{db: db}
}

func (r *artifactRepository) Get(ctx context.Context, employeeID types.EmployeeID, kind types.TaskKind) (*model.Artifact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT employee_id, kind, COALESCE(summary, ''), COALESCE(subject, ''),
		        COALESCE(body, ''), COALESCE(nudge_snippet, ''), created_at
		 FROM artifacts WHERE employee_id = ? AND kind = ?`,
		string(employeeID), string(kind),
	)

	var a model.Artifact
	var eid, k string
	err := row.Scan(&eid, &k, &a.Summary, &a.Subject, &a.Body, &a.NudgeSnippet, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "artifact not found",
			goerr.V("employeeID", employeeID), goerr.V("kind", kind))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get artifact",
			goerr.V("employeeID", employeeID), goerr.V("kind", kind))
	}

	a.EmployeeID = types.EmployeeID(eid)
	a.Kind = types.TaskKind(k)
	return &a, nil
}

func (r *artifactRepository) Put(ctx context.Context, artifact *model.Artifact) error {
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO artifacts (employee_id, kind, summary, subject, body, nudge_snippet, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (employee_id, kind) DO UPDATE SET
		   summary = excluded.summary,
		   subject = excluded.subject,
		   body = excluded.body,
		   nudge_snippet = excluded.nudge_snippet,
		   created_at = excluded.created_at`,
		string(artifact.EmployeeID), string(artifact.Kind),
		artifact.Summary, artifact.Subject, artifact.Body,
		artifact.NudgeSnippet, artifact.CreatedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put artifact",
			goerr.V("employeeID", artifact.EmployeeID), goerr.V("kind", artifact.Kind))
	}

	return nil
}
