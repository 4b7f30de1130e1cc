package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

// artifactKey is a composite key for cached artifacts
type artifactKey struct {
	employeeID types.EmployeeID
	kind       types.TaskKind
}

type artifactRepository struct {
	mu        sync.RWMutex
	artifacts map[artifactKey]*model.Artifact
}

func newArtifactRepository() *artifactRepository {
	return &artifactRepository{
		artifacts: make(map[artifactKey]*model.Artifact),
	}
}

func copyArtifact(a *model.Artifact) *model.Artifact {
	copied := *a
	return &copied
}

func (r *artifactRepository) Get(ctx context.Context, employeeID types.EmployeeID, kind types.TaskKind) (*model.Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.artifacts[artifactKey{employeeID: employeeID, kind: kind}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "artifact not found",
			goerr.V("employeeID", employeeID), goerr.V("kind", kind))
	}

	return copyArtifact(a), nil
}

func (r *artifactRepository) Put(ctx context.Context, artifact *model.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyArtifact(artifact)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.artifacts[artifactKey{employeeID: stored.EmployeeID, kind: stored.Kind}] = stored
	return nil
}
