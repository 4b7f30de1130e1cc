package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/utils/logging"
)

// getOrGenerate is the deduplication cache around one generation. The
// cache holds at most one live artifact per (employee, kind), keyed by
// the fingerprint of the nudge set it was generated from.
//
// A cached artifact whose fingerprint matches the current nudge set is
// returned as-is and generate is never invoked. A fingerprint mismatch
// invalidates the entry and falls through to regeneration, overwriting
// it. At most one generation is in flight per (employee, kind) at a
// time; concurrent callers share the winner's result.
//
// If persisting a fresh artifact fails, the artifact is still returned
// to the caller. The failed write is logged so a future duplicate
// generation is an understood consequence, not a silent one.
func (uc *UseCases) getOrGenerate(ctx context.Context, employeeID types.EmployeeID, kind types.TaskKind, facts []model.NudgeFact, generate func(ctx context.Context) (*model.Artifact, error)) (*model.Artifact, error) {
	fingerprint := model.Fingerprint(facts)
	key := string(employeeID) + "/" + string(kind)

	result, err, _ := uc.flight.Do(key, func() (any, error) {
		cached, err := uc.repo.Artifact().Get(ctx, employeeID, kind)
		switch {
		case err == nil:
			if cached.NudgeSnippet == fingerprint {
				logging.From(ctx).Info("artifact cache hit",
					"employeeID", employeeID,
					"kind", kind,
				)
				return cached, nil
			}
			logging.From(ctx).Info("nudge set changed, regenerating",
				"employeeID", employeeID,
				"kind", kind,
			)
		case errors.Is(err, types.ErrNotFound):
			// cache miss, generate below
		default:
			return nil, goerr.Wrap(types.ErrPersistence, "failed to read artifact cache",
				goerr.V("employeeID", employeeID),
				goerr.V("kind", kind),
				goerr.V("cause", err.Error()),
			)
		}

		artifact, err := generate(ctx)
		if err != nil {
			return nil, err
		}

		artifact.NudgeSnippet = fingerprint
		if artifact.CreatedAt.IsZero() {
			artifact.CreatedAt = time.Now()
		}

		if err := uc.repo.Artifact().Put(ctx, artifact); err != nil {
			logging.From(ctx).Error("failed to persist generated artifact, returning it anyway",
				"employeeID", employeeID,
				"kind", kind,
				"error", err.Error(),
			)
		}

		return artifact, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.Artifact), nil
}
