package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}

func runArtifactTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns not found before Put", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eid := types.EmployeeID(fmt.Sprintf("emp-%d", time.Now().UnixNano()))
		_, err := repo.Artifact().Get(ctx, eid, types.TaskNudgeSummary)
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Put then Get round-trips", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eid := types.EmployeeID(fmt.Sprintf("emp-%d", time.Now().UnixNano()))
		err := repo.Artifact().Put(ctx, &model.Artifact{
			EmployeeID:   eid,
			Kind:         types.TaskNudgeSummary,
			Summary:      "Sarah has two active nudges this month.",
			NudgeSnippet: "Declining Code Review Participation, Low Sprint Velocity",
		})
		gt.NoError(t, err).Required()

		got, err := repo.Artifact().Get(ctx, eid, types.TaskNudgeSummary)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Summary).Equal("Sarah has two active nudges this month.")
		gt.Value(t, got.NudgeSnippet).Equal("Declining Code Review Participation, Low Sprint Velocity")
		gt.Bool(t, got.CreatedAt.IsZero()).False()
	})

	t.Run("Put overwrites the live entry per kind", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eid := types.EmployeeID(fmt.Sprintf("emp-%d", time.Now().UnixNano()))
		gt.NoError(t, repo.Artifact().Put(ctx, &model.Artifact{
			EmployeeID: eid, Kind: types.TaskNudgeSummary,
			Summary: "old", NudgeSnippet: "A",
		})).Required()
		gt.NoError(t, repo.Artifact().Put(ctx, &model.Artifact{
			EmployeeID: eid, Kind: types.TaskNudgeSummary,
			Summary: "new", NudgeSnippet: "B",
		})).Required()

		got, err := repo.Artifact().Get(ctx, eid, types.TaskNudgeSummary)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Summary).Equal("new")
		gt.Value(t, got.NudgeSnippet).Equal("B")
	})

	t.Run("kinds are cached independently", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eid := types.EmployeeID(fmt.Sprintf("emp-%d", time.Now().UnixNano()))
		gt.NoError(t, repo.Artifact().Put(ctx, &model.Artifact{
			EmployeeID: eid, Kind: types.TaskNudgeSummary, Summary: "summary text",
		})).Required()
		gt.NoError(t, repo.Artifact().Put(ctx, &model.Artifact{
			EmployeeID: eid, Kind: types.TaskNudgeEmail,
			Subject: "Check-in", Body: "Hi Sarah,",
		})).Required()

		summary, err := repo.Artifact().Get(ctx, eid, types.TaskNudgeSummary)
		gt.NoError(t, err).Required()
		gt.Value(t, summary.Summary).Equal("summary text")

		email, err := repo.Artifact().Get(ctx, eid, types.TaskNudgeEmail)
		gt.NoError(t, err).Required()
		gt.Value(t, email.Subject).Equal("Check-in")
	})
}

func TestArtifactRepository(t *testing.T) {
	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			runArtifactTest(t, factory)
		})
	}
}
