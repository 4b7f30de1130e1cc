package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

func runNudgeTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put assigns IDs and ListByEmployee keeps insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eid := types.EmployeeID(fmt.Sprintf("emp-%d", time.Now().UnixNano()))
		threshold := 3.0
		rows := []*model.NudgeRow{
			{
				EmployeeID: eid,
				Title:      "Declining Code Review Participation",
				Message:    "Review count dropped below threshold",
				Threshold:  &threshold,
				MetricName: "reviews",
				Unit:       "count",
				Operator:   "less_than",
			},
			{
				EmployeeID: eid,
				Title:      "Low Sprint Velocity",
				Message:    "Velocity trending down",
			},
		}
		_, err := repo.Nudge().Put(ctx, rows)
		gt.NoError(t, err).Required()

		got, err := repo.Nudge().ListByEmployee(ctx, eid)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0].Title).Equal("Declining Code Review Participation")
		gt.Value(t, got[1].Title).Equal("Low Sprint Velocity")
		gt.Value(t, got[0].ID).NotEqual(got[1].ID)
		gt.Value(t, got[0].Threshold).NotNil()
		gt.Value(t, *got[0].Threshold).Equal(3.0)
		gt.Value(t, got[1].Threshold).Nil()
	})

	t.Run("optional fields survive a round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		eid := types.EmployeeID(fmt.Sprintf("emp-%d", time.Now().UnixNano()))
		from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
		rows := []*model.NudgeRow{{
			EmployeeID:    eid,
			Title:         "Meeting Overload",
			Message:       "Too many hours in meetings",
			Instructions:  "Suggest blocking focus time",
			MetricName:    "meeting_hours",
			Unit:          "hours",
			Operator:      "greater_than",
			DateRangeFrom: &from,
			DateRangeTo:   &to,
		}}
		_, err := repo.Nudge().Put(ctx, rows)
		gt.NoError(t, err).Required()

		got, err := repo.Nudge().ListByEmployee(ctx, eid)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Value(t, got[0].Instructions).Equal("Suggest blocking focus time")
		gt.Value(t, got[0].DateRangeFrom).NotNil()
		gt.Value(t, got[0].DateRangeFrom.Format("2006-01-02")).Equal("2026-07-01")
		gt.Value(t, got[0].PriorDateRangeFrom).Nil()
	})

	t.Run("unknown employee yields empty slice", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		got, err := repo.Nudge().ListByEmployee(ctx, types.EmployeeID(fmt.Sprintf("emp-none-%d", time.Now().UnixNano())))
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(0)
	})
}

func TestNudgeRepository(t *testing.T) {
	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			runNudgeTest(t, factory)
		})
	}
}
