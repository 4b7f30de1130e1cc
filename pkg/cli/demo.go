package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stylemail-dev/stylemail/pkg/cli/config"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdDemo() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "demo",
		Usage: "Load demo nudge data into the repository",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			rows := demoNudges(time.Now())
			created, err := repo.Nudge().Put(ctx, rows)
			if err != nil {
				return goerr.Wrap(err, "failed to store demo nudges")
			}

			success := color.New(color.FgGreen)
			for _, row := range created {
				success.Printf("✓ created nudge %q for %s\n", row.Title, row.EmployeeID)
			}

			return nil
		},
	}
}

func demoNudges(now time.Time) []*model.NudgeRow {
	daysAgo := func(d int) *time.Time {
		t := now.AddDate(0, 0, -d)
		return &t
	}
	f := func(v float64) *float64 { return &v }

	return []*model.NudgeRow{
		{
			EmployeeID:         "emp_001",
			NudgeType:          "performance",
			Title:              "Declining Code Review Participation",
			Message:            "Your code review activity has decreased by 40% compared to last month",
			Instructions:       "Please increase your participation in code reviews. Aim to review at least 5 pull requests per week and provide constructive feedback to team members.",
			MetricName:         "code_reviews_completed",
			MetricValue:        f(12),
			Threshold:          f(20),
			Operator:           "less_than",
			Unit:               "count",
			DateRangeFrom:      daysAgo(30),
			DateRangeTo:        daysAgo(0),
			PriorDateRangeFrom: daysAgo(60),
			PriorDateRangeTo:   daysAgo(30),
			Status:             "active",
		},
		{
			EmployeeID:         "emp_001",
			NudgeType:          "performance",
			Title:              "Low Sprint Velocity",
			Message:            "Your story points completed this sprint are 35% below team average",
			Instructions:       "Review your task breakdown and time management. Consider pair programming sessions if you're blocked on complex issues. Reach out to your tech lead for support.",
			MetricName:         "story_points_completed",
			MetricValue:        f(13),
			Threshold:          f(20),
			Operator:           "less_than",
			Unit:               "points",
			DateRangeFrom:      daysAgo(14),
			DateRangeTo:        daysAgo(0),
			PriorDateRangeFrom: daysAgo(28),
			PriorDateRangeTo:   daysAgo(14),
			Status:             "active",
		},
		{
			EmployeeID:         "emp_001",
			NudgeType:          "attendance",
			Title:              "Frequent Late Arrivals",
			Message:            "You've been late 6 times in the past 20 working days",
			Instructions:       "Please ensure you arrive by 9:00 AM. If you're experiencing commute issues, discuss flexible hours with your manager. Consistent tardiness impacts team standup meetings.",
			MetricName:         "late_arrivals",
			MetricValue:        f(6),
			Threshold:          f(3),
			Operator:           "greater_than",
			Unit:               "days",
			DateRangeFrom:      daysAgo(20),
			DateRangeTo:        daysAgo(0),
			PriorDateRangeFrom: daysAgo(40),
			PriorDateRangeTo:   daysAgo(20),
			Status:             "active",
		},
		{
			EmployeeID:    "emp_002",
			NudgeType:     "peer_review",
			Title:         "Pending Peer Feedback Collection",
			Message:       "You have 3 pending peer review requests that need completion",
			Instructions:  "Please complete peer reviews for your colleagues by end of this week. Your feedback is important for their performance evaluations and professional development.",
			MetricName:    "peer_reviews_pending",
			MetricValue:   f(3),
			Threshold:     f(0),
			Operator:      "greater_than",
			Unit:          "count",
			DateRangeFrom: daysAgo(7),
			DateRangeTo:   daysAgo(0),
			Status:        "active",
		},
		{
			EmployeeID:         "emp_002",
			NudgeType:          "collaboration",
			Title:              "Low Meeting Attendance Rate",
			Message:            "Your meeting attendance rate is 65%, below the expected 90%",
			Instructions:       "Please make an effort to attend scheduled team meetings. If you have conflicts, notify the organizer in advance and review meeting notes afterward.",
			MetricName:         "meeting_attendance_rate",
			MetricValue:        f(65),
			Threshold:          f(90),
			Operator:           "less_than",
			Unit:               "%",
			DateRangeFrom:      daysAgo(30),
			DateRangeTo:        daysAgo(0),
			PriorDateRangeFrom: daysAgo(60),
			PriorDateRangeTo:   daysAgo(30),
			Status:             "active",
		},
		{
			EmployeeID:    "emp_003",
			NudgeType:     "training",
			Title:         "Overdue Compliance Training",
			Message:       "You have 2 mandatory training modules that are overdue",
			Instructions:  "Complete the following trainings by end of week: 1) Data Privacy & Security (2 hours), 2) Workplace Harassment Prevention (1.5 hours). These are required for all employees.",
			MetricName:    "overdue_training_modules",
			MetricValue:   f(2),
			Threshold:     f(0),
			Operator:      "greater_than",
			Unit:          "modules",
			DateRangeFrom: daysAgo(60),
			DateRangeTo:   daysAgo(0),
			Status:        "active",
		},
	}
}
