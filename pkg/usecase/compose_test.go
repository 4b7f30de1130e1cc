package usecase_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/service/style"
	"github.com/stylemail-dev/stylemail/pkg/usecase"
)

func TestComposePrompt(t *testing.T) {
	samples := []style.Match{
		{Text: "Hi team, quick note on the sprint.", Score: 0.9, Seq: 0},
		{Text: "Thanks for pushing this through. Best, Alex", Score: 0.8, Seq: 1},
	}
	facts := []model.NudgeFact{
		{Title: "Declining Code Review Participation", Instructions: "Encourage more reviews", Metrics: "Threshold: 3, ..."},
		{Title: "Low Sprint Velocity", Instructions: "No Instructions", Metrics: "Threshold: N/A, ..."},
	}

	t.Run("plain email embeds samples verbatim before the task", func(t *testing.T) {
		prompt, err := usecase.ComposePrompt(types.TaskPlainEmail, samples, nil, "Sprint update", "Announce the release date", 12000)
		gt.NoError(t, err).Required()
		gt.String(t, prompt).Contains("Hi team, quick note on the sprint.")
		gt.String(t, prompt).Contains("Thanks for pushing this through. Best, Alex")
		gt.String(t, prompt).Contains("Sprint update")
		gt.String(t, prompt).Contains("Announce the release date")

		voiceIdx := strings.Index(prompt, "Hi team, quick note")
		taskIdx := strings.Index(prompt, "Announce the release date")
		gt.Bool(t, voiceIdx < taskIdx).True()
	})

	t.Run("empty samples state neutral tone explicitly", func(t *testing.T) {
		prompt, err := usecase.ComposePrompt(types.TaskPlainEmail, nil, nil, "Hello", "Say hello", 12000)
		gt.NoError(t, err).Required()
		gt.String(t, prompt).Contains("No style reference available, use a neutral professional tone.")
	})

	t.Run("nudge email renders facts as bullets in given order", func(t *testing.T) {
		prompt, err := usecase.ComposePrompt(types.TaskNudgeEmail, samples, facts, "", "Keep it supportive", 12000)
		gt.NoError(t, err).Required()
		gt.String(t, prompt).Contains("Declining Code Review Participation")
		gt.String(t, prompt).Contains("Low Sprint Velocity")
		gt.String(t, prompt).Contains("Keep it supportive")

		first := strings.Index(prompt, "Declining Code Review Participation")
		second := strings.Index(prompt, "Low Sprint Velocity")
		gt.Bool(t, first < second).True()
	})

	t.Run("nudge summary includes metrics strings", func(t *testing.T) {
		prompt, err := usecase.ComposePrompt(types.TaskNudgeSummary, nil, facts, "", "Summarize for a 1:1", 12000)
		gt.NoError(t, err).Required()
		gt.String(t, prompt).Contains("Threshold: 3, ...")
		gt.String(t, prompt).Contains("Summarize for a 1:1")
	})

	t.Run("unknown kind fails composition", func(t *testing.T) {
		_, err := usecase.ComposePrompt(types.TaskKind("bogus"), nil, nil, "", "x", 12000)
		gt.Bool(t, errors.Is(err, types.ErrComposition)).True()
	})

	t.Run("budget drops least recent samples first", func(t *testing.T) {
		long := []style.Match{
			{Text: strings.Repeat("oldest sample text. ", 30), Score: 0.9, Seq: 0},
			{Text: "newest short sample", Score: 0.5, Seq: 1},
		}

		full, err := usecase.ComposePrompt(types.TaskNudgeEmail, long, facts, "", "instr", 100000)
		gt.NoError(t, err).Required()

		budget := len(full) - 1
		trimmed, err := usecase.ComposePrompt(types.TaskNudgeEmail, long, facts, "", "instr", budget)
		gt.NoError(t, err).Required()

		gt.Value(t, strings.Contains(trimmed, "oldest sample text.")).Equal(false)
		gt.String(t, trimmed).Contains("newest short sample")
		// facts are never sacrificed
		gt.String(t, trimmed).Contains("Declining Code Review Participation")
	})

	t.Run("facts survive even when budget is unreachable", func(t *testing.T) {
		prompt, err := usecase.ComposePrompt(types.TaskNudgeSummary, samples, facts, "", "instr", 1)
		gt.NoError(t, err).Required()
		gt.String(t, prompt).Contains("Declining Code Review Participation")
		gt.Value(t, strings.Contains(prompt, "Hi team, quick note")).Equal(false)
	})
}

func TestDropOldest(t *testing.T) {
	samples := []style.Match{
		{Text: "b", Seq: 2},
		{Text: "a", Seq: 0},
		{Text: "c", Seq: 5},
	}

	rest := usecase.DropOldest(samples)
	gt.Array(t, rest).Length(2)
	gt.Value(t, rest[0].Text).Equal("b")
	gt.Value(t, rest[1].Text).Equal("c")
}
