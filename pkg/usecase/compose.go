package usecase

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/service/style"
)

//go:embed prompt/plain_email.md
var plainEmailPromptTmpl string

//go:embed prompt/nudge_email.md
var nudgeEmailPromptTmpl string

//go:embed prompt/nudge_summary.md
var nudgeSummaryPromptTmpl string

var promptTemplates = map[types.TaskKind]*template.Template{
	types.TaskPlainEmail:   template.Must(template.New("plain_email").Parse(plainEmailPromptTmpl)),
	types.TaskNudgeEmail:   template.Must(template.New("nudge_email").Parse(nudgeEmailPromptTmpl)),
	types.TaskNudgeSummary: template.Must(template.New("nudge_summary").Parse(nudgeSummaryPromptTmpl)),
}

// promptData holds all data for the generation prompt templates
type promptData struct {
	Samples      []string
	Facts        []model.NudgeFact
	Subject      string
	Instructions string
}

// composePrompt builds the generation prompt for one task kind. It is
// a pure function: retrieved style samples become verbatim voice
// examples, nudge facts are rendered as bullets in the given order,
// and the caller's instructions close the prompt.
//
// When the composed prompt exceeds budget, the least recent style
// samples are dropped first. Facts are never dropped; a prompt that
// still exceeds budget with zero samples is returned as-is.
func composePrompt(kind types.TaskKind, samples []style.Match, facts []model.NudgeFact, subject, instructions string, budget int) (string, error) {
	tmpl, ok := promptTemplates[kind]
	if !ok {
		return "", goerr.Wrap(types.ErrComposition, "unknown task kind", goerr.V("kind", kind))
	}

	remaining := make([]style.Match, len(samples))
	copy(remaining, samples)

	for {
		prompt, err := renderPrompt(tmpl, promptData{
			Samples:      sampleTexts(remaining),
			Facts:        facts,
			Subject:      subject,
			Instructions: instructions,
		})
		if err != nil {
			return "", err
		}

		if len(prompt) <= budget || len(remaining) == 0 {
			return prompt, nil
		}

		remaining = dropOldest(remaining)
	}
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", goerr.Wrap(types.ErrComposition, "failed to render prompt template", goerr.V("cause", err.Error()))
	}
	return sb.String(), nil
}

func sampleTexts(samples []style.Match) []string {
	texts := make([]string, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
	}
	return texts
}

// dropOldest removes the sample with the lowest insertion sequence.
// Style examples are sacrificed before nudge facts since facts carry
// the task-critical content.
func dropOldest(samples []style.Match) []style.Match {
	oldest := 0
	for i, s := range samples {
		if s.Seq < samples[oldest].Seq {
			oldest = i
		}
	}
	return append(samples[:oldest:oldest], samples[oldest+1:]...)
}

// emailResponseSchema instructs the LLM to emit a parseable email
func emailResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "GeneratedEmail",
		Description: "A complete email written in the requested voice",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"subject": {
				Type:        gollem.TypeString,
				Description: "The email subject line. Plain text, no markdown.",
				Required:    true,
			},
			"body": {
				Type:        gollem.TypeString,
				Description: "The full email body including greeting and sign-off. Plain text.",
				Required:    true,
			},
		},
	}
}

// summaryResponseSchema instructs the LLM to emit a single summary string
func summaryResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "GeneratedSummary",
		Description: "A narrative summary of the employee's active nudges",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "Narrative summary text. Plain text, no markdown.",
				Required:    true,
			},
		},
	}
}
