package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/stylemail-dev/stylemail/pkg/domain/model"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
	"github.com/stylemail-dev/stylemail/pkg/utils/async"
	"github.com/stylemail-dev/stylemail/pkg/utils/logging"
)

const (
	generationAttempts     = 3
	generationRetryBackoff = time.Second
)

// SeedStyle adds writing samples to a user's style profile
func (uc *UseCases) SeedStyle(ctx context.Context, userID types.UserID, samples []string) error {
	_, err := uc.styleSvc.Seed(ctx, userID, samples)
	return err
}

// LocalNudgeFacts reads an employee's stored nudge rows and converts
// them to the canonical fact shape. Used when no external provider is
// configured or the caller supplies no credentials.
func (uc *UseCases) LocalNudgeFacts(ctx context.Context, employeeID types.EmployeeID) ([]model.NudgeFact, error) {
	if err := employeeID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid employee ID", goerr.V("employeeID", employeeID))
	}

	rows, err := uc.repo.Nudge().ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to list nudges",
			goerr.V("employeeID", employeeID),
			goerr.V("cause", err.Error()),
		)
	}

	return model.RowFacts(rows), nil
}

// GeneratePlainEmail writes an email in the user's voice from a free
// subject and instruction. Plain emails are ad hoc content: they skip
// the artifact cache and the audit history.
func (uc *UseCases) GeneratePlainEmail(ctx context.Context, userID types.UserID, subject, prompt string) (*model.Artifact, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid user ID", goerr.V("userID", userID))
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(prompt) == "" {
		return nil, goerr.Wrap(types.ErrValidation, "subject and prompt are required", goerr.V("userID", userID))
	}

	samples, err := uc.styleSvc.Retrieve(ctx, userID, prompt, uc.retrieveCount)
	if err != nil {
		return nil, err
	}

	promptText, err := composePrompt(types.TaskPlainEmail, samples, nil, subject, prompt, uc.promptBudget)
	if err != nil {
		return nil, err
	}

	genSubject, body, err := uc.generateEmail(ctx, promptText)
	if err != nil {
		return nil, err
	}

	return &model.Artifact{
		EmployeeID: types.EmployeeID(userID),
		Kind:       types.TaskPlainEmail,
		Subject:    genSubject,
		Body:       body,
		CreatedAt:  time.Now(),
	}, nil
}

// GenerateNudgeSummary produces a narrative summary of the employee's
// nudge set, reusing the cached artifact when the set is unchanged.
func (uc *UseCases) GenerateNudgeSummary(ctx context.Context, employeeID types.EmployeeID, prompt string, facts []model.NudgeFact) (*model.Artifact, error) {
	if err := employeeID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid employee ID", goerr.V("employeeID", employeeID))
	}

	return uc.getOrGenerate(ctx, employeeID, types.TaskNudgeSummary, facts, func(ctx context.Context) (*model.Artifact, error) {
		samples, err := uc.styleSvc.Retrieve(ctx, types.UserID(employeeID), prompt, uc.retrieveCount)
		if err != nil {
			return nil, err
		}

		promptText, err := composePrompt(types.TaskNudgeSummary, samples, facts, "", prompt, uc.promptBudget)
		if err != nil {
			return nil, err
		}

		summary, err := uc.generateSummary(ctx, promptText)
		if err != nil {
			return nil, err
		}

		return &model.Artifact{
			EmployeeID: employeeID,
			Kind:       types.TaskNudgeSummary,
			Summary:    summary,
			CreatedAt:  time.Now(),
		}, nil
	})
}

// GenerateNudgeEmail writes an email addressing the employee's nudge
// set in the given user's voice. Fresh generations are appended to the
// email audit history.
func (uc *UseCases) GenerateNudgeEmail(ctx context.Context, userID types.UserID, employeeID types.EmployeeID, prompt string, facts []model.NudgeFact) (*model.Artifact, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid user ID", goerr.V("userID", userID))
	}
	if err := employeeID.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrValidation, "invalid employee ID", goerr.V("employeeID", employeeID))
	}

	return uc.getOrGenerate(ctx, employeeID, types.TaskNudgeEmail, facts, func(ctx context.Context) (*model.Artifact, error) {
		samples, err := uc.styleSvc.Retrieve(ctx, userID, prompt, uc.retrieveCount)
		if err != nil {
			return nil, err
		}

		promptText, err := composePrompt(types.TaskNudgeEmail, samples, facts, "", prompt, uc.promptBudget)
		if err != nil {
			return nil, err
		}

		subject, body, err := uc.generateEmail(ctx, promptText)
		if err != nil {
			return nil, err
		}

		artifact := &model.Artifact{
			EmployeeID:   employeeID,
			Kind:         types.TaskNudgeEmail,
			Subject:      subject,
			Body:         body,
			NudgeSnippet: model.Fingerprint(facts),
			CreatedAt:    time.Now(),
		}

		uc.appendEmailHistory(ctx, artifact)

		return artifact, nil
	})
}

// appendEmailHistory records a freshly generated email in the audit
// history. The append runs in the background; a failure is logged but
// never fails the generation request.
func (uc *UseCases) appendEmailHistory(ctx context.Context, artifact *model.Artifact) {
	record := &model.EmailRecord{
		ID:           model.NewEmailRecordID(),
		EmployeeID:   artifact.EmployeeID,
		Subject:      artifact.Subject,
		Body:         artifact.Body,
		NudgeSnippet: artifact.NudgeSnippet,
		CreatedAt:    artifact.CreatedAt,
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := uc.repo.EmailHistory().Append(ctx, record); err != nil {
			return goerr.Wrap(err, "failed to append email history",
				goerr.V("employeeID", artifact.EmployeeID),
				goerr.V("recordID", record.ID),
			)
		}
		return nil
	})
}

// generatedEmail is the JSON structure of an email generation response
type generatedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// generatedSummary is the JSON structure of a summary generation response
type generatedSummary struct {
	Summary string `json:"summary"`
}

func (uc *UseCases) generateEmail(ctx context.Context, prompt string) (string, string, error) {
	raw, err := uc.generateContent(ctx, prompt, emailResponseSchema())
	if err != nil {
		return "", "", err
	}

	var email generatedEmail
	if err := json.Unmarshal([]byte(raw), &email); err != nil {
		return "", "", goerr.Wrap(types.ErrGeneration, "failed to parse email generation response",
			goerr.V("response", raw),
		)
	}
	if email.Subject == "" || email.Body == "" {
		return "", "", goerr.Wrap(types.ErrGeneration, "email generation returned incomplete content",
			goerr.V("response", raw),
		)
	}

	return email.Subject, email.Body, nil
}

func (uc *UseCases) generateSummary(ctx context.Context, prompt string) (string, error) {
	raw, err := uc.generateContent(ctx, prompt, summaryResponseSchema())
	if err != nil {
		return "", err
	}

	var summary generatedSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return "", goerr.Wrap(types.ErrGeneration, "failed to parse summary generation response",
			goerr.V("response", raw),
		)
	}
	if summary.Summary == "" {
		return "", goerr.Wrap(types.ErrGeneration, "summary generation returned empty content",
			goerr.V("response", raw),
		)
	}

	return summary.Summary, nil
}

// generateContent runs one LLM generation with a JSON response schema
// under the configured timeout. Transport failures are retried with a
// doubling backoff; a malformed response body is not, since resending
// the identical prompt cannot change its structure.
func (uc *UseCases) generateContent(ctx context.Context, prompt string, schema *gollem.Parameter) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.genTimeout)
	defer cancel()

	var lastErr error
	backoff := generationRetryBackoff

	for attempt := 0; attempt < generationAttempts; attempt++ {
		if attempt > 0 {
			logging.From(ctx).Warn("retrying generation", "attempt", attempt, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", goerr.Wrap(types.ErrGeneration, "generation timed out", goerr.V("cause", ctx.Err().Error()))
			}
			backoff *= 2
		}

		session, err := uc.llmClient.NewSession(ctx,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(schema),
		)
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
		if err != nil {
			lastErr = err
			continue
		}

		if len(resp.Texts) == 0 {
			return "", goerr.Wrap(types.ErrGeneration, "generation returned no content")
		}

		return resp.Texts[0], nil
	}

	if ctx.Err() != nil {
		return "", goerr.Wrap(types.ErrGeneration, "generation timed out", goerr.V("cause", ctx.Err().Error()))
	}

	return "", goerr.Wrap(types.ErrGeneration, "generation failed after retries",
		goerr.V("attempts", generationAttempts),
		goerr.V("cause", lastErr.Error()),
	)
}
