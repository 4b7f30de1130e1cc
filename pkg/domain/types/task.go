package types

import "github.com/m-mizutani/goerr/v2"

// TaskKind distinguishes the generation tasks the service supports.
// Each kind selects a prompt template and a response shape.
type TaskKind string

const (
	// TaskPlainEmail generates an email on a free-form subject without nudge facts
	TaskPlainEmail TaskKind = "plain_email"

	// TaskNudgeEmail generates an email addressing a set of nudges
	TaskNudgeEmail TaskKind = "nudge_email"

	// TaskNudgeSummary generates a narrative summary of a set of nudges
	TaskNudgeSummary TaskKind = "nudge_summary"
)

func (k TaskKind) String() string {
	return string(k)
}

// Validate checks if the TaskKind is one of the supported kinds
func (k TaskKind) Validate() error {
	switch k {
	case TaskPlainEmail, TaskNudgeEmail, TaskNudgeSummary:
		return nil
	default:
		return goerr.New("unknown task kind", goerr.V("kind", string(k)))
	}
}

// IsEmail reports whether the task produces a subject+body artifact
// rather than a single summary string.
func (k TaskKind) IsEmail() bool {
	return k == TaskPlainEmail || k == TaskNudgeEmail
}
