package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stylemail-dev/stylemail/pkg/domain/types"
)

// fingerprintSeparator joins nudge titles into a fingerprint. The
// fingerprint is deliberately weak: title-only and order-sensitive.
const fingerprintSeparator = ", "

// Fingerprint computes the dedup key for a nudge-fact sequence. Two
// sequences fingerprint equally iff their titles are identical and in
// the same order; upstream ordering conveys priority and is preserved.
func Fingerprint(facts []NudgeFact) string {
	titles := make([]string, len(facts))
	for i, f := range facts {
		titles[i] = f.Title
	}
	return strings.Join(titles, fingerprintSeparator)
}

// Artifact is a generated text artifact owned by the deduplication
// cache: either a summary or a subject+body email, tagged by Kind.
// The cache keeps at most one live Artifact per (employee, kind).
type Artifact struct {
	EmployeeID   types.EmployeeID
	Kind         types.TaskKind
	Summary      string
	Subject      string
	Body         string
	NudgeSnippet string // Fingerprint of the nudge set this artifact was generated from
	CreatedAt    time.Time
}

// EmailRecordID is a UUID-based identifier for EmailRecord
type EmailRecordID string

// NewEmailRecordID generates a new UUID v4 EmailRecordID
func NewEmailRecordID() EmailRecordID {
	return EmailRecordID(uuid.New().String())
}

// EmailRecord is one entry of the append-only email audit history.
// Records are never mutated after creation except for the sent flag,
// which a downstream delivery concern flips via MarkSent.
type EmailRecord struct {
	ID           EmailRecordID
	EmployeeID   types.EmployeeID
	Subject      string
	Body         string
	NudgeSnippet string
	Sent         bool
	SentAt       *time.Time
	CreatedAt    time.Time
}
