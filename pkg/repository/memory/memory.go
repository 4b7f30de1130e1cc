package memory

import (
	"github.com/stylemail-dev/stylemail/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	styleSample  *styleSampleRepository
	artifact     *artifactRepository
	emailHistory *emailHistoryRepository
	nudge        *nudgeRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		styleSample:  newStyleSampleRepository(),
		artifact:     newArtifactRepository(),
		emailHistory: newEmailHistoryRepository(),
		nudge:        newNudgeRepository(),
	}
}

func (m *Memory) StyleSample() interfaces.StyleSampleRepository {
	return m.styleSample
}

func (m *Memory) Artifact() interfaces.ArtifactRepository {
	return m.artifact
}

func (m *Memory) EmailHistory() interfaces.EmailHistoryRepository {
	return m.emailHistory
}

func (m *Memory) Nudge() interfaces.NudgeRepository {
	return m.nudge
}

func (m *Memory) Close() error {
	return nil
}
