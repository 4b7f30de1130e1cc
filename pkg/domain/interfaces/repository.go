package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	StyleSample() StyleSampleRepository
	Artifact() ArtifactRepository
	EmailHistory() EmailHistoryRepository
	Nudge() NudgeRepository

	Close() error
}
