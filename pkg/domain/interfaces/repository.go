package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Case() CaseRepository
	TimelineEvent() TimelineEventRepository
	Category() CategoryRepository

	Close() error
}
