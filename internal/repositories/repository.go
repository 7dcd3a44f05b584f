package repositories

import "context"

// Repository aggregates every collaborator contract the engine consumes.
type Repository interface {
	Assessment() AssessmentRepository
	Item() ItemRepository
	User() UserRepository
	Cohort() CohortRepository
	Attempt() AttemptRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
