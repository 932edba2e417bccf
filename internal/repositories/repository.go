package repositories

import "context"

// Repository aggregates the per-entity repository interfaces.
type Repository interface {
	Report() ReportRepository
	ReportType() ReportTypeRepository
	User() UserRepository
	Reward() RewardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// WithSerializableTransaction runs fn at SERIALIZABLE isolation,
	// retrying on serialization failure. Required wherever the outcome
	// depends on rows the transaction itself scans, such as the reward
	// close-then-insert sequence.
	WithSerializableTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle.
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
