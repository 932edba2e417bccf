package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/cache"
	"github.com/saferoads-vn/report-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	report     repositories.ReportRepository
	reportType repositories.ReportTypeRepository
	user       repositories.UserRepository
	reward     repositories.RewardRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.report = NewReportPostgreSQL(config.DB, cacheManager)
	repo.reportType = NewReportTypePostgreSQL(config.DB, cacheManager)
	repo.user = NewUserPostgreSQL(config.DB, cacheManager)
	repo.reward = NewRewardPostgreSQL(config.DB, cacheManager)

	return repo
}

func (r *PostgreSQLRepository) Report() repositories.ReportRepository {
	return r.report
}

func (r *PostgreSQLRepository) ReportType() repositories.ReportTypeRepository {
	return r.reportType
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Reward() repositories.RewardRepository {
	return r.reward
}

// WithTransaction executes a function within a database transaction. The
// repository passed to fn routes every operation through the transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.newTxRepository(tx))
	})
}

// serializableRetries bounds the retry loop for serialization failures.
const serializableRetries = 3

// WithSerializableTransaction executes fn at SERIALIZABLE isolation. READ
// COMMITTED is not enough when the write depends on rows the transaction
// itself scans: two concurrent close-then-insert sequences would each see
// zero open reward rows and both insert one. Serialization failures
// (SQLSTATE 40001) are retried.
func (r *PostgreSQLRepository) WithSerializableTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 0; attempt < serializableRetries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(r.newTxRepository(tx))
		}, opts)
		if !isSerializationFailure(err) {
			return err
		}
	}

	return fmt.Errorf("serializable transaction failed after %d attempts: %w", serializableRetries, err)
}

// newTxRepository builds a repository whose sub-repositories all route
// through tx. The inTx flag marks them so reads know to bypass the cache
// even when the caller passes no explicit tx handle.
func (r *PostgreSQLRepository) newTxRepository(tx *gorm.DB) *PostgreSQLRepository {
	txRepo := &PostgreSQLRepository{
		db:           tx,
		redisClient:  r.redisClient,
		cacheManager: r.cacheManager,
	}

	txRepo.report = &ReportPostgreSQL{db: tx, cacheManager: r.cacheManager, inTx: true}
	txRepo.reportType = &ReportTypePostgreSQL{db: tx, cacheManager: r.cacheManager, inTx: true}
	txRepo.user = &UserPostgreSQL{db: tx, cacheManager: r.cacheManager, inTx: true}
	txRepo.reward = &RewardPostgreSQL{db: tx, cacheManager: r.cacheManager, inTx: true}

	return txRepo
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

// Ping checks the health of database and cache connections.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections.
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface.
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager.
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections.
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance.
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections.
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections.
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
