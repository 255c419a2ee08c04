package persistence

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/counter"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
	"github.com/khoahotran/program-catalog/pkg/metrics"
)

const (
	defaultAllocateAttempts = 30
	allocateBaseBackoff     = 5 * time.Millisecond
	allocateMaxBackoff      = 200 * time.Millisecond
)

// entityTables binds each counter to the table whose ids it hands out.
var entityTables = map[counter.Entity]string{
	counter.EntityPrograms:   "programs",
	counter.EntityCategories: "categories",
	counter.EntityLanguages:  "languages",
}

type postgresAllocator struct {
	db          *pgxpool.Pool
	logger      logger.Logger
	maxAttempts int
}

// NewPostgresAllocator hands out ids from the counters table. Each
// allocation runs in a serializable transaction and skips ids already
// present in the entity table, so a counter that fell behind (manual
// inserts, restored dumps) heals itself instead of colliding.
func NewPostgresAllocator(db *pgxpool.Pool, log logger.Logger) counter.Allocator {
	return &postgresAllocator{
		db:          db,
		logger:      log.With(zap.String("component", "id_allocator")),
		maxAttempts: defaultAllocateAttempts,
	}
}

func (a *postgresAllocator) Allocate(ctx context.Context, entity counter.Entity) (int64, error) {
	table, ok := entityTables[entity]
	if !ok {
		return 0, apperror.NewInvalidInput(fmt.Sprintf("unknown counter entity %q", entity), nil)
	}

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		id, err := a.tryAllocate(ctx, entity, table)
		if err == nil {
			return id, nil
		}
		if !isRetryableTxError(err) {
			return 0, apperror.NewQuery("failed to allocate "+string(entity)+" id", err)
		}
		lastErr = err
		metrics.AllocatorRetries.WithLabelValues(string(entity)).Inc()

		select {
		case <-ctx.Done():
			return 0, apperror.NewQuery("id allocation cancelled", ctx.Err())
		case <-time.After(backoff(attempt)):
		}
	}

	a.logger.Error("Id allocation gave up", lastErr,
		zap.String("entity", string(entity)), zap.Int("attempts", a.maxAttempts))
	return 0, apperror.NewQuery("id allocation contention for "+string(entity), lastErr)
}

func (a *postgresAllocator) tryAllocate(ctx context.Context, entity counter.Entity, table string) (int64, error) {
	tx, err := a.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var current int64
	err = tx.QueryRow(ctx, `SELECT value FROM counters WHERE name = $1`, string(entity)).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	existsSQL := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, pgx.Identifier{table}.Sanitize())
	candidate := current + 1
	for {
		var taken bool
		if err := tx.QueryRow(ctx, existsSQL, candidate).Scan(&taken); err != nil {
			return 0, err
		}
		if !taken {
			break
		}
		a.logger.Warn("Counter behind existing ids, skipping",
			zap.String("entity", string(entity)), zap.Int64("id", candidate))
		candidate++
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO counters (name, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, string(entity), candidate)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return candidate, nil
}

func isRetryableTxError(err error) bool {
	switch pgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
		return true
	}
	return false
}

func backoff(attempt int) time.Duration {
	d := allocateBaseBackoff << min(attempt-1, 6)
	if d > allocateMaxBackoff {
		d = allocateMaxBackoff
	}
	return d/2 + rand.N(d/2+1)
}
