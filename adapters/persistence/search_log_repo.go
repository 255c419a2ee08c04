package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

type postgresSearchLogRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSearchLogRepo(db *pgxpool.Pool, logger logger.Logger) search.LogRepository {
	return &postgresSearchLogRepo{db: db, logger: logger}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Save is idempotent on the log id, so a redelivered event is harmless.
func (r *postgresSearchLogRepo) Save(ctx context.Context, l *search.Log) error {
	sql, args, err := psql.Insert("search_logs").
		Columns("id", "term", "user_id", "ip_address", "user_agent", "created_at").
		Values(l.ID, l.Term, l.UserID, nullIfEmpty(l.IPAddress), nullIfEmpty(l.UserAgent), l.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return apperror.NewQuery("failed to build search log insert", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return apperror.NewQuery("failed to save search log", err)
	}
	return nil
}
