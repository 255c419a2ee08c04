package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

type postgresMetadataRepo struct {
	db *pgxpool.Pool
}

func NewPostgresMetadataRepo(db *pgxpool.Pool) program.MetadataRepository {
	return &postgresMetadataRepo{db: db}
}

func (r *postgresMetadataRepo) ListByProgram(ctx context.Context, programID int64) ([]program.Metadata, error) {
	rows, err := r.db.Query(ctx,
		`SELECT key, value FROM program_metadata WHERE program_id = $1 ORDER BY id`, programID)
	if err != nil {
		return nil, apperror.NewQuery("failed to query program metadata", err)
	}
	defer rows.Close()

	out := make([]program.Metadata, 0)
	for rows.Next() {
		var m program.Metadata
		if err := rows.Scan(&m.Key, &m.Value); err != nil {
			return nil, apperror.NewQuery("failed to scan program metadata", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewQuery("error iterating program metadata", err)
	}
	return out, nil
}
