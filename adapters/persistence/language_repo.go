package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/program-catalog/internal/domain/language"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

type postgresLanguageRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresLanguageRepo(db *pgxpool.Pool, logger logger.Logger) language.Repository {
	return &postgresLanguageRepo{db: db, logger: logger}
}

const languageColumns = `id, name, code, is_active, sort_order, created_at, updated_at`

func scanLanguage(row pgx.Row) (*language.Language, error) {
	l := &language.Language{}
	err := row.Scan(&l.ID, &l.Name, &l.Code, &l.IsActive, &l.SortOrder, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// languageConflict reports which unique column the violation hit.
func languageConflict(err error, l *language.Language) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "code") {
		return apperror.NewConflict("language", "code", l.Code)
	}
	return apperror.NewConflict("language", "name", l.Name)
}

func (r *postgresLanguageRepo) Save(ctx context.Context, l *language.Language) error {
	query := `
		INSERT INTO languages (id, name, code, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, l.ID, l.Name, l.Code, l.IsActive, l.SortOrder, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return languageConflict(err, l)
		}
		return apperror.NewQuery("failed to save language", err)
	}
	return nil
}

func (r *postgresLanguageRepo) Update(ctx context.Context, l *language.Language) error {
	query := `
		UPDATE languages
		SET name = $2, code = $3, is_active = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, l.ID, l.Name, l.Code, l.IsActive, l.SortOrder, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return languageConflict(err, l)
		}
		return apperror.NewQuery("failed to update language", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("language", strconv.FormatInt(l.ID, 10))
	}
	return nil
}

func (r *postgresLanguageRepo) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM languages WHERE id = $1`, id)
	if err != nil {
		return apperror.NewQuery("failed to delete language", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("language", strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *postgresLanguageRepo) findOne(ctx context.Context, column, value string, arg any) (*language.Language, error) {
	l, err := scanLanguage(r.db.QueryRow(ctx, `SELECT `+languageColumns+` FROM languages WHERE `+column+` = $1`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("language", value)
		}
		return nil, apperror.NewQuery("failed to find language by "+column, err)
	}
	return l, nil
}

func (r *postgresLanguageRepo) FindByID(ctx context.Context, id int64) (*language.Language, error) {
	return r.findOne(ctx, "id", strconv.FormatInt(id, 10), id)
}

func (r *postgresLanguageRepo) FindByName(ctx context.Context, name string) (*language.Language, error) {
	return r.findOne(ctx, "name", name, name)
}

func (r *postgresLanguageRepo) FindByCode(ctx context.Context, code string) (*language.Language, error) {
	return r.findOne(ctx, "code", code, code)
}

func (r *postgresLanguageRepo) List(ctx context.Context, activeOnly bool) ([]*language.Language, error) {
	b := psql.Select(languageColumns).From("languages").OrderBy("sort_order ASC", "name ASC")
	if activeOnly {
		b = b.Where("is_active = TRUE")
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, apperror.NewQuery("failed to build language query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewQuery("failed to list languages", err)
	}
	defer rows.Close()

	languages := make([]*language.Language, 0)
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, apperror.NewQuery("failed to scan language", err)
		}
		languages = append(languages, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewQuery("error iterating languages", err)
	}
	return languages, nil
}
