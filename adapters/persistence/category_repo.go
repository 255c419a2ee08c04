package persistence

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/program-catalog/internal/domain/category"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

type postgresCategoryRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCategoryRepo(db *pgxpool.Pool, logger logger.Logger) category.Repository {
	return &postgresCategoryRepo{db: db, logger: logger}
}

const categoryColumns = `id, name, description, is_active, sort_order, created_at, updated_at`

func scanCategory(row pgx.Row) (*category.Category, error) {
	c := &category.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *postgresCategoryRepo) Save(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (id, name, description, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Description, c.IsActive, c.SortOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("category", "name", c.Name)
		}
		return apperror.NewQuery("failed to save category", err)
	}
	return nil
}

func (r *postgresCategoryRepo) Update(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, is_active = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Description, c.IsActive, c.SortOrder, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("category", "name", c.Name)
		}
		return apperror.NewQuery("failed to update category", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", strconv.FormatInt(c.ID, 10))
	}
	return nil
}

func (r *postgresCategoryRepo) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperror.NewQuery("failed to delete category", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *postgresCategoryRepo) FindByID(ctx context.Context, id int64) (*category.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("category", strconv.FormatInt(id, 10))
		}
		return nil, apperror.NewQuery("failed to find category", err)
	}
	return c, nil
}

func (r *postgresCategoryRepo) FindByName(ctx context.Context, name string) (*category.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("category", name)
		}
		return nil, apperror.NewQuery("failed to find category by name", err)
	}
	return c, nil
}

func (r *postgresCategoryRepo) List(ctx context.Context, activeOnly bool) ([]*category.Category, error) {
	b := psql.Select(categoryColumns).From("categories").OrderBy("sort_order ASC", "name ASC")
	if activeOnly {
		b = b.Where("is_active = TRUE")
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, apperror.NewQuery("failed to build category query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewQuery("failed to list categories", err)
	}
	defer rows.Close()

	categories := make([]*category.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperror.NewQuery("failed to scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewQuery("error iterating categories", err)
	}
	return categories, nil
}
