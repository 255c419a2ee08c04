package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

type postgresProgramRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProgramRepo(db *pgxpool.Pool, logger logger.Logger) program.Repository {
	return &postgresProgramRepo{db: db, logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const programColumns = `id, title, description, duration, publish_date, status, content_type, video_source, video_type,
	thumbnail_url, video_url, audio_url, youtube_url, youtube_video_id, youtube_thumbnail, uploaded_video_url,
	file_size, file_name, tags, view_count, like_count, is_active, category_id, language_id, created_by,
	created_at, updated_at`

// predicateColumns is the closed set of filterable columns.
var predicateColumns = map[program.Field]string{
	program.FieldStatus:      "status",
	program.FieldCategoryID:  "category_id",
	program.FieldLanguageID:  "language_id",
	program.FieldContentType: "content_type",
	program.FieldVideoSource: "video_source",
}

var sortColumns = map[program.SortField]string{
	program.SortCreatedAt:   "created_at",
	program.SortUpdatedAt:   "updated_at",
	program.SortTitle:       "title",
	program.SortPublishDate: "publish_date",
	program.SortViewCount:   "view_count",
	program.SortLikeCount:   "like_count",
	program.SortDuration:    "duration",
}

func scanProgram(row pgx.Row) (*program.Program, error) {
	p := &program.Program{}
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Duration,
		&p.PublishDate,
		&p.Status,
		&p.ContentType,
		&p.VideoSource,
		&p.VideoType,
		&p.ThumbnailURL,
		&p.VideoURL,
		&p.AudioURL,
		&p.YouTubeURL,
		&p.YouTubeVideoID,
		&p.YouTubeThumbnail,
		&p.UploadedVideoURL,
		&p.FileSize,
		&p.FileName,
		&p.Tags,
		&p.ViewCount,
		&p.LikeCount,
		&p.IsActive,
		&p.CategoryID,
		&p.LanguageID,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func scanPrograms(rows pgx.Rows) ([]*program.Program, error) {
	defer rows.Close()
	programs := make([]*program.Program, 0)

	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, apperror.NewQuery("failed to scan program row", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewQuery("error iterating program rows", err)
	}
	return programs, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *postgresProgramRepo) Save(ctx context.Context, p *program.Program) error {
	query := `
		INSERT INTO programs (id, title, description, duration, publish_date, status, content_type, video_source, video_type,
			thumbnail_url, video_url, audio_url, youtube_url, youtube_video_id, youtube_thumbnail, uploaded_video_url,
			file_size, file_name, tags, view_count, like_count, is_active, category_id, language_id, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Title, p.Description, p.Duration, p.PublishDate, p.Status, p.ContentType, p.VideoSource, p.VideoType,
		p.ThumbnailURL, p.VideoURL, p.AudioURL, p.YouTubeURL, p.YouTubeVideoID, p.YouTubeThumbnail, p.UploadedVideoURL,
		p.FileSize, p.FileName, tagsOrEmpty(p.Tags), p.ViewCount, p.LikeCount, p.IsActive, p.CategoryID, p.LanguageID, p.CreatedBy,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("program", "id", strconv.FormatInt(p.ID, 10))
		}
		return apperror.NewQuery("failed to save program", err)
	}
	return nil
}

// Update writes every mutable column. Counters and created_by are never
// written here.
func (r *postgresProgramRepo) Update(ctx context.Context, p *program.Program) error {
	query := `
		UPDATE programs SET
			title = $2, description = $3, duration = $4, publish_date = $5, status = $6, content_type = $7,
			video_source = $8, video_type = $9, thumbnail_url = $10, video_url = $11, audio_url = $12,
			youtube_url = $13, youtube_video_id = $14, youtube_thumbnail = $15, uploaded_video_url = $16,
			file_size = $17, file_name = $18, tags = $19, is_active = $20, category_id = $21, language_id = $22,
			updated_at = $23
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.ID, p.Title, p.Description, p.Duration, p.PublishDate, p.Status, p.ContentType,
		p.VideoSource, p.VideoType, p.ThumbnailURL, p.VideoURL, p.AudioURL,
		p.YouTubeURL, p.YouTubeVideoID, p.YouTubeThumbnail, p.UploadedVideoURL,
		p.FileSize, p.FileName, tagsOrEmpty(p.Tags), p.IsActive, p.CategoryID, p.LanguageID,
		p.UpdatedAt,
	)
	if err != nil {
		return apperror.NewQuery("failed to update program", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("program", strconv.FormatInt(p.ID, 10))
	}
	return nil
}

func (r *postgresProgramRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.NewQuery("failed to begin delete transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM program_metadata WHERE program_id = $1`, id); err != nil {
		return apperror.NewQuery("failed to delete program metadata", err)
	}
	cmdTag, err := tx.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return apperror.NewQuery("failed to delete program", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("program", strconv.FormatInt(id, 10))
	}
	if err := tx.Commit(ctx); err != nil {
		return apperror.NewQuery("failed to commit program delete", err)
	}
	return nil
}

func (r *postgresProgramRepo) FindByID(ctx context.Context, id int64) (*program.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	p, err := scanProgram(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("program", strconv.FormatInt(id, 10))
		}
		return nil, apperror.NewQuery("failed to find program", err)
	}
	return p, nil
}

// applyPredicates is the single place predicates become SQL; the page and
// count queries both go through it.
func applyPredicates(b sq.SelectBuilder, preds []program.Predicate) (sq.SelectBuilder, error) {
	for _, p := range preds {
		col, ok := predicateColumns[p.Field]
		if !ok {
			return b, fmt.Errorf("unsupported filter field %q", p.Field)
		}
		b = b.Where(sq.Eq{col: p.Value})
	}
	return b, nil
}

func buildFindQueries(q program.Query) (list sq.SelectBuilder, count sq.SelectBuilder, err error) {
	list, err = applyPredicates(psql.Select(programColumns).From("programs"), q.Predicates)
	if err != nil {
		return list, count, err
	}
	count, err = applyPredicates(psql.Select("COUNT(*)").From("programs"), q.Predicates)
	if err != nil {
		return list, count, err
	}

	col, ok := sortColumns[q.Sort.Field]
	if !ok {
		col = sortColumns[program.SortCreatedAt]
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}
	list = list.
		OrderBy(col+" "+dir, "id "+dir).
		Limit(uint64(q.Page.Limit)).
		Offset(uint64(q.Page.Offset()))
	return list, count, nil
}

func (r *postgresProgramRepo) Find(ctx context.Context, q program.Query) ([]*program.Program, int, error) {
	listBuilder, countBuilder, err := buildFindQueries(q)
	if err != nil {
		return nil, 0, apperror.NewQuery("failed to build program query", err)
	}

	listSQL, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, apperror.NewQuery("failed to render program query", err)
	}
	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, apperror.NewQuery("failed to render program count query", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		r.logger.Error("Program query failed", err, zap.String("sql", listSQL))
		return nil, 0, apperror.NewQuery("failed to query programs", err)
	}
	programs, err := scanPrograms(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperror.NewQuery("failed to count programs", err)
	}
	return programs, total, nil
}

func (r *postgresProgramRepo) increment(ctx context.Context, column string, id int64) error {
	query := fmt.Sprintf(`UPDATE programs SET %s = %s + 1 WHERE id = $1`, column, column)
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperror.NewQuery("failed to increment "+column, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("program", strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *postgresProgramRepo) IncrementViewCount(ctx context.Context, id int64) error {
	return r.increment(ctx, "view_count", id)
}

func (r *postgresProgramRepo) IncrementLikeCount(ctx context.Context, id int64) error {
	return r.increment(ctx, "like_count", id)
}

func (r *postgresProgramRepo) countWhere(ctx context.Context, column string, value int64) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From("programs").Where(sq.Eq{column: value}).ToSql()
	if err != nil {
		return 0, apperror.NewQuery("failed to build count query", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, apperror.NewQuery("failed to count programs by "+column, err)
	}
	return n, nil
}

func (r *postgresProgramRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	return r.countWhere(ctx, "category_id", categoryID)
}

func (r *postgresProgramRepo) CountByLanguage(ctx context.Context, languageID int64) (int, error) {
	return r.countWhere(ctx, "language_id", languageID)
}
