package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

type postgresUserRepo struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepo serves both credential lookups and the public
// profile projection used when resolving program owners.
func NewPostgresUserRepo(db *pgxpool.Pool) *postgresUserRepo {
	return &postgresUserRepo{db: db}
}

var (
	_ user.Repository        = (*postgresUserRepo)(nil)
	_ user.ProfileRepository = (*postgresUserRepo)(nil)
)

func (r *postgresUserRepo) findUser(ctx context.Context, where string, arg any, ident string) (*user.User, error) {
	query := `SELECT id, email, username, password_hash, role FROM users WHERE ` + where + ` = $1`
	u := &user.User{}
	var role string

	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", ident)
		}
		return nil, apperror.NewQuery("failed to query user", err)
	}
	u.Role = user.ParseRole(role)
	return u, nil
}

func (r *postgresUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findUser(ctx, "email", email, email)
}

func (r *postgresUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findUser(ctx, "id", id, id.String())
}

func (r *postgresUserRepo) FindProfile(ctx context.Context, id uuid.UUID) (*user.Profile, error) {
	p := &user.Profile{}
	err := r.db.QueryRow(ctx, `SELECT id, username FROM users WHERE id = $1`, id).Scan(&p.ID, &p.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", id.String())
		}
		return nil, apperror.NewQuery("failed to query user profile", err)
	}
	return p, nil
}

// CreateUser is used by the seeding script.
func (r *postgresUserRepo) CreateUser(ctx context.Context, u *user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, role) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Username, u.PasswordHash, string(u.Role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("user", "email", u.Email)
		}
		return apperror.NewQuery("failed to create user", err)
	}
	return nil
}
