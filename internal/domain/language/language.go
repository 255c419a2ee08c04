package language

import (
	"context"
	"errors"
	"time"
)

type Language struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	IsActive     bool      `json:"isActive"`
	SortOrder    int       `json:"sortOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ProgramCount int       `json:"programCount"`
}

var (
	ErrNameRequired      = errors.New("language name is required")
	ErrCodeRequired      = errors.New("language code is required")
	ErrNegativeSortOrder = errors.New("sort order must not be negative")
	ErrLanguageNotFound  = errors.New("language not found")
)

func (l *Language) Validate() error {
	if l.Name == "" {
		return ErrNameRequired
	}
	if l.Code == "" {
		return ErrCodeRequired
	}
	if l.SortOrder < 0 {
		return ErrNegativeSortOrder
	}
	return nil
}

type Patch struct {
	Name      *string
	Code      *string
	IsActive  *bool
	SortOrder *int
}

func (l *Language) Apply(p Patch, now time.Time) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Code != nil {
		l.Code = *p.Code
	}
	if p.IsActive != nil {
		l.IsActive = *p.IsActive
	}
	if p.SortOrder != nil {
		l.SortOrder = *p.SortOrder
	}
	l.UpdatedAt = now
}

type Repository interface {
	Save(ctx context.Context, l *Language) error
	Update(ctx context.Context, l *Language) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Language, error)
	FindByName(ctx context.Context, name string) (*Language, error)
	FindByCode(ctx context.Context, code string) (*Language, error)
	List(ctx context.Context, activeOnly bool) ([]*Language, error)
}
