package category

import (
	"context"
	"errors"
	"time"
)

type Category struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	IsActive     bool      `json:"isActive"`
	SortOrder    int       `json:"sortOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ProgramCount int       `json:"programCount"`
}

var (
	ErrNameRequired      = errors.New("category name is required")
	ErrNegativeSortOrder = errors.New("sort order must not be negative")
	ErrCategoryNotFound  = errors.New("category not found")
)

func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if c.SortOrder < 0 {
		return ErrNegativeSortOrder
	}
	return nil
}

type Patch struct {
	Name        *string
	Description *string
	IsActive    *bool
	SortOrder   *int
}

func (c *Category) Apply(p Patch, now time.Time) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
	c.UpdatedAt = now
}

// Repository never fills ProgramCount; it is derived at read time.
type Repository interface {
	Save(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context, activeOnly bool) ([]*Category, error)
}
