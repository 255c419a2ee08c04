package counter

import (
	"context"
	"fmt"
)

// Entity identifies an ID sequence. Each entity owns one counter row.
type Entity string

const (
	EntityPrograms   Entity = "programs"
	EntityCategories Entity = "categories"
	EntityLanguages  Entity = "languages"
)

func (e Entity) Valid() error {
	switch e {
	case EntityPrograms, EntityCategories, EntityLanguages:
		return nil
	}
	return fmt.Errorf("unknown counter entity %q", string(e))
}

// Allocator hands out integer IDs that are unique per entity and never
// collide with an existing record, even across service instances.
type Allocator interface {
	Allocate(ctx context.Context, entity Entity) (int64, error)
}
