package category

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/application/service"
	"github.com/khoahotran/program-catalog/internal/domain/category"
	"github.com/khoahotran/program-catalog/internal/domain/counter"
	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

const (
	ListPrefix  = "categories:"
	allKey      = ListPrefix + "all"
	activeKey   = ListPrefix + "active"
	itemPrefix  = "category:"
	programKeys = "program:"
	programList = "programs:"
	defaultTTL  = time.Hour
)

func ItemKey(id int64) string { return itemPrefix + strconv.FormatInt(id, 10) }

type CategoryUseCase struct {
	repo      category.Repository
	programs  program.Repository
	allocator counter.Allocator
	cache     service.Cache
	ttl       time.Duration
	logger    logger.Logger
}

func NewCategoryUseCase(r category.Repository, programs program.Repository, alloc counter.Allocator, cache service.Cache, ttl time.Duration, log logger.Logger) *CategoryUseCase {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CategoryUseCase{repo: r, programs: programs, allocator: alloc, cache: cache, ttl: ttl, logger: log}
}

func requireAdmin(caller user.Caller) error {
	if caller.Role != user.RoleAdmin {
		return apperror.NewPermissionDenied("only admins may manage categories")
	}
	return nil
}

// invalidate drops the lookup caches and every cached program view, since
// views carry the category name.
func (uc *CategoryUseCase) invalidate(ctx context.Context, id int64) {
	uc.cache.Delete(ctx, ItemKey(id))
	uc.cache.InvalidatePrefix(ctx, ListPrefix)
	uc.cache.InvalidatePrefix(ctx, programKeys)
	uc.cache.InvalidatePrefix(ctx, programList)
}

func (uc *CategoryUseCase) withCount(ctx context.Context, c *category.Category) (*category.Category, error) {
	n, err := uc.programs.CountByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.ProgramCount = n
	return c, nil
}

type CreateCategoryInput struct {
	Caller      user.Caller
	Name        string
	Description *string
	SortOrder   int
}

func (uc *CategoryUseCase) CreateCategory(ctx context.Context, in CreateCategoryInput) (*category.Category, error) {
	if err := requireAdmin(in.Caller); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &category.Category{
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
		SortOrder:   in.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("category validation failed", err)
	}
	if err := uc.ensureNameFree(ctx, c.Name, 0); err != nil {
		return nil, err
	}

	id, err := uc.allocator.Allocate(ctx, counter.EntityCategories)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := uc.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, id)
	uc.logger.Info("Category created", zap.Int64("category_id", id), zap.String("name", c.Name))
	return c, nil
}

// ensureNameFree reports a conflict when name belongs to a category other
// than self.
func (uc *CategoryUseCase) ensureNameFree(ctx context.Context, name string, self int64) error {
	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return apperror.NewConflict("category", "name", name)
	}
	return nil
}

func (uc *CategoryUseCase) ListCategories(ctx context.Context, activeOnly bool) ([]*category.Category, error) {
	key := allKey
	if activeOnly {
		key = activeKey
	}
	var cached []*category.Category
	if uc.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	for _, c := range items {
		if _, err := uc.withCount(ctx, c); err != nil {
			return nil, err
		}
	}
	uc.cache.Set(ctx, key, items, uc.ttl)
	return items, nil
}

func (uc *CategoryUseCase) GetCategory(ctx context.Context, id int64) (*category.Category, error) {
	var cached category.Category
	if uc.cache.Get(ctx, ItemKey(id), &cached) {
		return &cached, nil
	}

	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.withCount(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.Set(ctx, ItemKey(id), c, uc.ttl)
	return c, nil
}

type UpdateCategoryInput struct {
	Caller user.Caller
	ID     int64
	Patch  category.Patch
}

func (uc *CategoryUseCase) UpdateCategory(ctx context.Context, in UpdateCategoryInput) (*category.Category, error) {
	if err := requireAdmin(in.Caller); err != nil {
		return nil, err
	}

	c, err := uc.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.Patch.Name != nil && *in.Patch.Name != c.Name {
		if err := uc.ensureNameFree(ctx, *in.Patch.Name, c.ID); err != nil {
			return nil, err
		}
	}

	c.Apply(in.Patch, time.Now().UTC())
	if err := c.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("category validation failed", err)
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, c.ID)
	return uc.withCount(ctx, c)
}

func (uc *CategoryUseCase) DeleteCategory(ctx context.Context, caller user.Caller, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if _, err := uc.repo.FindByID(ctx, id); err != nil {
		return err
	}

	n, err := uc.programs.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.NewInvalidInput("cannot delete category with associated programs", nil)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	uc.logger.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}
