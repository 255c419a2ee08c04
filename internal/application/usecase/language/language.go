package language

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/application/service"
	"github.com/khoahotran/program-catalog/internal/domain/counter"
	"github.com/khoahotran/program-catalog/internal/domain/language"
	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

const (
	ListPrefix = "languages:"
	allKey     = ListPrefix + "all"
	activeKey  = ListPrefix + "active"
	itemPrefix = "language:"
	defaultTTL = time.Hour
)

func ItemKey(id int64) string { return itemPrefix + strconv.FormatInt(id, 10) }

type LanguageUseCase struct {
	repo      language.Repository
	programs  program.Repository
	allocator counter.Allocator
	cache     service.Cache
	ttl       time.Duration
	logger    logger.Logger
}

func NewLanguageUseCase(r language.Repository, programs program.Repository, alloc counter.Allocator, cache service.Cache, ttl time.Duration, log logger.Logger) *LanguageUseCase {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LanguageUseCase{repo: r, programs: programs, allocator: alloc, cache: cache, ttl: ttl, logger: log}
}

func requireAdmin(caller user.Caller) error {
	if caller.Role != user.RoleAdmin {
		return apperror.NewPermissionDenied("only admins may manage languages")
	}
	return nil
}

func (uc *LanguageUseCase) invalidate(ctx context.Context, id int64) {
	uc.cache.Delete(ctx, ItemKey(id))
	uc.cache.InvalidatePrefix(ctx, ListPrefix)
	uc.cache.InvalidatePrefix(ctx, "program:")
	uc.cache.InvalidatePrefix(ctx, "programs:")
}

func (uc *LanguageUseCase) withCount(ctx context.Context, l *language.Language) (*language.Language, error) {
	n, err := uc.programs.CountByLanguage(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	l.ProgramCount = n
	return l, nil
}

// ensureUnique checks name and code against languages other than self.
func (uc *LanguageUseCase) ensureUnique(ctx context.Context, name, code string, self int64) error {
	if name != "" {
		existing, err := uc.repo.FindByName(ctx, name)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != self {
			return apperror.NewConflict("language", "name", name)
		}
	}
	if code != "" {
		existing, err := uc.repo.FindByCode(ctx, code)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != self {
			return apperror.NewConflict("language", "code", code)
		}
	}
	return nil
}

type CreateLanguageInput struct {
	Caller    user.Caller
	Name      string
	Code      string
	SortOrder int
}

func (uc *LanguageUseCase) CreateLanguage(ctx context.Context, in CreateLanguageInput) (*language.Language, error) {
	if err := requireAdmin(in.Caller); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &language.Language{
		Name:      strings.TrimSpace(in.Name),
		Code:      strings.TrimSpace(in.Code),
		IsActive:  true,
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("language validation failed", err)
	}
	if err := uc.ensureUnique(ctx, l.Name, l.Code, 0); err != nil {
		return nil, err
	}

	id, err := uc.allocator.Allocate(ctx, counter.EntityLanguages)
	if err != nil {
		return nil, err
	}
	l.ID = id
	if err := uc.repo.Save(ctx, l); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, id)
	uc.logger.Info("Language created", zap.Int64("language_id", id), zap.String("code", l.Code))
	return l, nil
}

func (uc *LanguageUseCase) ListLanguages(ctx context.Context, activeOnly bool) ([]*language.Language, error) {
	key := allKey
	if activeOnly {
		key = activeKey
	}
	var cached []*language.Language
	if uc.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	items, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	for _, l := range items {
		if _, err := uc.withCount(ctx, l); err != nil {
			return nil, err
		}
	}
	uc.cache.Set(ctx, key, items, uc.ttl)
	return items, nil
}

func (uc *LanguageUseCase) GetLanguage(ctx context.Context, id int64) (*language.Language, error) {
	var cached language.Language
	if uc.cache.Get(ctx, ItemKey(id), &cached) {
		return &cached, nil
	}

	l, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.withCount(ctx, l); err != nil {
		return nil, err
	}
	uc.cache.Set(ctx, ItemKey(id), l, uc.ttl)
	return l, nil
}

type UpdateLanguageInput struct {
	Caller user.Caller
	ID     int64
	Patch  language.Patch
}

func (uc *LanguageUseCase) UpdateLanguage(ctx context.Context, in UpdateLanguageInput) (*language.Language, error) {
	if err := requireAdmin(in.Caller); err != nil {
		return nil, err
	}

	l, err := uc.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	var name, code string
	if in.Patch.Name != nil && *in.Patch.Name != l.Name {
		name = *in.Patch.Name
	}
	if in.Patch.Code != nil && *in.Patch.Code != l.Code {
		code = *in.Patch.Code
	}
	if err := uc.ensureUnique(ctx, name, code, l.ID); err != nil {
		return nil, err
	}

	l.Apply(in.Patch, time.Now().UTC())
	if err := l.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("language validation failed", err)
	}
	if err := uc.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, l.ID)
	return uc.withCount(ctx, l)
}

func (uc *LanguageUseCase) DeleteLanguage(ctx context.Context, caller user.Caller, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if _, err := uc.repo.FindByID(ctx, id); err != nil {
		return err
	}

	n, err := uc.programs.CountByLanguage(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.NewInvalidInput("cannot delete language with associated programs", nil)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	uc.logger.Info("Language deleted", zap.Int64("language_id", id))
	return nil
}
