package program

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/program-catalog/internal/domain/category"
	"github.com/khoahotran/program-catalog/internal/domain/counter"
	"github.com/khoahotran/program-catalog/internal/domain/language"
	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

type memProgramRepo struct {
	mu      sync.Mutex
	rows    map[int64]*program.Program
	findErr error
	finds   int
}

func newMemProgramRepo() *memProgramRepo {
	return &memProgramRepo{rows: map[int64]*program.Program{}}
}

func clone(p *program.Program) *program.Program {
	cp := *p
	cp.Tags = append([]string{}, p.Tags...)
	return &cp
}

func (r *memProgramRepo) Save(_ context.Context, p *program.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; ok {
		return apperror.NewConflict("program", "id", strconv.FormatInt(p.ID, 10))
	}
	r.rows[p.ID] = clone(p)
	return nil
}

func (r *memProgramRepo) Update(_ context.Context, p *program.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.rows[p.ID]
	if !ok {
		return apperror.NewNotFound("program", strconv.FormatInt(p.ID, 10))
	}
	cp := clone(p)
	cp.ViewCount, cp.LikeCount, cp.CreatedBy = old.ViewCount, old.LikeCount, old.CreatedBy
	r.rows[p.ID] = cp
	return nil
}

func (r *memProgramRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperror.NewNotFound("program", strconv.FormatInt(id, 10))
	}
	delete(r.rows, id)
	return nil
}

func (r *memProgramRepo) FindByID(_ context.Context, id int64) (*program.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("program", strconv.FormatInt(id, 10))
	}
	return clone(p), nil
}

func matches(p *program.Program, pred program.Predicate) bool {
	switch pred.Field {
	case program.FieldStatus:
		return string(p.Status) == pred.Value
	case program.FieldContentType:
		return string(p.ContentType) == pred.Value
	case program.FieldVideoSource:
		return string(p.VideoSource) == pred.Value
	case program.FieldCategoryID:
		return p.CategoryID != nil && *p.CategoryID == pred.Value
	case program.FieldLanguageID:
		return p.LanguageID != nil && *p.LanguageID == pred.Value
	}
	return false
}

// Find supports createdAt and title ordering, which is all the tests use.
func (r *memProgramRepo) Find(_ context.Context, q program.Query) ([]*program.Program, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, 0, r.findErr
	}

	all := make([]*program.Program, 0)
	for _, p := range r.rows {
		ok := true
		for _, pred := range q.Predicates {
			if !matches(p, pred) {
				ok = false
				break
			}
		}
		if ok {
			all = append(all, clone(p))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		var less bool
		switch q.Sort.Field {
		case program.SortTitle:
			less = a.Title < b.Title || (a.Title == b.Title && a.ID < b.ID)
		default:
			less = a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID)
		}
		if q.Sort.Desc {
			return !less
		}
		return less
	})

	start := q.Page.Offset()
	if start >= len(all) {
		return []*program.Program{}, len(all), nil
	}
	end := min(start+q.Page.Limit, len(all))
	return all[start:end], len(all), nil
}

func (r *memProgramRepo) bump(id int64, views bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return apperror.NewNotFound("program", strconv.FormatInt(id, 10))
	}
	if views {
		p.ViewCount++
	} else {
		p.LikeCount++
	}
	return nil
}

func (r *memProgramRepo) IncrementViewCount(_ context.Context, id int64) error { return r.bump(id, true) }
func (r *memProgramRepo) IncrementLikeCount(_ context.Context, id int64) error { return r.bump(id, false) }

func (r *memProgramRepo) CountByCategory(_ context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.rows {
		if p.CategoryID != nil && *p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (r *memProgramRepo) CountByLanguage(_ context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.rows {
		if p.LanguageID != nil && *p.LanguageID == id {
			n++
		}
	}
	return n, nil
}

type memCategoryRepo struct {
	mu   sync.Mutex
	rows map[int64]*category.Category
	err  error
}

func (r *memCategoryRepo) Save(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = c
	return nil
}
func (r *memCategoryRepo) Update(ctx context.Context, c *category.Category) error { return r.Save(ctx, c) }
func (r *memCategoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}
func (r *memCategoryRepo) FindByID(_ context.Context, id int64) (*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("category", strconv.FormatInt(id, 10))
	}
	return c, nil
}
func (r *memCategoryRepo) FindByName(_ context.Context, name string) (*category.Category, error) {
	return nil, apperror.NewNotFound("category", name)
}
func (r *memCategoryRepo) List(context.Context, bool) ([]*category.Category, error) {
	return nil, nil
}

type memLanguageRepo struct {
	mu   sync.Mutex
	rows map[int64]*language.Language
}

func (r *memLanguageRepo) Save(_ context.Context, l *language.Language) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[l.ID] = l
	return nil
}
func (r *memLanguageRepo) Update(ctx context.Context, l *language.Language) error { return r.Save(ctx, l) }
func (r *memLanguageRepo) Delete(context.Context, int64) error                    { return nil }
func (r *memLanguageRepo) FindByID(_ context.Context, id int64) (*language.Language, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("language", strconv.FormatInt(id, 10))
	}
	return l, nil
}
func (r *memLanguageRepo) FindByName(_ context.Context, name string) (*language.Language, error) {
	return nil, apperror.NewNotFound("language", name)
}
func (r *memLanguageRepo) FindByCode(_ context.Context, code string) (*language.Language, error) {
	return nil, apperror.NewNotFound("language", code)
}
func (r *memLanguageRepo) List(context.Context, bool) ([]*language.Language, error) { return nil, nil }

type memProfiles struct {
	rows map[uuid.UUID]string
	err  error
}

func (r *memProfiles) FindProfile(_ context.Context, id uuid.UUID) (*user.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	name, ok := r.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("user", id.String())
	}
	return &user.Profile{ID: id, Username: name}, nil
}

type memMetadata struct {
	rows map[int64][]program.Metadata
	err  error
}

func (r *memMetadata) ListByProgram(_ context.Context, id int64) ([]program.Metadata, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.rows[id], nil
}

type seqAllocator struct {
	mu   sync.Mutex
	next int64
}

func (a *seqAllocator) Allocate(_ context.Context, _ counter.Entity) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	return a.next, nil
}

// memCache round-trips through JSON so cached values behave like Redis ones.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false
	}
	if json.Unmarshal(b, dest) != nil {
		return false
	}
	c.hits++
	return true
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
}

func (c *memCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

func (c *memCache) InvalidatePrefix(_ context.Context, prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			n++
		}
	}
	return n
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type chanPublisher struct {
	logs chan search.Log
	err  error
}

func (p *chanPublisher) PublishSearchLog(_ context.Context, l search.Log) error {
	p.logs <- l
	return p.err
}

var errStoreDown = errors.New("connection refused")
