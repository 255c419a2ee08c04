package program

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/user"
)

type ListProgramsUseCase struct {
	deps Deps
}

func NewListProgramsUseCase(d Deps) *ListProgramsUseCase {
	return &ListProgramsUseCase{deps: d}
}

type ListProgramsInput struct {
	Caller user.Caller
	Filter program.Filter
	Sort   program.Sort
	Page   program.Page
}

// Page is what gets cached for a list or search request.
type Page struct {
	Items      []*View            `json:"items"`
	Pagination program.Pagination `json:"pagination"`
}

type ListProgramsOutput struct {
	Page
	Source Source
}

func (uc *ListProgramsUseCase) Execute(ctx context.Context, input ListProgramsInput) (*ListProgramsOutput, error) {
	ctx, span := tracer.Start(ctx, "ListPrograms")
	defer span.End()

	page := program.NewPage(input.Page.Number, input.Page.Limit)
	q := program.RestrictQuery(input.Caller.Role, program.NewQuery(input.Filter, normalizeSort(input.Sort), page))
	key := listKey(input.Caller.Role, q)
	span.SetAttributes(attribute.String("cache_key", key))

	var cached Page
	if uc.deps.Cache.Get(ctx, key, &cached) {
		span.SetAttributes(attribute.String("source", string(SourceCache)))
		return &ListProgramsOutput{Page: cached, Source: SourceCache}, nil
	}

	sctx, cancel := uc.deps.storeCtx(ctx)
	records, total, err := uc.deps.Programs.Find(sctx, q)
	cancel()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := Page{
		Items:      uc.deps.Assembler.AssembleAll(ctx, records),
		Pagination: program.NewPagination(q.Page, total),
	}
	uc.deps.Cache.Set(ctx, key, out, uc.deps.listTTL())

	span.SetAttributes(attribute.String("source", string(SourceStore)), attribute.Int("total", total))
	return &ListProgramsOutput{Page: out, Source: SourceStore}, nil
}

// normalizeSort maps a zero Sort to the default and an unknown field to
// createdAt, keeping the requested direction.
func normalizeSort(s program.Sort) program.Sort {
	if s.Field == "" {
		return program.DefaultSort()
	}
	order := "desc"
	if !s.Desc {
		order = "asc"
	}
	return program.NewSort(string(s.Field), order)
}
