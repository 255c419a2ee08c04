package program

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

const publishTimeout = 2 * time.Second

type SearchProgramsUseCase struct {
	deps Deps
}

func NewSearchProgramsUseCase(d Deps) *SearchProgramsUseCase {
	return &SearchProgramsUseCase{deps: d}
}

type SearchProgramsInput struct {
	Caller user.Caller
	Term   string
	Page   program.Page
}

// Execute searches published programs only, whatever the caller's role.
func (uc *SearchProgramsUseCase) Execute(ctx context.Context, input SearchProgramsInput) (*ListProgramsOutput, error) {
	ctx, span := tracer.Start(ctx, "SearchPrograms")
	defer span.End()

	term := strings.TrimSpace(input.Term)
	if term == "" {
		return nil, apperror.NewInvalidInput("search term is required", nil)
	}
	page := program.NewPage(input.Page.Number, input.Page.Limit)
	span.SetAttributes(attribute.String("term", term))

	// Analytics keeps the term as typed; matching and caching use the
	// trimmed form.
	uc.logSearch(ctx, input.Term, input.Caller)

	key := searchKey(term, page)
	var cached Page
	if uc.deps.Cache.Get(ctx, key, &cached) {
		return &ListProgramsOutput{Page: cached, Source: SourceCache}, nil
	}

	sctx, cancel := uc.deps.storeCtx(ctx)
	records, total, err := uc.deps.Searcher.Search(sctx, term, page)
	cancel()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := Page{
		Items:      uc.deps.Assembler.AssembleAll(ctx, records),
		Pagination: program.NewPagination(page, total),
	}
	uc.deps.Cache.Set(ctx, key, out, uc.deps.searchTTL())
	return &ListProgramsOutput{Page: out, Source: SourceStore}, nil
}

// logSearch never blocks the request and never fails it.
func (uc *SearchProgramsUseCase) logSearch(ctx context.Context, term string, caller user.Caller) {
	if uc.deps.SearchLogs == nil {
		return
	}
	entry := search.Log{
		ID:        uuid.New(),
		Term:      term,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
		CreatedAt: uc.deps.now(),
	}
	if !caller.IsAnonymous() {
		id := caller.ID
		entry.UserID = &id
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		pctx, cancel := context.WithTimeout(bg, publishTimeout)
		defer cancel()
		if err := uc.deps.SearchLogs.PublishSearchLog(pctx, entry); err != nil {
			uc.deps.Logger.Warn("Failed to publish search log", zap.String("term", term), zap.Error(err))
		}
	}()
}
