package search

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"

	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/search"
)

const DefaultWindow = 200

var tracer = otel.Tracer("search_usecase")

// WindowSearcher scans the newest published programs in memory. Anything
// older than the window is never matched; swap in an indexed Searcher
// when the catalog outgrows it.
type WindowSearcher struct {
	programs program.Repository
	window   int
}

func NewWindowSearcher(repo program.Repository, window int) *WindowSearcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &WindowSearcher{programs: repo, window: window}
}

var _ search.Searcher = (*WindowSearcher)(nil)

func (s *WindowSearcher) Search(ctx context.Context, term string, page program.Page) ([]*program.Program, int, error) {
	ctx, span := tracer.Start(ctx, "WindowSearch")
	defer span.End()

	q := program.Query{
		Predicates: []program.Predicate{program.StatusIs(program.StatusPublished)},
		Sort:       program.DefaultSort(),
		Page:       program.Page{Number: 1, Limit: s.window},
	}
	candidates, _, err := s.programs.Find(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	// A Caser keeps state, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(term)

	matches := make([]*program.Program, 0)
	for _, p := range candidates {
		if strings.Contains(fold.String(p.Title), needle) || strings.Contains(fold.String(p.Description), needle) {
			matches = append(matches, p)
		}
	}
	span.SetAttributes(attribute.Int("scanned", len(candidates)), attribute.Int("matched", len(matches)))

	start := page.Offset()
	if start >= len(matches) {
		return []*program.Program{}, len(matches), nil
	}
	end := min(start+page.Limit, len(matches))
	return matches[start:end], len(matches), nil
}
