package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/program-catalog/internal/domain/program"
)

// windowRepo returns the newest-first slice it was given, truncated to the
// requested limit, and records the query.
type windowRepo struct {
	program.Repository
	rows []*program.Program
	last program.Query
	err  error
}

func (r *windowRepo) Find(_ context.Context, q program.Query) ([]*program.Program, int, error) {
	r.last = q
	if r.err != nil {
		return nil, 0, r.err
	}
	n := min(q.Page.Limit, len(r.rows))
	return r.rows[:n], len(r.rows), nil
}

func published(n int, titles ...string) []*program.Program {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*program.Program, 0, n)
	for i := 0; i < n; i++ {
		title := "filler"
		if i < len(titles) {
			title = titles[i]
		}
		out = append(out, &program.Program{
			ID: int64(n - i), Title: title, Status: program.StatusPublished,
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestWindowSearcher_QueriesPublishedNewestWindow(t *testing.T) {
	repo := &windowRepo{rows: published(3)}
	s := NewWindowSearcher(repo, 0)

	_, _, err := s.Search(context.Background(), "x", program.NewPage(1, 10))
	require.NoError(t, err)

	assert.Equal(t, []program.Predicate{program.StatusIs(program.StatusPublished)}, repo.last.Predicates)
	assert.Equal(t, program.DefaultSort(), repo.last.Sort)
	assert.Equal(t, DefaultWindow, repo.last.Page.Limit)
	assert.Equal(t, 1, repo.last.Page.Number)
}

func TestWindowSearcher_CaseInsensitiveTitleOrDescription(t *testing.T) {
	rows := published(5, "Finance", "cooking", "FINANCE weekly", "gardening", "finance")
	rows[1].Description = "how to budget: personal fInAnCe"
	s := NewWindowSearcher(&windowRepo{rows: rows}, 200)

	got, total, err := s.Search(context.Background(), "finance", program.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"Finance", "cooking", "FINANCE weekly", "finance"},
		[]string{got[0].Title, got[1].Title, got[2].Title, got[3].Title})
}

func TestWindowSearcher_UnicodeFolding(t *testing.T) {
	s := NewWindowSearcher(&windowRepo{rows: published(2, "STRASSE of Berlin", "Ελληνικά ΜΑΘΗΜΑΤΑ")}, 200)

	got, _, err := s.Search(context.Background(), "μαθηματα", program.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ελληνικά ΜΑΘΗΜΑΤΑ", got[0].Title)
}

func TestWindowSearcher_PaginatesInMemory(t *testing.T) {
	titles := make([]string, 25)
	for i := range titles {
		titles[i] = "match"
	}
	s := NewWindowSearcher(&windowRepo{rows: published(25, titles...)}, 200)

	page3, total, err := s.Search(context.Background(), "match", program.NewPage(3, 10))
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, page3, 5)

	beyond, total, err := s.Search(context.Background(), "match", program.NewPage(9, 10))
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, beyond)
}

func TestWindowSearcher_IgnoresOlderThanWindow(t *testing.T) {
	rows := published(10)
	rows[9].Title = "needle"
	s := NewWindowSearcher(&windowRepo{rows: rows}, 5)

	got, total, err := s.Search(context.Background(), "needle", program.NewPage(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

func TestWindowSearcher_StoreError(t *testing.T) {
	boom := errors.New("boom")
	s := NewWindowSearcher(&windowRepo{err: boom}, 10)

	_, _, err := s.Search(context.Background(), "x", program.NewPage(1, 10))
	assert.ErrorIs(t, err, boom)
}
