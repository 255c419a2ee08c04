package searchlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

type memLogRepo struct {
	saved map[uuid.UUID]search.Log
	err   error
}

func (r *memLogRepo) Save(_ context.Context, l *search.Log) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.saved[l.ID]; !ok {
		r.saved[l.ID] = *l
	}
	return nil
}

func TestDecode(t *testing.T) {
	id := uuid.New()
	l, err := Decode([]byte(`{"id":"` + id.String() + `","term":"jazz","ipAddress":"10.0.0.1","createdAt":"2026-01-02T03:04:05Z"}`))
	require.NoError(t, err)
	assert.Equal(t, id, l.ID)
	assert.Equal(t, "jazz", l.Term)
	assert.Nil(t, l.UserID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), l.CreatedAt)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"term":"jazz"}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"id":"` + id.String() + `","term":"  "}`))
	assert.Error(t, err)
}

func TestExecute_RedeliveryIsHarmless(t *testing.T) {
	repo := &memLogRepo{saved: map[uuid.UUID]search.Log{}}
	uc := NewRecordSearchLogUseCase(repo, logger.NewNopLogger())
	l := &search.Log{ID: uuid.New(), Term: "news"}

	require.NoError(t, uc.Execute(context.Background(), l))
	require.NoError(t, uc.Execute(context.Background(), l))
	assert.Len(t, repo.saved, 1)
}

func TestExecute_StoreError(t *testing.T) {
	repo := &memLogRepo{err: errors.New("connection refused")}
	uc := NewRecordSearchLogUseCase(repo, logger.NewNopLogger())

	err := uc.Execute(context.Background(), &search.Log{ID: uuid.New(), Term: "news"})
	assert.ErrorContains(t, err, "connection refused")
}
