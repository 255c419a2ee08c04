package search

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/program-catalog/internal/domain/program"
)

// Searcher finds published programs matching a free-text term. The
// returned slice is one page; total counts every match.
type Searcher interface {
	Search(ctx context.Context, term string, page program.Page) ([]*program.Program, int, error)
}

// Log is one recorded search request.
type Log struct {
	ID        uuid.UUID  `json:"id"`
	Term      string     `json:"term"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	IPAddress string     `json:"ipAddress,omitempty"`
	UserAgent string     `json:"userAgent,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type LogRepository interface {
	Save(ctx context.Context, l *Log) error
}
