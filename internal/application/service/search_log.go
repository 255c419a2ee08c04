package service

import (
	"context"

	"github.com/khoahotran/program-catalog/internal/domain/search"
)

// SearchLogPublisher ships search analytics out of the request path.
type SearchLogPublisher interface {
	PublishSearchLog(ctx context.Context, l search.Log) error
}
