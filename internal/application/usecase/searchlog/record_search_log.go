package searchlog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

// RecordSearchLogUseCase persists search logs consumed from the event
// stream.
type RecordSearchLogUseCase struct {
	repo   search.LogRepository
	logger logger.Logger
}

func NewRecordSearchLogUseCase(repo search.LogRepository, log logger.Logger) *RecordSearchLogUseCase {
	return &RecordSearchLogUseCase{repo: repo, logger: log}
}

// Decode parses one message payload. A payload that can never be stored
// returns an error and should be skipped rather than retried.
func Decode(raw []byte) (*search.Log, error) {
	var l search.Log
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode search log: %w", err)
	}
	if l.ID == uuid.Nil {
		return nil, fmt.Errorf("search log has no id")
	}
	if strings.TrimSpace(l.Term) == "" {
		return nil, fmt.Errorf("search log %s has empty term", l.ID)
	}
	return &l, nil
}

// Execute saves the log. Saving the same id twice is a no-op, so a
// redelivered message is harmless.
func (uc *RecordSearchLogUseCase) Execute(ctx context.Context, l *search.Log) error {
	if err := uc.repo.Save(ctx, l); err != nil {
		return fmt.Errorf("save search log %s: %w", l.ID, err)
	}
	uc.logger.Debug("Search log recorded", zap.String("id", l.ID.String()), zap.String("term", l.Term))
	return nil
}
