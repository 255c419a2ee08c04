package program

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/user"
)

type DeleteProgramUseCase struct {
	deps Deps
}

func NewDeleteProgramUseCase(d Deps) *DeleteProgramUseCase {
	return &DeleteProgramUseCase{deps: d}
}

type DeleteProgramInput struct {
	Caller user.Caller
	ID     int64
}

func (uc *DeleteProgramUseCase) Execute(ctx context.Context, input DeleteProgramInput) error {
	ctx, span := tracer.Start(ctx, "DeleteProgram")
	defer span.End()

	p, err := uc.deps.loadForMutation(ctx, input.Caller, input.ID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	sctx, cancel := uc.deps.storeCtx(ctx)
	err = uc.deps.Programs.Delete(sctx, input.ID)
	cancel()
	if err != nil {
		span.RecordError(err)
		return err
	}

	uc.deps.invalidateProgram(ctx, input.ID)
	uc.deps.invalidateLookups(ctx, []*int64{p.CategoryID}, []*int64{p.LanguageID})
	uc.deps.Logger.Info("Program deleted", zap.Int64("program_id", input.ID), zap.String("caller", input.Caller.ID.String()))
	return nil
}
