package program

import (
	"context"
	"strconv"

	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

type GetProgramUseCase struct {
	deps Deps
}

func NewGetProgramUseCase(d Deps) *GetProgramUseCase {
	return &GetProgramUseCase{deps: d}
}

type GetProgramInput struct {
	Caller user.Caller
	ID     int64
}

type GetProgramOutput struct {
	Program *View
	Source  Source
}

// Execute serves a point lookup. The cached view is shared by every role,
// so visibility is checked after the read on both paths. A program the
// caller may not see is reported as not found.
func (uc *GetProgramUseCase) Execute(ctx context.Context, input GetProgramInput) (*GetProgramOutput, error) {
	ctx, span := tracer.Start(ctx, "GetProgram")
	defer span.End()

	key := ItemKey(input.ID)
	var cached View
	if uc.deps.Cache.Get(ctx, key, &cached) {
		if !program.CanView(input.Caller.Role, &cached.Program) {
			return nil, notFound(input.ID)
		}
		return &GetProgramOutput{Program: &cached, Source: SourceCache}, nil
	}

	sctx, cancel := uc.deps.storeCtx(ctx)
	p, err := uc.deps.Programs.FindByID(sctx, input.ID)
	cancel()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	view := uc.deps.Assembler.Assemble(ctx, p)
	uc.deps.Cache.Set(ctx, key, view, uc.deps.itemTTL())

	if !program.CanView(input.Caller.Role, p) {
		return nil, notFound(input.ID)
	}
	return &GetProgramOutput{Program: view, Source: SourceStore}, nil
}

func notFound(id int64) error {
	return apperror.NewNotFound("program", strconv.FormatInt(id, 10))
}
