package program

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/counter"
	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

type CreateProgramUseCase struct {
	deps Deps
}

func NewCreateProgramUseCase(d Deps) *CreateProgramUseCase {
	return &CreateProgramUseCase{deps: d}
}

// CreateProgramInput carries the caller plus the initial field values.
// Unset fields take the program defaults.
type CreateProgramInput struct {
	Caller user.Caller
	Fields program.Patch
}

func (uc *CreateProgramUseCase) Execute(ctx context.Context, input CreateProgramInput) (*View, error) {
	ctx, span := tracer.Start(ctx, "CreateProgram")
	defer span.End()

	if !program.CanCreate(input.Caller.Role) {
		err := apperror.NewPermissionDenied("role " + string(input.Caller.Role) + " cannot create programs")
		span.RecordError(err)
		return nil, err
	}

	now := uc.deps.now()
	p := &program.Program{
		Status:      program.StatusDraft,
		ContentType: program.ContentTypeVideo,
		VideoSource: program.VideoSourceYouTube,
		VideoType:   program.VideoTypeOther,
		Tags:        []string{},
		IsActive:    true,
		CreatedBy:   input.Caller.ID,
		CreatedAt:   now,
	}
	p.Apply(input.Fields, now)

	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}
	if err := uc.deps.checkReferences(ctx, p.CategoryID, p.LanguageID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	id, err := uc.deps.Allocator.Allocate(ctx, counter.EntityPrograms)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	p.ID = id

	sctx, cancel := uc.deps.storeCtx(ctx)
	err = uc.deps.Programs.Save(sctx, p)
	cancel()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.deps.invalidateProgram(ctx, 0)
	uc.deps.invalidateLookups(ctx, []*int64{p.CategoryID}, []*int64{p.LanguageID})
	span.SetAttributes(attribute.Int64("program_id", id))
	uc.deps.Logger.Info("Program created", zap.Int64("program_id", id), zap.String("created_by", p.CreatedBy.String()))

	return uc.deps.Assembler.Assemble(ctx, p), nil
}
