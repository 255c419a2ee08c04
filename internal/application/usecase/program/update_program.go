package program

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
)

type UpdateProgramUseCase struct {
	deps Deps
}

func NewUpdateProgramUseCase(d Deps) *UpdateProgramUseCase {
	return &UpdateProgramUseCase{deps: d}
}

type UpdateProgramInput struct {
	Caller user.Caller
	ID     int64
	Patch  program.Patch
}

// loadForMutation fetches id and applies the visibility and ownership
// rules shared by update and delete.
func (d Deps) loadForMutation(ctx context.Context, caller user.Caller, id int64) (*program.Program, error) {
	sctx, cancel := d.storeCtx(ctx)
	p, err := d.Programs.FindByID(sctx, id)
	cancel()
	if err != nil {
		return nil, err
	}
	if !program.CanView(caller.Role, p) {
		return nil, notFound(id)
	}
	if !program.CanMutate(caller.Role, p, caller.ID) {
		return nil, apperror.NewPermissionDenied("caller may not modify program " + strconv.FormatInt(id, 10))
	}
	return p, nil
}

func (uc *UpdateProgramUseCase) Execute(ctx context.Context, input UpdateProgramInput) (*View, error) {
	ctx, span := tracer.Start(ctx, "UpdateProgram")
	defer span.End()
	span.SetAttributes(attribute.Int64("program_id", input.ID))

	p, err := uc.deps.loadForMutation(ctx, input.Caller, input.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Only references that actually change are re-checked; a dangling id
	// left over from a deleted category does not block unrelated edits.
	var catID, langID *int64
	oldCat, oldLang := p.CategoryID, p.LanguageID
	if input.Patch.CategoryID != nil && !sameID(p.CategoryID, input.Patch.CategoryID) {
		catID = input.Patch.CategoryID
	}
	if input.Patch.LanguageID != nil && !sameID(p.LanguageID, input.Patch.LanguageID) {
		langID = input.Patch.LanguageID
	}

	p.Apply(input.Patch, uc.deps.now())
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}
	if err := uc.deps.checkReferences(ctx, catID, langID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	sctx, cancel := uc.deps.storeCtx(ctx)
	err = uc.deps.Programs.Update(sctx, p)
	cancel()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.deps.invalidateProgram(ctx, p.ID)
	var movedCats, movedLangs []*int64
	if catID != nil {
		movedCats = []*int64{oldCat, catID}
	}
	if langID != nil {
		movedLangs = []*int64{oldLang, langID}
	}
	uc.deps.invalidateLookups(ctx, movedCats, movedLangs)
	uc.deps.Logger.Info("Program updated", zap.Int64("program_id", p.ID), zap.String("caller", input.Caller.ID.String()))
	return uc.deps.Assembler.Assemble(ctx, p), nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
