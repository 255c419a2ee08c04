package program

import (
	"context"
)

// IncrementCounterUseCase bumps a view or like counter. Cached copies are
// left alone and catch up when their TTL runs out.
type IncrementCounterUseCase struct {
	deps Deps
	bump func(context.Context, int64) error
	name string
}

func NewIncrementViewUseCase(d Deps) *IncrementCounterUseCase {
	return &IncrementCounterUseCase{deps: d, bump: d.Programs.IncrementViewCount, name: "IncrementView"}
}

func NewIncrementLikeUseCase(d Deps) *IncrementCounterUseCase {
	return &IncrementCounterUseCase{deps: d, bump: d.Programs.IncrementLikeCount, name: "IncrementLike"}
}

func (uc *IncrementCounterUseCase) Execute(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, uc.name)
	defer span.End()

	sctx, cancel := uc.deps.storeCtx(ctx)
	defer cancel()
	if err := uc.bump(sctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
