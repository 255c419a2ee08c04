package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/auth"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

// RefreshUseCase re-issues an access token. Concurrent refreshes of the
// same token share one lookup and one signed result.
type RefreshUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
	group    singleflight.Group
}

const refreshTimeout = 5 * time.Second

func NewRefreshUseCase(repo user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *RefreshUseCase {
	return &RefreshUseCase{userRepo: repo, jwtSvc: jwtSvc, logger: log}
}

type RefreshOutput struct {
	AccessToken string    `json:"accessToken"`
	User        user.User `json:"user"`
	// Shared is true when the result came from a refresh already in flight.
	Shared bool `json:"-"`
}

func (uc *RefreshUseCase) Execute(ctx context.Context, token string) (*RefreshOutput, error) {
	ctx, span := tracer.Start(ctx, "Refresh")
	defer span.End()

	// The shared lookup outlives any one caller; each caller still stops
	// waiting when its own context ends.
	ch := uc.group.DoChan(token, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return uc.refresh(sctx, token)
	})

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			span.RecordError(res.Err)
			return nil, res.Err
		}
		out := *res.Val.(*RefreshOutput)
		out.Shared = res.Shared
		return &out, nil
	}
}

func (uc *RefreshUseCase) refresh(ctx context.Context, token string) (*RefreshOutput, error) {
	claims, err := uc.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token", err)
	}

	// Reload so a role change since the last login takes effect.
	u, err := uc.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("user no longer exists", err)
		}
		return nil, err
	}

	fresh, err := uc.jwtSvc.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	return &RefreshOutput{AccessToken: fresh, User: *u}, nil
}
