package program

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/program-catalog/internal/domain/category"
	"github.com/khoahotran/program-catalog/internal/domain/language"
	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

const (
	UnknownCategory = "Unknown Category"
	UnknownLanguage = "Unknown Language"
	UnknownUser     = "Unknown User"
)

// Reason says why a reference was not resolved.
type Reason string

const (
	ReasonNoReference  Reason = "no_reference"
	ReasonNotFound     Reason = "not_found"
	ReasonLookupFailed Reason = "lookup_failed"
)

type Resolution struct {
	Resolved bool   `json:"resolved"`
	Reason   Reason `json:"reason,omitempty"`
}

func resolved() Resolution { return Resolution{Resolved: true} }

// failed classifies a lookup error. Anything but a not-found is an outage.
func failed(err error) Resolution {
	if errors.Is(err, apperror.ErrNotFound) {
		return Resolution{Reason: ReasonNotFound}
	}
	return Resolution{Reason: ReasonLookupFailed}
}

type CategoryRef struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name"`
	Resolution
}

type LanguageRef struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
	Resolution
}

type CreatorRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Resolution
}

type MetadataRef struct {
	Items []program.Metadata `json:"items"`
	Resolution
}

// View is a program with its references resolved for display.
type View struct {
	program.Program
	Category CategoryRef `json:"category"`
	Language LanguageRef `json:"language"`
	Creator  CreatorRef  `json:"creator"`
	Metadata MetadataRef `json:"metadata"`
}

const assembleConcurrency = 8

// Assembler denormalises programs. Each reference is resolved on its own
// and a failed lookup becomes a labelled placeholder, never an error.
type Assembler struct {
	categories category.Repository
	languages  language.Repository
	profiles   user.ProfileRepository
	metadata   program.MetadataRepository
	logger     logger.Logger
}

func NewAssembler(cRepo category.Repository, lRepo language.Repository, profiles user.ProfileRepository, mRepo program.MetadataRepository, log logger.Logger) *Assembler {
	return &Assembler{
		categories: cRepo,
		languages:  lRepo,
		profiles:   profiles,
		metadata:   mRepo,
		logger:     log.With(zap.String("component", "assembler")),
	}
}

func (a *Assembler) Assemble(ctx context.Context, p *program.Program) *View {
	v := &View{Program: *p}
	v.Category = a.resolveCategory(ctx, p)
	v.Language = a.resolveLanguage(ctx, p)
	v.Creator = a.resolveCreator(ctx, p)
	v.Metadata = a.resolveMetadata(ctx, p)
	return v
}

// AssembleAll keeps input order.
func (a *Assembler) AssembleAll(ctx context.Context, ps []*program.Program) []*View {
	views := make([]*View, len(ps))
	var g errgroup.Group
	g.SetLimit(assembleConcurrency)
	for i, p := range ps {
		g.Go(func() error {
			views[i] = a.Assemble(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return views
}

func (a *Assembler) resolveCategory(ctx context.Context, p *program.Program) CategoryRef {
	ref := CategoryRef{ID: p.CategoryID, Name: UnknownCategory}
	if p.CategoryID == nil {
		ref.Resolution = Resolution{Reason: ReasonNoReference}
		return ref
	}
	c, err := a.categories.FindByID(ctx, *p.CategoryID)
	if err != nil {
		ref.Resolution = failed(err)
		a.logger.Warn("Category unresolved", zap.Int64("program_id", p.ID),
			zap.Int64("category_id", *p.CategoryID), zap.String("reason", string(ref.Reason)), zap.Error(err))
		return ref
	}
	ref.Name = c.Name
	ref.Resolution = resolved()
	return ref
}

func (a *Assembler) resolveLanguage(ctx context.Context, p *program.Program) LanguageRef {
	ref := LanguageRef{ID: p.LanguageID, Name: UnknownLanguage}
	if p.LanguageID == nil {
		ref.Resolution = Resolution{Reason: ReasonNoReference}
		return ref
	}
	l, err := a.languages.FindByID(ctx, *p.LanguageID)
	if err != nil {
		ref.Resolution = failed(err)
		a.logger.Warn("Language unresolved", zap.Int64("program_id", p.ID),
			zap.Int64("language_id", *p.LanguageID), zap.String("reason", string(ref.Reason)), zap.Error(err))
		return ref
	}
	ref.Name = l.Name
	ref.Code = l.Code
	ref.Resolution = resolved()
	return ref
}

func (a *Assembler) resolveCreator(ctx context.Context, p *program.Program) CreatorRef {
	ref := CreatorRef{ID: p.CreatedBy.String(), Username: UnknownUser}
	if p.CreatedBy == uuid.Nil {
		ref.Resolution = Resolution{Reason: ReasonNoReference}
		return ref
	}
	prof, err := a.profiles.FindProfile(ctx, p.CreatedBy)
	if err != nil {
		ref.Resolution = failed(err)
		a.logger.Warn("Creator unresolved", zap.Int64("program_id", p.ID),
			zap.String("created_by", ref.ID), zap.String("reason", string(ref.Reason)), zap.Error(err))
		return ref
	}
	ref.Username = prof.Username
	ref.Resolution = resolved()
	return ref
}

func (a *Assembler) resolveMetadata(ctx context.Context, p *program.Program) MetadataRef {
	items, err := a.metadata.ListByProgram(ctx, p.ID)
	if err != nil {
		a.logger.Warn("Metadata unresolved", zap.Int64("program_id", p.ID), zap.Error(err))
		return MetadataRef{Items: []program.Metadata{}, Resolution: Resolution{Reason: ReasonLookupFailed}}
	}
	if items == nil {
		items = []program.Metadata{}
	}
	return MetadataRef{Items: items, Resolution: resolved()}
}
