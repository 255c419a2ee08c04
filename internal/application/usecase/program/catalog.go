package program

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel"

	"github.com/khoahotran/program-catalog/internal/application/service"
	categoryUC "github.com/khoahotran/program-catalog/internal/application/usecase/category"
	languageUC "github.com/khoahotran/program-catalog/internal/application/usecase/language"
	"github.com/khoahotran/program-catalog/internal/domain/category"
	"github.com/khoahotran/program-catalog/internal/domain/counter"
	"github.com/khoahotran/program-catalog/internal/domain/language"
	"github.com/khoahotran/program-catalog/internal/domain/program"
	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/internal/domain/user"
	"github.com/khoahotran/program-catalog/pkg/apperror"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

var tracer = otel.Tracer("program_usecase")

// Source tells the caller where a read was served from.
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "store"
)

const (
	// ListPrefix covers both list and search pages.
	ListPrefix   = "programs:"
	listKeyNS    = "programs:list:"
	searchKeyNS  = "programs:search:"
	ItemPrefix   = "program:"
	defaultTTL   = 5 * time.Minute
	defaultItem  = time.Hour
	storeTimeout = 5 * time.Second
)

// TTLs holds cache lifetimes. Zero values fall back to the defaults.
type TTLs struct {
	List   time.Duration
	Search time.Duration
	Item   time.Duration
}

// Deps is what every program use case is built from.
type Deps struct {
	Programs     program.Repository
	Categories   category.Repository
	Languages    language.Repository
	Allocator    counter.Allocator
	Cache        service.Cache
	Assembler    *Assembler
	Searcher     search.Searcher
	SearchLogs   service.SearchLogPublisher
	TTL          TTLs
	QueryTimeout time.Duration
	Logger       logger.Logger
	Now          func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) listTTL() time.Duration   { return orDefault(d.TTL.List, defaultTTL) }
func (d Deps) searchTTL() time.Duration { return orDefault(d.TTL.Search, defaultTTL) }
func (d Deps) itemTTL() time.Duration   { return orDefault(d.TTL.Item, defaultItem) }

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// storeCtx bounds one store round trip.
func (d Deps) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, orDefault(d.QueryTimeout, storeTimeout))
}

func ItemKey(id int64) string {
	return ItemPrefix + strconv.FormatInt(id, 10)
}

func listKey(role user.Role, q program.Query) string {
	return listKeyNS + hashSignature(fmt.Sprintf("role=%s&%s", role, q.Signature()))
}

func searchKey(term string, page program.Page) string {
	return searchKeyNS + hashSignature(fmt.Sprintf("term=%s&page=%d&limit=%d", term, page.Number, page.Limit))
}

func hashSignature(sig string) string {
	return strconv.FormatUint(xxhash.Sum64String(sig), 16)
}

// invalidateProgram drops the item entry (when id > 0) and every list and
// search page.
func (d Deps) invalidateProgram(ctx context.Context, id int64) {
	if id > 0 {
		d.Cache.Delete(ctx, ItemKey(id))
	}
	d.Cache.InvalidatePrefix(ctx, ListPrefix)
}

// invalidateLookups drops cached categories and languages whose
// programCount a write just changed. Nil ids are skipped.
func (d Deps) invalidateLookups(ctx context.Context, categoryIDs, languageIDs []*int64) {
	var cats, langs bool
	for _, id := range categoryIDs {
		if id != nil {
			d.Cache.Delete(ctx, categoryUC.ItemKey(*id))
			cats = true
		}
	}
	for _, id := range languageIDs {
		if id != nil {
			d.Cache.Delete(ctx, languageUC.ItemKey(*id))
			langs = true
		}
	}
	if cats {
		d.Cache.InvalidatePrefix(ctx, categoryUC.ListPrefix)
	}
	if langs {
		d.Cache.InvalidatePrefix(ctx, languageUC.ListPrefix)
	}
}

// checkReferences verifies category and language ids point at existing
// rows. Absent ids are fine.
func (d Deps) checkReferences(ctx context.Context, categoryID, languageID *int64) error {
	if categoryID != nil {
		sctx, cancel := d.storeCtx(ctx)
		_, err := d.Categories.FindByID(sctx, *categoryID)
		cancel()
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewInvalidInput(fmt.Sprintf("category %d does not exist", *categoryID), err)
			}
			return err
		}
	}
	if languageID != nil {
		sctx, cancel := d.storeCtx(ctx)
		_, err := d.Languages.FindByID(sctx, *languageID)
		cancel()
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewInvalidInput(fmt.Sprintf("language %d does not exist", *languageID), err)
			}
			return err
		}
	}
	return nil
}
