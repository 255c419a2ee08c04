package program

import (
	"fmt"
	"math"
	"strings"
)

// Field names a filterable program attribute. Storage adapters own the
// mapping from Field to their physical column.
type Field string

const (
	FieldStatus      Field = "status"
	FieldCategoryID  Field = "categoryId"
	FieldLanguageID  Field = "languageId"
	FieldContentType Field = "contentType"
	FieldVideoSource Field = "videoSource"
)

// Predicate is a single equality condition.
type Predicate struct {
	Field Field
	Value any
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s=%v", p.Field, p.Value)
}

func StatusIs(s Status) Predicate { return Predicate{Field: FieldStatus, Value: string(s)} }

// Filter holds the optional equality filters a caller may ask for.
type Filter struct {
	Status      *Status
	CategoryID  *int64
	LanguageID  *int64
	ContentType *ContentType
	VideoSource *VideoSource
}

type predicateRule func(Filter) (Predicate, bool)

// filterRules is evaluated in order; adding a filter field means adding
// one rule here.
var filterRules = []predicateRule{
	func(f Filter) (Predicate, bool) {
		if f.Status == nil {
			return Predicate{}, false
		}
		return StatusIs(*f.Status), true
	},
	func(f Filter) (Predicate, bool) {
		if f.CategoryID == nil {
			return Predicate{}, false
		}
		return Predicate{Field: FieldCategoryID, Value: *f.CategoryID}, true
	},
	func(f Filter) (Predicate, bool) {
		if f.LanguageID == nil {
			return Predicate{}, false
		}
		return Predicate{Field: FieldLanguageID, Value: *f.LanguageID}, true
	},
	func(f Filter) (Predicate, bool) {
		if f.ContentType == nil {
			return Predicate{}, false
		}
		return Predicate{Field: FieldContentType, Value: string(*f.ContentType)}, true
	},
	func(f Filter) (Predicate, bool) {
		if f.VideoSource == nil {
			return Predicate{}, false
		}
		return Predicate{Field: FieldVideoSource, Value: string(*f.VideoSource)}, true
	},
}

func (f Filter) Predicates() []Predicate {
	preds := make([]Predicate, 0, len(filterRules))
	for _, rule := range filterRules {
		if p, ok := rule(f); ok {
			preds = append(preds, p)
		}
	}
	return preds
}

type SortField string

const (
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
	SortTitle       SortField = "title"
	SortPublishDate SortField = "publishDate"
	SortViewCount   SortField = "viewCount"
	SortLikeCount   SortField = "likeCount"
	SortDuration    SortField = "duration"
)

var sortable = map[SortField]struct{}{
	SortCreatedAt: {}, SortUpdatedAt: {}, SortTitle: {}, SortPublishDate: {},
	SortViewCount: {}, SortLikeCount: {}, SortDuration: {},
}

type Sort struct {
	Field SortField
	Desc  bool
}

// NewSort falls back to creation time for unknown fields and to
// descending order for anything other than "asc".
func NewSort(field, order string) Sort {
	f := SortField(field)
	if _, ok := sortable[f]; !ok {
		f = SortCreatedAt
	}
	return Sort{Field: f, Desc: !strings.EqualFold(order, "asc")}
}

func DefaultSort() Sort { return Sort{Field: SortCreatedAt, Desc: true} }

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is 1-indexed.
type Page struct {
	Number int
	Limit  int
}

func NewPage(number, limit int) Page {
	if number <= 0 {
		number = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Query is what the storage layer executes: the same predicates drive
// both the page and the total count.
type Query struct {
	Predicates []Predicate
	Sort       Sort
	Page       Page
}

func NewQuery(f Filter, s Sort, p Page) Query {
	return Query{Predicates: f.Predicates(), Sort: s, Page: p}
}

// Where returns a copy of q with one more predicate.
func (q Query) Where(p Predicate) Query {
	preds := make([]Predicate, 0, len(q.Predicates)+1)
	preds = append(preds, q.Predicates...)
	q.Predicates = append(preds, p)
	return q
}

// Signature is a deterministic rendering of the query, used for cache keys.
func (q Query) Signature() string {
	var b strings.Builder
	for _, p := range q.Predicates {
		b.WriteString(p.String())
		b.WriteByte('&')
	}
	dir := "asc"
	if q.Sort.Desc {
		dir = "desc"
	}
	fmt.Fprintf(&b, "sort=%s:%s&page=%d&limit=%d", q.Sort.Field, dir, q.Page.Number, q.Page.Limit)
	return b.String()
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPagination(p Page, total int) Pagination {
	p = NewPage(p.Number, p.Limit)
	pages := int(math.Ceil(float64(total) / float64(p.Limit)))
	if pages < 1 {
		pages = 1
	}
	return Pagination{
		Page:       p.Number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    p.Number*p.Limit < total,
		HasPrev:    p.Number > 1,
	}
}
