package book

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

const (
	dialectPostgres  = "postgres"
	defaultTableName = "books"
	colID            = "id"
	colDoc           = "doc"
	aliasGenre       = "genre"
	aliasAvgPrice    = "average_price"
	aliasAuthor      = "author"
	aliasBookCount   = "book_count"
	aliasDecade      = "decade"
	castJsonb        = "?::jsonb"
	maxIndexFields   = 8
)

var dialect = goqu.Dialect(dialectPostgres)

// Op is a comparison operator of a query condition.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// Condition compares one document field against a value.
type Condition struct {
	Field string `json:"field" validate:"required"`
	Op    Op     `json:"op" validate:"required,oneof=eq gt gte lt lte"`
	Value any    `json:"value"`
}

// SortKey orders results by one document field.
type SortKey struct {
	Field string `json:"field" validate:"required"`
	Desc  bool   `json:"desc,omitempty"`
}

// Query is a structured find request. Conditions are combined with AND.
// Results always end in the store's default order (ascending id), so any
// explicit sort keys only take precedence over it.
type Query struct {
	Conditions []Condition `json:"conditions,omitempty" validate:"dive"`
	Projection []string    `json:"projection,omitempty"`
	Sort       []SortKey   `json:"sort,omitempty" validate:"dive"`
	Skip       int         `json:"skip,omitempty" validate:"gte=0"`
	Limit      int         `json:"limit,omitempty" validate:"gte=0"`
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindNumber
	kindBool
)

var documentFields = map[string]fieldKind{
	"title":          kindText,
	"author":         kindText,
	"genre":          kindText,
	"publisher":      kindText,
	"published_year": kindInt,
	"pages":          kindInt,
	"price":          kindNumber,
	"in_stock":       kindBool,
}

// fieldExpr returns the SQL expression reading a typed document field.
// Index definitions reuse the same expressions so the planner can match them.
func fieldExpr(field string) (string, error) {
	kind, ok := documentFields[field]
	if !ok {
		return "", fmt.Errorf("%w: unknown field %q", ErrInvalidArgument, field)
	}
	switch kind {
	case kindInt:
		return fmt.Sprintf("((doc->>'%s')::int)", field), nil
	case kindNumber:
		return fmt.Sprintf("((doc->>'%s')::numeric)", field), nil
	case kindBool:
		return fmt.Sprintf("((doc->>'%s')::boolean)", field), nil
	default:
		return fmt.Sprintf("(doc->>'%s')", field), nil
	}
}

func coerceValue(field string, v any) (any, error) {
	kind := documentFields[field]
	bad := func() error {
		return fmt.Errorf("%w: field %q cannot be compared with %v", ErrInvalidArgument, field, v)
	}

	switch kind {
	case kindInt:
		// integer fields are compared as ::int, so values must fit in 32 bits
		switch x := v.(type) {
		case int:
			if !fitsInt4(int64(x)) {
				return nil, bad()
			}
			return x, nil
		case int32:
			return int(x), nil
		case int64:
			if !fitsInt4(x) {
				return nil, bad()
			}
			return int(x), nil
		case float64:
			if x != math.Trunc(x) || x < math.MinInt32 || x > math.MaxInt32 {
				return nil, bad()
			}
			return int(x), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 32)
			if err != nil {
				return nil, bad()
			}
			return int(n), nil
		}
	case kindNumber:
		switch x := v.(type) {
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, bad()
			}
			return x, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, bad()
			}
			return f, nil
		}
	case kindBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, bad()
			}
			return b, nil
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, bad()
}

func fitsInt4(n int64) bool {
	return n >= math.MinInt32 && n <= math.MaxInt32
}

func conditionExpr(c Condition) (exp.Expression, error) {
	expr, err := fieldExpr(c.Field)
	if err != nil {
		return nil, err
	}
	val, err := coerceValue(c.Field, c.Value)
	if err != nil {
		return nil, err
	}

	lit := goqu.L(expr)
	switch c.Op {
	case OpEq:
		return lit.Eq(val), nil
	case OpGt:
		return lit.Gt(val), nil
	case OpGte:
		return lit.Gte(val), nil
	case OpLt:
		return lit.Lt(val), nil
	case OpLte:
		return lit.Lte(val), nil
	default:
		return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidArgument, c.Op)
	}
}

func projectionExpr(fields []string) (exp.LiteralExpression, error) {
	parts := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if _, ok := documentFields[f]; !ok {
			return nil, fmt.Errorf("%w: unknown projection field %q", ErrInvalidArgument, f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		parts = append(parts, fmt.Sprintf("'%s', doc->'%s'", f, f))
	}
	return goqu.L("jsonb_build_object(" + strings.Join(parts, ", ") + ")"), nil
}

// validateQuery checks every field reference of q without building SQL.
func validateQuery(q Query) error {
	if q.Skip < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: skip and limit must not be negative", ErrInvalidArgument)
	}
	for _, c := range q.Conditions {
		if _, err := conditionExpr(c); err != nil {
			return err
		}
	}
	if len(q.Projection) > 0 {
		if _, err := projectionExpr(q.Projection); err != nil {
			return err
		}
	}
	for _, s := range q.Sort {
		if _, err := fieldExpr(s.Field); err != nil {
			return err
		}
	}
	return nil
}

// buildFind translates q into a select of (id, doc) rows. With a projection
// the doc column only carries the projected fields.
func buildFind(table string, q Query) (*goqu.SelectDataset, error) {
	ds := dialect.From(table)

	if len(q.Projection) > 0 {
		proj, err := projectionExpr(q.Projection)
		if err != nil {
			return nil, err
		}
		ds = ds.Select(goqu.C(colID), proj.As(colDoc))
	} else {
		ds = ds.Select(goqu.C(colID), goqu.C(colDoc))
	}

	if len(q.Conditions) > 0 {
		exprs := make([]exp.Expression, 0, len(q.Conditions))
		for _, c := range q.Conditions {
			e, err := conditionExpr(c)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		ds = ds.Where(exprs...)
	}

	order := make([]exp.OrderedExpression, 0, len(q.Sort)+1)
	for _, s := range q.Sort {
		expr, err := fieldExpr(s.Field)
		if err != nil {
			return nil, err
		}
		if s.Desc {
			order = append(order, goqu.L(expr).Desc())
		} else {
			order = append(order, goqu.L(expr).Asc())
		}
	}
	order = append(order, goqu.C(colID).Asc())
	ds = ds.Order(order...)

	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}
	if q.Skip > 0 {
		ds = ds.Offset(uint(q.Skip))
	}
	return ds, nil
}

func buildInsert(table string, docs [][]byte) *goqu.InsertDataset {
	rows := make([]any, len(docs))
	for i, d := range docs {
		rows[i] = goqu.Record{colDoc: goqu.L(castJsonb, string(d))}
	}
	return dialect.Insert(table).Rows(rows...)
}

func buildAveragePriceByGenre(table string) *goqu.SelectDataset {
	genre := goqu.L("(doc->>'genre')")
	return dialect.From(table).
		Select(
			genre.As(aliasGenre),
			goqu.L("AVG((doc->>'price')::numeric)::float8").As(aliasAvgPrice),
		).
		GroupBy(genre).
		Order(goqu.C(aliasAvgPrice).Asc().NullsLast(), goqu.C(aliasGenre).Asc().NullsLast())
}

// buildTopAuthor breaks count ties by ascending author name.
func buildTopAuthor(table string) *goqu.SelectDataset {
	author := goqu.L("(doc->>'author')")
	return dialect.From(table).
		Select(author.As(aliasAuthor), goqu.COUNT(goqu.Star()).As(aliasBookCount)).
		GroupBy(author).
		Order(goqu.C(aliasBookCount).Desc(), goqu.C(aliasAuthor).Asc().NullsLast()).
		Limit(1)
}

// buildCountByDecade skips documents without a published_year.
func buildCountByDecade(table string) *goqu.SelectDataset {
	decade := goqu.L("(FLOOR(((doc->>'published_year')::numeric) / 10) * 10)::int")
	return dialect.From(table).
		Select(decade.As(aliasDecade), goqu.COUNT(goqu.Star()).As(aliasBookCount)).
		Where(goqu.L("(doc->>'published_year')").IsNotNull()).
		GroupBy(decade).
		Order(goqu.C(aliasDecade).Asc())
}

// indexName derives a stable name from the key list, so the same spec always
// maps onto the same index.
func indexName(table string, spec IndexSpec) string {
	parts := []string{table}
	for _, f := range spec.Fields {
		parts = append(parts, f.Field, strconv.Itoa(f.Direction))
	}
	if spec.Unique {
		parts = append(parts, "unique")
	}
	return strings.Join(parts, "_")
}

func buildCreateIndex(table string, spec IndexSpec) (string, string, error) {
	if len(spec.Fields) == 0 || len(spec.Fields) > maxIndexFields {
		return "", "", fmt.Errorf("%w: an index needs between 1 and %d fields", ErrInvalidArgument, maxIndexFields)
	}

	cols := make([]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		expr, err := fieldExpr(f.Field)
		if err != nil {
			return "", "", err
		}
		switch f.Direction {
		case 1:
			cols = append(cols, expr+" ASC")
		case -1:
			cols = append(cols, expr+" DESC")
		default:
			return "", "", fmt.Errorf("%w: direction of %q must be 1 or -1", ErrInvalidArgument, f.Field)
		}
	}

	unique := ""
	if spec.Unique {
		unique = "UNIQUE "
	}
	name := indexName(table, spec)
	ddl := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique,
		pgx.Identifier{name}.Sanitize(),
		pgx.Identifier{table}.Sanitize(),
		strings.Join(cols, ", "),
	)
	return name, ddl, nil
}
