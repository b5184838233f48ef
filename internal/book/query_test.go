package book

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldExpr(t *testing.T) {
	cases := map[string]string{
		"title":          "(doc->>'title')",
		"published_year": "((doc->>'published_year')::int)",
		"price":          "((doc->>'price')::numeric)",
		"in_stock":       "((doc->>'in_stock')::boolean)",
	}
	for field, want := range cases {
		got, err := fieldExpr(field)
		require.NoError(t, err, field)
		assert.Equal(t, want, got)
	}

	_, err := fieldExpr("isbn'; DROP TABLE books; --")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestCoerceValue(t *testing.T) {
	t.Run("year from json number", func(t *testing.T) {
		v, err := coerceValue("published_year", float64(1950))
		require.NoError(t, err)
		assert.Equal(t, 1950, v)
	})

	t.Run("fractional year", func(t *testing.T) {
		_, err := coerceValue("published_year", 1950.5)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("year outside int4 range", func(t *testing.T) {
		for _, v := range []any{1e300, -1e300, float64(math.MaxInt32) + 1, int64(3000000000), "3000000000"} {
			_, err := coerceValue("published_year", v)
			assert.ErrorIs(t, err, ErrInvalidArgument, "%v", v)
		}

		v, err := coerceValue("published_year", float64(math.MaxInt32))
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt32, v)
	})

	t.Run("non numeric year", func(t *testing.T) {
		_, err := coerceValue("published_year", "nineteen fifty")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("price from int", func(t *testing.T) {
		v, err := coerceValue("price", 12)
		require.NoError(t, err)
		assert.Equal(t, float64(12), v)
	})

	t.Run("bool from string", func(t *testing.T) {
		v, err := coerceValue("in_stock", "true")
		require.NoError(t, err)
		assert.Equal(t, true, v)
	})

	t.Run("text rejects numbers", func(t *testing.T) {
		_, err := coerceValue("genre", 3)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestBuildFind_Filter(t *testing.T) {
	ds, err := buildFind("books", Query{
		Conditions: []Condition{{Field: "genre", Op: OpEq, Value: "Fiction"}},
	})
	require.NoError(t, err)

	sql, args, err := ds.Prepared(true).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `SELECT "id", "doc" FROM "books"`)
	assert.Contains(t, sql, "(doc->>'genre') = $1")
	assert.Contains(t, sql, `ORDER BY "id" ASC`)
	assert.Equal(t, []interface{}{"Fiction"}, args)
}

func TestBuildFind_RangeAndFlag(t *testing.T) {
	ds, err := buildFind("books", Query{
		Conditions: []Condition{
			{Field: "in_stock", Op: OpEq, Value: true},
			{Field: "published_year", Op: OpGt, Value: 2010},
		},
	})
	require.NoError(t, err)

	sql, args, err := ds.Prepared(true).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, "((doc->>'in_stock')::boolean)")
	assert.Contains(t, sql, "((doc->>'published_year')::int) >")
	assert.Contains(t, args, 2010)
}

func TestBuildFind_SortKeepsDefaultOrderAsTieBreak(t *testing.T) {
	ds, err := buildFind("books", Query{Sort: []SortKey{{Field: "price", Desc: true}}})
	require.NoError(t, err)

	sql, _, err := ds.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `ORDER BY ((doc->>'price')::numeric) DESC, "id" ASC`)
}

func TestBuildFind_Pagination(t *testing.T) {
	ds, err := buildFind("books", Query{Skip: 5, Limit: 5})
	require.NoError(t, err)

	sql, _, err := ds.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 5 OFFSET 5")
}

func TestBuildFind_Projection(t *testing.T) {
	ds, err := buildFind("books", Query{Projection: []string{"title", "author", "price", "title"}})
	require.NoError(t, err)

	sql, _, err := ds.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "jsonb_build_object('title', doc->'title', 'author', doc->'author', 'price', doc->'price') AS \"doc\"")
}

func TestBuildFind_UnknownField(t *testing.T) {
	_, err := buildFind("books", Query{Sort: []SortKey{{Field: "_id"}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = buildFind("books", Query{Projection: []string{"secret"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = buildFind("books", Query{Conditions: []Condition{{Field: "price", Op: "like", Value: 1}}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildFind_HugeYearIsRejected(t *testing.T) {
	_, err := buildFind("books", Query{
		Conditions: []Condition{{Field: "published_year", Op: OpGt, Value: 1e300}},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildAggregations(t *testing.T) {
	t.Run("average price by genre", func(t *testing.T) {
		sql, _, err := buildAveragePriceByGenre("books").ToSQL()
		require.NoError(t, err)
		assert.Contains(t, sql, "AVG((doc->>'price')::numeric)::float8 AS \"average_price\"")
		assert.Contains(t, sql, "GROUP BY (doc->>'genre')")
		assert.Contains(t, sql, `ORDER BY "average_price" ASC NULLS LAST, "genre" ASC NULLS LAST`)
	})

	t.Run("top author", func(t *testing.T) {
		sql, _, err := buildTopAuthor("books").ToSQL()
		require.NoError(t, err)
		assert.Contains(t, sql, `ORDER BY "book_count" DESC, "author" ASC NULLS LAST`)
		assert.Contains(t, sql, "LIMIT 1")
	})

	t.Run("count by decade", func(t *testing.T) {
		sql, _, err := buildCountByDecade("books").ToSQL()
		require.NoError(t, err)
		assert.Contains(t, sql, "(FLOOR(((doc->>'published_year')::numeric) / 10) * 10)::int AS \"decade\"")
		assert.Contains(t, sql, "IS NOT NULL")
		assert.Contains(t, sql, `ORDER BY "decade" ASC`)
	})
}

func TestBuildInsert(t *testing.T) {
	sql, args, err := buildInsert("books", [][]byte{[]byte(`{"title":"1984"}`), []byte(`{"title":"Dune"}`)}).Prepared(true).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `INSERT INTO "books" ("doc") VALUES ($1::jsonb), ($2::jsonb)`)
	assert.Equal(t, []interface{}{`{"title":"1984"}`, `{"title":"Dune"}`}, args)
}

func TestBuildCreateIndex(t *testing.T) {
	t.Run("single field", func(t *testing.T) {
		name, ddl, err := buildCreateIndex("books", IndexSpec{Fields: []IndexField{{Field: "title", Direction: 1}}})
		require.NoError(t, err)
		assert.Equal(t, "books_title_1", name)
		assert.Equal(t, `CREATE INDEX IF NOT EXISTS "books_title_1" ON "books" ((doc->>'title') ASC)`, ddl)
	})

	t.Run("compound", func(t *testing.T) {
		name, ddl, err := buildCreateIndex("books", IndexSpec{Fields: []IndexField{
			{Field: "author", Direction: 1},
			{Field: "published_year", Direction: -1},
		}})
		require.NoError(t, err)
		assert.Equal(t, "books_author_1_published_year_-1", name)
		assert.Contains(t, ddl, "((doc->>'published_year')::int) DESC")
	})

	t.Run("unique", func(t *testing.T) {
		name, ddl, err := buildCreateIndex("books", IndexSpec{Fields: []IndexField{{Field: "title", Direction: 1}}, Unique: true})
		require.NoError(t, err)
		assert.Equal(t, "books_title_1_unique", name)
		assert.Contains(t, ddl, "CREATE UNIQUE INDEX IF NOT EXISTS")
	})

	t.Run("bad direction", func(t *testing.T) {
		_, _, err := buildCreateIndex("books", IndexSpec{Fields: []IndexField{{Field: "title", Direction: 2}}})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("no fields", func(t *testing.T) {
		_, _, err := buildCreateIndex("books", IndexSpec{})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
