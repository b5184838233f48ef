package commands

import (
	"bytes"
	"context"
	"testing"

	"bookcatalog/internal/book"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, repo book.Repository, args ...string) (string, connConfig, error) {
	t.Helper()
	var got connConfig
	open := func(ctx context.Context, cfg connConfig) (*book.Service, func(), error) {
		got = cfg
		return book.NewService(repo), func() {}, nil
	}
	var out bytes.Buffer
	root := newRootCmd(open, &out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--dsn", "postgres://test"}, args...))
	err := root.Execute()
	return out.String(), got, err
}

func TestFindGenre(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := book.NewMockRepository(ctrl)
	repo.EXPECT().Find(gomock.Any(), book.Query{
		Conditions: []book.Condition{{Field: "genre", Op: book.OpEq, Value: "Fantasy"}},
	}).Return([]book.Book{{ID: 5, Title: "The Hobbit", Genre: "Fantasy"}}, nil)

	out, cfg, err := runCLI(t, repo, "find", "genre", "Fantasy")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "The Hobbit"`)
	assert.Equal(t, "postgres://test", cfg.DSN)
	assert.Equal(t, "books", cfg.Table)
}

func TestFindPublishedAfter_RejectsBadYear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, _, err := runCLI(t, book.NewMockRepository(ctrl), "find", "published-after", "soon")
	assert.ErrorIs(t, err, book.ErrInvalidArgument)
}

func TestUpdatePrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := book.NewMockRepository(ctrl)
	repo.EXPECT().UpdatePriceByTitle(gomock.Any(), "1984", 12.99).Return(book.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	out, _, err := runCLI(t, repo, "update-price", "1984", "12.99")
	require.NoError(t, err)
	assert.Contains(t, out, `"matchedCount": 1`)

	_, _, err = runCLI(t, repo, "update-price", "1984", "cheap")
	assert.ErrorIs(t, err, book.ErrInvalidArgument)
}

func TestPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := book.NewMockRepository(ctrl)
	repo.EXPECT().Find(gomock.Any(), book.Query{Skip: 10, Limit: 5}).Return([]book.Book{}, nil)

	out, _, err := runCLI(t, repo, "page", "--size", "5", "--index", "2")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestEnsureIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := book.NewMockRepository(ctrl)
	repo.EXPECT().EnsureIndex(gomock.Any(), book.IndexSpec{
		Fields: []book.IndexField{{Field: "author", Direction: 1}, {Field: "published_year", Direction: -1}},
	}).Return("books_author_1_published_year_-1", nil)

	out, _, err := runCLI(t, repo, "ensure-index", "author", "published_year:-1")
	require.NoError(t, err)
	assert.Contains(t, out, "books_author_1_published_year_-1")

	_, _, err = runCLI(t, repo, "ensure-index", "title:up")
	assert.ErrorIs(t, err, book.ErrInvalidArgument)
}

func TestStatsTopAuthor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := book.NewMockRepository(ctrl)
	repo.EXPECT().TopAuthor(gomock.Any()).Return(book.AuthorCount{Author: "George Orwell", BookCount: 2}, nil)

	out, _, err := runCLI(t, repo, "stats", "top-author")
	require.NoError(t, err)
	assert.Contains(t, out, `"bookCount": 2`)
}

func TestParseWhere(t *testing.T) {
	q, err := parseWhere([]string{"title:eq:1984", "published_year:gt:1950"})
	require.NoError(t, err)
	assert.Equal(t, []book.Condition{
		{Field: "title", Op: book.OpEq, Value: "1984"},
		{Field: "published_year", Op: book.OpGt, Value: "1950"},
	}, q.Conditions)

	_, err = parseWhere([]string{"title=1984"})
	assert.ErrorIs(t, err, book.ErrInvalidArgument)
}
