package book

import (
	"context"
	"fmt"
	"math"
)

// Service is the catalog query layer. Each method validates its input,
// describes the request and hands it to the store in a single call.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type titleParam struct {
	Title string `validate:"required"`
}

type priceUpdate struct {
	Title string  `validate:"required"`
	Price float64 `validate:"gte=0"`
}

type pageRequest struct {
	PageSize  int `validate:"gte=1,lte=1000"`
	PageIndex int `validate:"gte=0"`
}

type insertRequest struct {
	Books []Book `validate:"required,min=1,max=1000,dive"`
}

// FindByGenre returns the books whose genre equals genre.
func (s *Service) FindByGenre(ctx context.Context, genre string) ([]Book, error) {
	return s.repo.Find(ctx, Query{
		Conditions: []Condition{{Field: "genre", Op: OpEq, Value: genre}},
	})
}

// FindPublishedAfter returns the books published strictly after year.
func (s *Service) FindPublishedAfter(ctx context.Context, year int) ([]Book, error) {
	return s.repo.Find(ctx, Query{
		Conditions: []Condition{{Field: "published_year", Op: OpGt, Value: year}},
	})
}

// FindByAuthor returns the books whose author equals author.
func (s *Service) FindByAuthor(ctx context.Context, author string) ([]Book, error) {
	return s.repo.Find(ctx, Query{
		Conditions: []Condition{{Field: "author", Op: OpEq, Value: author}},
	})
}

// FindInStockAfter returns in-stock books published strictly after year.
func (s *Service) FindInStockAfter(ctx context.Context, year int) ([]Book, error) {
	return s.repo.Find(ctx, Query{
		Conditions: []Condition{
			{Field: "in_stock", Op: OpEq, Value: true},
			{Field: "published_year", Op: OpGt, Value: year},
		},
	})
}

// UpdatePrice sets the price of the first book titled title. A missing title
// yields zero counts, not an error.
func (s *Service) UpdatePrice(ctx context.Context, title string, price float64) (UpdateResult, error) {
	if math.IsInf(price, 0) {
		return UpdateResult{}, fmt.Errorf("%w: price must be finite", ErrInvalidArgument)
	}
	if err := validateStruct(priceUpdate{Title: title, Price: price}); err != nil {
		return UpdateResult{}, err
	}
	return s.repo.UpdatePriceByTitle(ctx, title, price)
}

// DeleteByTitle removes the first book titled title.
func (s *Service) DeleteByTitle(ctx context.Context, title string) (DeleteResult, error) {
	if err := validateStruct(titleParam{Title: title}); err != nil {
		return DeleteResult{}, err
	}
	return s.repo.DeleteByTitle(ctx, title)
}

// ProjectSummary returns title, author and price of every book.
func (s *Service) ProjectSummary(ctx context.Context) ([]Summary, error) {
	return s.repo.FindSummaries(ctx, Query{
		Projection: []string{"title", "author", "price"},
	})
}

// SortByPrice returns every book ordered by price.
func (s *Service) SortByPrice(ctx context.Context, ascending bool) ([]Book, error) {
	return s.repo.Find(ctx, Query{
		Sort: []SortKey{{Field: "price", Desc: !ascending}},
	})
}

// Paginate returns page pageIndex (zero based) of pageSize books in default order.
func (s *Service) Paginate(ctx context.Context, pageSize, pageIndex int) ([]Book, error) {
	if err := validateStruct(pageRequest{PageSize: pageSize, PageIndex: pageIndex}); err != nil {
		return nil, err
	}
	if pageIndex > math.MaxInt/pageSize {
		return nil, fmt.Errorf("%w: page index out of range", ErrInvalidArgument)
	}
	return s.repo.Find(ctx, Query{
		Skip:  pageIndex * pageSize,
		Limit: pageSize,
	})
}

// AveragePriceByGenre returns one row per genre, cheapest average first.
func (s *Service) AveragePriceByGenre(ctx context.Context) ([]GenreAverage, error) {
	return s.repo.AveragePriceByGenre(ctx)
}

// AuthorWithMostBooks returns the author with the highest book count. Ties
// go to the lexicographically smallest author name.
func (s *Service) AuthorWithMostBooks(ctx context.Context) (AuthorCount, error) {
	return s.repo.TopAuthor(ctx)
}

// CountByDecade returns book counts per publication decade, oldest first.
func (s *Service) CountByDecade(ctx context.Context) ([]DecadeCount, error) {
	return s.repo.CountByDecade(ctx)
}

// EnsureIndex creates the index described by spec unless it already exists
// and returns its name.
func (s *Service) EnsureIndex(ctx context.Context, spec IndexSpec) (string, error) {
	if err := validateStruct(spec); err != nil {
		return "", err
	}
	for _, f := range spec.Fields {
		if _, err := fieldExpr(f.Field); err != nil {
			return "", err
		}
	}
	return s.repo.EnsureIndex(ctx, spec)
}

// ExplainQuery returns the store's execution statistics for q.
func (s *Service) ExplainQuery(ctx context.Context, q Query) (Explain, error) {
	if err := s.checkQuery(q); err != nil {
		return Explain{}, err
	}
	return s.repo.Explain(ctx, q)
}

// Find runs an arbitrary structured query.
func (s *Service) Find(ctx context.Context, q Query) ([]Book, error) {
	if len(q.Projection) > 0 {
		return nil, fmt.Errorf("%w: projections are only available through summaries", ErrInvalidArgument)
	}
	if err := s.checkQuery(q); err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, q)
}

// InsertBooks stores books as new documents and returns how many were written.
func (s *Service) InsertBooks(ctx context.Context, books []Book) (int64, error) {
	if err := validateStruct(insertRequest{Books: books}); err != nil {
		return 0, err
	}
	return s.repo.InsertMany(ctx, books)
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) checkQuery(q Query) error {
	if err := validateStruct(q); err != nil {
		return err
	}
	return validateQuery(q)
}
