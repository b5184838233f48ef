package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for the book document store.
// Every method maps onto exactly one store request.
type Repository interface {
	Find(ctx context.Context, q Query) ([]Book, error)
	FindSummaries(ctx context.Context, q Query) ([]Summary, error)
	InsertMany(ctx context.Context, books []Book) (int64, error)
	UpdatePriceByTitle(ctx context.Context, title string, price float64) (UpdateResult, error)
	DeleteByTitle(ctx context.Context, title string) (DeleteResult, error)
	AveragePriceByGenre(ctx context.Context) ([]GenreAverage, error)
	TopAuthor(ctx context.Context) (AuthorCount, error)
	CountByDecade(ctx context.Context) ([]DecadeCount, error)
	EnsureIndex(ctx context.Context, spec IndexSpec) (string, error)
	Explain(ctx context.Context, q Query) (Explain, error)
	Ping(ctx context.Context) error
}
