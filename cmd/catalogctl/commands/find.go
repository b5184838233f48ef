package commands

import (
	"fmt"
	"strings"

	"bookcatalog/internal/book"

	"github.com/spf13/cobra"
)

// find genre|author|published-after|in-stock-after <value>
func findCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find books matching a single criterion",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "genre <genre>",
			Short: "Books whose genre equals <genre>",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				books, err := a.service.FindByGenre(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(books)
			},
		},
		&cobra.Command{
			Use:   "author <author>",
			Short: "Books whose author equals <author>",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				books, err := a.service.FindByAuthor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(books)
			},
		},
		&cobra.Command{
			Use:   "published-after <year>",
			Short: "Books published strictly after <year>",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				year, err := book.ParseYear(args[0])
				if err != nil {
					return err
				}
				books, err := a.service.FindPublishedAfter(cmd.Context(), year)
				if err != nil {
					return err
				}
				return a.print(books)
			},
		},
		&cobra.Command{
			Use:   "in-stock-after <year>",
			Short: "In stock books published strictly after <year>",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				year, err := book.ParseYear(args[0])
				if err != nil {
					return err
				}
				books, err := a.service.FindInStockAfter(cmd.Context(), year)
				if err != nil {
					return err
				}
				return a.print(books)
			},
		},
	)
	return cmd
}

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Title, author and price of every book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.service.ProjectSummary(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(rows)
		},
	}
}

func byPriceCmd(a *app) *cobra.Command {
	var desc bool
	cmd := &cobra.Command{
		Use:   "by-price",
		Short: "All books sorted by price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.service.SortByPrice(cmd.Context(), !desc)
			if err != nil {
				return err
			}
			return a.print(books)
		},
	}
	cmd.Flags().BoolVar(&desc, "desc", false, "sort from most to least expensive")
	return cmd
}

func pageCmd(a *app) *cobra.Command {
	var size, index int
	cmd := &cobra.Command{
		Use:   "page",
		Short: "One page of the catalog in default order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.service.Paginate(cmd.Context(), size, index)
			if err != nil {
				return err
			}
			return a.print(books)
		},
	}
	cmd.Flags().IntVar(&size, "size", 5, "books per page")
	cmd.Flags().IntVar(&index, "index", 0, "zero based page index")
	return cmd
}

func explainCmd(a *app) *cobra.Command {
	var where []string
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Execution statistics for a filtered find",
		Long: "Runs the find under EXPLAIN ANALYZE. Conditions are given as\n" +
			"--where field:op:value with op one of eq, gt, gte, lt, lte.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseWhere(where)
			if err != nil {
				return err
			}
			stats, err := a.service.ExplainQuery(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.print(map[string]any{
				"index_used": stats.UsesIndex(),
				"stats":      stats,
			})
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "condition as field:op:value (repeatable)")
	return cmd
}

func parseWhere(where []string) (book.Query, error) {
	var q book.Query
	for _, w := range where {
		parts := strings.SplitN(w, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return book.Query{}, fmt.Errorf("%w: condition %q is not field:op:value", book.ErrInvalidArgument, w)
		}
		q.Conditions = append(q.Conditions, book.Condition{
			Field: parts[0],
			Op:    book.Op(parts[1]),
			Value: parts[2],
		})
	}
	return q, nil
}
