package commands

import (
	"fmt"
	"strconv"
	"strings"

	"bookcatalog/internal/book"

	"github.com/spf13/cobra"
)

func updatePriceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-price <title> <price>",
		Short: "Set the price of the first book with <title>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("%w: price %q is not a number", book.ErrInvalidArgument, args[1])
			}
			res, err := a.service.UpdatePrice(cmd.Context(), args[0], price)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <title>",
		Short: "Delete the first book with <title>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.service.DeleteByTitle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
}

// ensure-index title author:1 published_year:-1 [--unique]
func ensureIndexCmd(a *app) *cobra.Command {
	var unique bool
	cmd := &cobra.Command{
		Use:   "ensure-index <field[:1|-1]>...",
		Short: "Create an index over document fields if it does not exist",
		Args:  cobra.RangeArgs(1, 8),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := book.IndexSpec{Unique: unique}
			for _, arg := range args {
				field, err := parseIndexField(arg)
				if err != nil {
					return err
				}
				spec.Fields = append(spec.Fields, field)
			}
			name, err := a.service.EnsureIndex(cmd.Context(), spec)
			if err != nil {
				return err
			}
			return a.print(map[string]string{"name": name})
		},
	}
	cmd.Flags().BoolVar(&unique, "unique", false, "reject duplicate keys")
	return cmd
}

func parseIndexField(arg string) (book.IndexField, error) {
	field, dir, found := strings.Cut(arg, ":")
	if !found {
		return book.IndexField{Field: field, Direction: 1}, nil
	}
	n, err := strconv.Atoi(dir)
	if err != nil {
		return book.IndexField{}, fmt.Errorf("%w: direction %q must be 1 or -1", book.ErrInvalidArgument, dir)
	}
	return book.IndexField{Field: field, Direction: n}, nil
}
