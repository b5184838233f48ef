package commands

import "github.com/spf13/cobra"

func statsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Catalog aggregations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "avg-price",
			Short: "Average price per genre, cheapest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rows, err := a.service.AveragePriceByGenre(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(rows)
			},
		},
		&cobra.Command{
			Use:   "top-author",
			Short: "Author with the most books",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				top, err := a.service.AuthorWithMostBooks(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(top)
			},
		},
		&cobra.Command{
			Use:   "decades",
			Short: "Book count per publication decade",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rows, err := a.service.CountByDecade(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(rows)
			},
		},
	)
	return cmd
}
