package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"admindash/internal/client"
	"admindash/internal/model"
)

func newProductsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Manage the product catalogue",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.open(); err != nil {
				return err
			}
			return rt.requireUser(cmd.Context())
		},
	}

	cmd.AddCommand(
		newProductsListCmd(rt),
		newProductsGetCmd(rt),
		newProductsCreateCmd(rt),
		newProductsDeleteCmd(rt),
	)
	return cmd
}

func newProductsListCmd(rt *runtime) *cobra.Command {
	var q client.ProductQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := rt.api.ListProducts(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printProducts(out, page.Products)
			fmt.Fprintf(out, "page %d/%d, %d total\n",
				page.Pagination.Page, page.Pagination.Pages, page.Pagination.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 10, "items per page (max 100)")
	cmd.Flags().StringVar(&q.Search, "search", "", "match name or description")
	cmd.Flags().StringVar(&q.Category, "category", "", "filter by category")
	return cmd
}

func newProductsGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rt.api.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), []model.Product{*p})
			if p.Description != "" {
				fmt.Fprintln(cmd.OutOrStdout(), p.Description)
			}
			return nil
		},
	}
}

func newProductsCreateCmd(rt *runtime) *cobra.Command {
	var (
		in    client.NewProduct
		price string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q", price)
			}
			in.Price = p

			created, err := rt.api.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created product %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "product name")
	cmd.Flags().StringVar(&in.Description, "description", "", "product description")
	cmd.Flags().StringVar(&price, "price", "", "price, e.g. 19.99")
	cmd.Flags().StringVar(&in.Category, "category", "", "category")
	cmd.Flags().IntVar(&in.Stock, "stock", 0, "units in stock")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductsDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.api.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
			return nil
		},
	}
}

func printProducts(w io.Writer, products []model.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock)
	}
	tw.Flush()
}
