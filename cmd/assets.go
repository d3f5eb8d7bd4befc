package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/trusttrade/trusttrade/pkg/feed"
	"github.com/trusttrade/trusttrade/pkg/text"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"go.uber.org/zap"
)

var (
	assetFlags = struct {
		v1.Filters
		Pages int
	}{}

	assetsCmd = &cobra.Command{
		Use:   "assets",
		Short: "Print the asset listing without starting the interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := setup(ctx)
			if err != nil {
				return err
			}
			defer env.log.Sync() //nolint:errcheck

			filters := assetFlags.Filters
			if err := filters.Validate(); err != nil {
				return err
			}

			store := feed.New(env.client,
				feed.WithLogger(env.log.Named("feed")),
				feed.WithPageSize(env.cfg.PageSize))
			defer store.Close()

			store.FetchPage(ctx, filters, 1)
			st := store.State()
			for i := 1; i < assetFlags.Pages && st.Err == nil && st.HasMore; i++ {
				store.LoadMore(ctx)
				st = store.State()
			}
			if st.Err != nil {
				env.log.Error("listing failed", zap.Error(st.Err))
				return fmt.Errorf("unable to list assets: %w", st.Err)
			}

			out := cmd.OutOrStdout()
			if len(st.Items) == 0 {
				fmt.Fprintln(out, "No assets found.")
				return nil
			}
			fmt.Fprintln(out, assetTable(st.Items))

			summary := fmt.Sprintf("%d assets, page %d", len(st.Items), st.Page)
			if st.HasMore {
				summary += ", more available"
			}
			fmt.Fprintln(out, summary)
			return nil
		},
	}
)

func assetTable(assets []v1.Asset) string {
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		stock := fmt.Sprintf("%d", a.Quantity)
		if !a.InStock() {
			stock = "sold out"
		}
		trust := ""
		if a.Seller.TrustScore > 0 {
			trust = fmt.Sprintf("%.0f", a.Seller.TrustScore)
		}
		rows = append(rows, []string{
			text.TruncateWithTail(a.Title, 40, text.Ellipsis),
			text.Price(a.Price),
			a.Condition,
			a.Location,
			a.Seller.DisplayName(),
			trust,
			stock,
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TITLE", "PRICE", "CONDITION", "LOCATION", "SELLER", "TRUST", "STOCK").
		Rows(rows...).
		String()
}

func init() {
	f := assetsCmd.Flags()
	f.StringVar(&assetFlags.Search, "search", "", "free text search")
	f.StringVar(&assetFlags.Category, "category", "", "only this category")
	f.StringVar(&assetFlags.MinPrice, "min-price", "", "lowest price")
	f.StringVar(&assetFlags.MaxPrice, "max-price", "", "highest price")
	f.StringVar(&assetFlags.Condition, "condition", "", "only this condition")
	f.IntVar(&assetFlags.Pages, "pages", 1, "number of pages to load")

	root.AddCommand(assetsCmd)
}
