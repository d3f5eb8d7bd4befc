package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/trusttrade/trusttrade/pkg/config"
	"github.com/trusttrade/trusttrade/pkg/db"
	"github.com/trusttrade/trusttrade/pkg/db/fs"
	"github.com/trusttrade/trusttrade/pkg/text"
)

var interestsCmd = &cobra.Command{
	Use:   "interests",
	Short: "List the assets whose sellers you have contacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flags.ConfigFile)
		if err != nil {
			return err
		}

		store, err := fs.New(cfg.InterestsFile)
		if err != nil {
			return err
		}
		list, err := store.ListAll()
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", store.StoragePath(), err)
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "You have not contacted any sellers yet.")
			return nil
		}
		fmt.Fprintln(out, interestTable(list))
		return nil
	},
}

func interestTable(list []db.Interest) string {
	rows := make([][]string, 0, len(list))
	for _, in := range list {
		rows = append(rows, []string{
			in.AssetID.String(),
			text.TruncateWithTail(in.Title, 40, text.Ellipsis),
			in.Seller,
			in.At.Local().Format("2006-01-02 15:04"),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ASSET", "TITLE", "SELLER", "CONTACTED").
		Rows(rows...).
		String()
}

func init() {
	root.AddCommand(interestsCmd)
}
