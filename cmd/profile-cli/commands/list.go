package commands

import (
	"time"

	"agentsite-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var listDb *string

func init() {
	listDb = listCmd.Flags().String("db", "profiles.db", "The database to read from.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--db <path/to/profiles.db>]",
	Short: "Lists every stored profile, most recently updated first.",
	Run: func(cmd *cobra.Command, args []string) {
		profiles := openStore(*listDb)

		summaries, err := profiles.List(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list records", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Source URL", "Slug", "Full name", "Email", "Updated"})
		for _, s := range summaries {
			t.AppendRow(table.Row{
				s.SourceUrl,
				s.WebsiteSlug,
				s.FullName,
				s.Email,
				time.Unix(s.UpdatedAt, 0).Format(time.ANSIC),
			})
		}
		t.Render()
	},
}
