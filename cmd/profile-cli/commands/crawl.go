package commands

import (
	"errors"
	"log/slog"

	"agentsite-backend/lib/configutil"
	"agentsite-backend/lib/serviceutil"
	"agentsite-backend/lib/sqliteutil"
	"agentsite-backend/services/profile"
	"agentsite-backend/services/profile/db"
	"agentsite-backend/services/profile/fetch"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var crawlDb *string
var crawlConfig *string

func init() {
	crawlDb = crawlCmd.Flags().String("db", "profiles.db", "The database to write crawl results to.")
	crawlConfig = crawlCmd.Flags().String("config", "config.json5", "The provider/retry config file.")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <url> [--db <path/to/profiles.db>] [--config <path/to/config.json5>]",
	Short: "Submits a provider crawl job for a site and upserts every discovered page.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config](*crawlConfig)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if cfg.Provider.ApiKey == "" {
			serviceutil.Fatal("failed to start crawl", errors.New("crawl jobs need a provider api key"))
		}
		provider := fetch.NewProviderClient(cfg.Provider)

		database, err := sqliteutil.OpenDB(db.Schema, *crawlDb)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		service := profile.NewService(fetch.New(provider, cfg.Fetch), database)

		results, err := service.ScrapeCrawl(cmd.Context(), provider, args[0])
		if err != nil {
			serviceutil.Fatal("failed to crawl site", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Source URL", "Slug", "Full name", "Succeeded", "Warnings"})
		for _, result := range results {
			t.AppendRow(table.Row{
				result.Overrides.SourceUrl,
				result.Overrides.WebsiteSlug,
				result.Overrides.FullName,
				result.Profile.Succeeded,
				len(result.Warnings),
			})
		}
		t.Render()

		slog.Info("crawl finished", "pages", len(results))
	},
}
