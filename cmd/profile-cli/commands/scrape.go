package commands

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

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

type Config struct {
	Provider fetch.ProviderConfig `json:"provider"`
	Fetch    fetch.Config         `json:"fetch"`
}

var scrapeDb *string
var scrapeConfig *string

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "profiles.db", "The database to write scrape results to.")
	scrapeConfig = scrapeCmd.Flags().String("config", "config.json5", "The provider/retry config file.")
	rootCmd.AddCommand(scrapeCmd)
}

func createService(configPath, dbPath string) profile.Service {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	var scraper fetch.Scraper
	if cfg.Provider.ApiKey == "" {
		slog.Info("no provider api key configured, fetching pages directly")
		direct, err := fetch.NewDirectScraper()
		if err != nil {
			serviceutil.Fatal("failed to initialize direct scraper", err)
		}
		scraper = direct
	} else {
		scraper = fetch.NewProviderClient(cfg.Provider)
	}

	database, err := sqliteutil.OpenDB(db.Schema, dbPath)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}

	return profile.NewService(fetch.New(scraper, cfg.Fetch), database)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url> [--db <path/to/profiles.db>] [--config <path/to/config.json5>]",
	Short: "Scrapes one agent profile page and upserts the extracted record.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service := createService(*scrapeConfig, *scrapeDb)

		t1 := time.Now()
		result, err := service.Scrape(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to scrape profile", err)
		}
		slog.Info("scraping time", "seconds", time.Since(t1).Seconds())

		t := newTable()
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRows([]table.Row{
			{"Source URL", result.Overrides.SourceUrl},
			{"Website slug", result.Overrides.WebsiteSlug},
			{"Full name", result.Overrides.FullName},
			{"Email", result.Overrides.Email},
			{"Mobile phone", result.Overrides.MobilePhone},
			{"Office phone", result.Overrides.OfficePhone},
			{"All phones", strings.Join(result.Overrides.AllPhones, ", ")},
			{"Headshot", result.Overrides.HeadshotUrl},
			{"Personal logo", result.Overrides.PersonalLogoUrl},
			{"Brokerage logo", result.Overrides.BrokerageLogoUrl},
			{"Biography", truncate(result.Overrides.Biography, 80)},
			{"Biography source", result.Overrides.BiographySource},
			{"Office name", result.Overrides.OfficeName},
			{"Office address", result.Overrides.OfficeAddress},
			{"Succeeded", fmt.Sprint(result.Profile.Succeeded)},
		})
		for platform, link := range result.Overrides.SocialLinks {
			if link != "" {
				t.AppendRow(table.Row{"Social: " + platform, link})
			}
		}
		t.Render()

		for _, warning := range result.Warnings {
			slog.Warn(warning)
		}
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
