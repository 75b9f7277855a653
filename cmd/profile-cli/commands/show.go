package commands

import (
	"fmt"
	"strings"

	"agentsite-backend/lib/serviceutil"
	"agentsite-backend/lib/sqliteutil"
	"agentsite-backend/services/profile/db"
	"agentsite-backend/services/profile/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var showDb *string

func init() {
	showDb = showCmd.Flags().String("db", "profiles.db", "The database to read from.")
	rootCmd.AddCommand(showCmd)
}

func openStore(dbPath string) store.Store {
	database, err := sqliteutil.OpenDB(db.Schema, dbPath)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return store.New(database)
}

var showCmd = &cobra.Command{
	Use:   "show <url> [--db <path/to/profiles.db>]",
	Short: "Prints the stored record for one source url.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		profiles := openStore(*showDb)

		record, err := profiles.GetBySourceUrl(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("failed to read record", err)
		}
		if record == nil {
			serviceutil.Fatal("no record stored for url", fmt.Errorf("%s", args[0]))
		}

		t := newTable()
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRows([]table.Row{
			{"Source URL", record.SourceUrl},
			{"Website slug", record.WebsiteSlug},
			{"Published", fmt.Sprint(record.WebsitePublished)},
			{"Full name", record.FullName},
			{"Email", record.Email},
			{"Mobile phone", record.MobilePhone},
			{"Office phone", record.OfficePhone},
			{"All phones", strings.Join(record.AllPhones, ", ")},
			{"Headshot", record.HeadshotUrl},
			{"Personal logo", record.PersonalLogoUrl},
			{"Brokerage logo", record.BrokerageLogoUrl},
			{"Biography", truncate(record.Biography, 80)},
			{"Biography source", record.BiographySource},
			{"Office name", record.OfficeName},
			{"Office address", record.OfficeAddress},
		})
		for platform, link := range record.SocialLinks {
			if link != "" {
				t.AppendRow(table.Row{"Social: " + platform, link})
			}
		}
		t.Render()
	},
}
