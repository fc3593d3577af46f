package cmd

import (
	"github.com/joho/godotenv"
	"github.com/sfbilling/sfbilling/internal/recordstore/sqlstore"
	"github.com/spf13/cobra"
)

var seedCmdFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load records into the SQL record store",
	Long: "Loads accounts, invoices, payments and usage records from a YAML file into the SQL record store.\n" +
		"The database is selected the same way as for `start` (DATABASE_URL, POSTGRES_* or a local SQLite file).\n" +
		"Records are upserted by id, so seeding the same file twice is harmless.\n\n" +
		"Example file:\n" +
		"    accounts:\n" +
		"      - id: 001000000000001AAA\n" +
		"        name: Acme Corp\n" +
		"    invoices:\n" +
		"      - id: a01000000000001AAA\n" +
		"        invoice_number: INV-0001\n" +
		"        account_id: 001000000000001AAA\n" +
		"        amount: 100\n" +
		"        status: Pending\n" +
		"        invoice_date: 2024-01-15\n",
	Args: cobra.NoArgs,
	RunE: runSeed,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "1",
	},
	// seeding works on the database directly and does not talk to a server
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

func init() {
	seedCmd.Flags().StringVarP(&seedCmdFile, "file", "f", "", "path to the YAML seed file")
	_ = seedCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	f, err := sqlstore.LoadSeedFile(appFs, seedCmdFile)
	if err != nil {
		return err
	}

	dbConn, err := openRecordDB(appFs)
	if err != nil {
		return err
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		defer sqlDB.Close()
	}

	counts, err := sqlstore.Seed(cmd.Context(), dbConn, f)
	if err != nil {
		return err
	}

	cmd.Printf(
		"Seeded %d accounts, %d invoices, %d payments and %d usage records\n",
		counts.Accounts, counts.Invoices, counts.Payments, counts.UsageRecords,
	)
	return nil
}

