// frontdeskctl inspects and exports persisted call summaries.
package main

import (
	"errors"
	"fmt"
	"os"

	"frontdesk/config"
	"frontdesk/store"
	"frontdesk/summary"

	"github.com/spf13/cobra"
)

var (
	dbPath       string
	businessPath string
)

func main() {
	root := &cobra.Command{
		Use:   "frontdeskctl",
		Short: "Inspect and export front desk call summaries",
		// subcommands open the store themselves so --help never touches the DB
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "frontdesk.db", "path to the summaries database")
	root.PersistentFlags().StringVar(&businessPath, "business", "business.json", "path to the business config")

	root.AddCommand(listCmd(), showCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openStore() (*store.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database %s not found", dbPath)
	}
	return store.Open(dbPath)
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all recorded calls, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.ListSummaries()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No calls recorded.")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%s  %-20s  %-18s  score=%d\n",
					rec.Timestamp.Format("2006-01-02 15:04"),
					shortID(rec.SessionID), rec.Outcome, rec.Lead.Score)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the full summary for one call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.GetSummary(args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no summary for session %s", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Print(summary.Render(rec))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all call summaries as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			// contact columns follow the configured field order
			business, err := config.LoadBusiness(businessPath)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if err := st.ExportCSV(out, business.ContactFieldNames()); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Fprintf(os.Stderr, "Exported to %s\n", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write CSV to file instead of stdout")
	return cmd
}
