// Root command and shared setup for the trackgraph CLI.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biotrk/trackgraph/trackstore"
)

// Version is the CLI version reported by --version.
const Version = "0.1.0"

var (
	// flagDB is set by the --db flag; empty means "use the config file".
	flagDB string

	// store is opened by PersistentPreRunE and shared by all subcommands.
	store *trackstore.Store
)

var rootCmd = &cobra.Command{
	Use:     "trackgraph",
	Short:   "trackgraph inspects cell-tracking lineage databases",
	Version: Version,
	Long: `trackgraph is an operator tool for lineage databases produced by the
trackstore package. It can report summary statistics, verify structural
consistency, and shift a whole experiment along the time axis.`,
	SilenceUsage:       true,
	PersistentPreRunE:  openDatabase,
	PersistentPostRunE: closeDatabase,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the lineage database (default: from .trackgraph.yaml)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(shiftCmd)
}

// openDatabase resolves the database path and opens the store.
func openDatabase(cmd *cobra.Command, args []string) error {
	path, err := resolveDatabasePath(flagDB)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New("no database given: pass --db or set database in .trackgraph.yaml")
	}

	store, err = trackstore.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	return nil
}

// closeDatabase releases the store opened by openDatabase.
func closeDatabase(cmd *cobra.Command, args []string) error {
	if store == nil {
		return nil
	}

	return store.Close()
}
