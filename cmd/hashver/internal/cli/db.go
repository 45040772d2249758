package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dbFlags struct {
	dbDir      string
	stagingDir string
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the existence database",
}

var dbMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge staged markers into the existence database",
	Long: `Copies the markers staged by 'hashver projects-to-build' into the live
database. Run it after the build of the listed modules succeeded. Markers
already in the database are left untouched.`,
	RunE: runDBMerge,
}

func init() {
	dbMergeCmd.Flags().StringVar(&dbFlags.dbDir, "db-dir", "",
		"Existence database directory (overrides db.dir)")
	dbMergeCmd.Flags().StringVar(&dbFlags.stagingDir, "staging-dir", "",
		"Staging directory (overrides db.staging_dir)")

	dbCmd.AddCommand(dbMergeCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBMerge(cmd *cobra.Command, args []string) error {
	s, err := openConfigSession(cmd)
	if err != nil {
		return err
	}
	if dbFlags.dbDir != "" {
		s.cfg.DB.Dir = dbFlags.dbDir
	}
	if dbFlags.stagingDir != "" {
		s.cfg.DB.StagingDir = dbFlags.stagingDir
	}

	db, err := s.existDB()
	if err != nil {
		return err
	}
	added, err := db.Merge(s.stagingDir())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "hashver: merged %d markers into %s\n", added, db.Dir())
	return nil
}
