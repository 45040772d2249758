package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/pkg/existdb"
	"github.com/albertocavalcante/hashver/pkg/output"
)

var projectsFlags struct {
	dbDir   string
	modules []string
}

var projectsCmd = &cobra.Command{
	Use:   "projects-to-build",
	Short: "List modules whose hashversion is not in the existence database",
	Long: `Computes hashversions and looks each module up in the existence database
(db.dir). Modules that are missing are written to
target/hashver-projects-to-build in the format of Maven's --projects option:

  mvn install -pl "$(cat target/hashver-projects-to-build)" -am

A marker for every listed module is staged into target/hashver-db-additions.
After the build succeeds, merge them into the database with 'hashver db merge'.`,
	RunE: runProjectsToBuild,
}

func init() {
	addHashFlags(projectsCmd)
	projectsCmd.Flags().StringVar(&projectsFlags.dbDir, "db-dir", "",
		"Existence database directory (overrides db.dir)")
	projectsCmd.Flags().StringSliceVar(&projectsFlags.modules, "select", nil,
		"Only consider modules matching these groupId:artifactId globs")

	rootCmd.AddCommand(projectsCmd)
}

func runProjectsToBuild(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	if projectsFlags.dbDir != "" {
		s.cfg.DB.Dir = projectsFlags.dbDir
	}

	db, err := s.existDB()
	if err != nil {
		return err
	}
	staging := s.stagingDir()
	if err := existdb.CleanStaging(staging); err != nil {
		return err
	}

	res, err := s.compute(cmd.Context())
	if err != nil {
		return err
	}
	if err := s.writeVersions(res, false); err != nil {
		return err
	}

	selected, err := s.selectModules(projectsFlags.modules)
	if err != nil {
		return err
	}
	wanted := make(map[string]bool, len(selected))
	for _, m := range selected {
		wanted[m.Key()] = true
	}

	var toBuild []string
	for _, mv := range res.Modules {
		if !wanted[mv.Module.Key()] {
			continue
		}
		built, err := db.IsBuilt(mv.Module.ArtifactID, mv.HashVersion)
		if err != nil {
			return fmt.Errorf("failed to look up module %s: %w", mv.Module.Key(), err)
		}
		if built {
			s.logger.Info("already built", "module", mv.Module.Key(), "hashversion", mv.HashVersion)
			continue
		}
		toBuild = append(toBuild, mv.Module.ArtifactID)
		if _, err := db.StagePending(staging, mv.Module.ArtifactID, mv.HashVersion); err != nil {
			return fmt.Errorf("failed to stage module %s: %w", mv.Module.Key(), err)
		}
	}

	list := output.FormatProjectList(toBuild)
	path := s.outputPath(output.ProjectsToBuildFile)
	if err := output.WriteFile(path, list); err != nil {
		return err
	}

	s.logger.Info("projects to build", "projects", list, "file", path, "invocation", invocationID)
	fmt.Fprintf(cmd.OutOrStdout(), "hashver: %d of %d modules to build, saved to %s\n",
		len(toBuild), len(selected), path)
	return nil
}
