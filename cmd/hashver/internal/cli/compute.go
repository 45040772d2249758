package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/cmd/hashver/internal/incremental"
	"github.com/albertocavalcante/hashver/pkg/config"
	"github.com/albertocavalcante/hashver/pkg/hashver"
	"github.com/albertocavalcante/hashver/pkg/output"
)

var computeFlags struct {
	mavenConfig bool
	print       bool
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute hashversions and write them as properties and JSON",
	Long: `Computes the hashversion of every module in the project graph and writes

  target/hashversions.properties   key=value, sorted
  target/hashversions.json         {"key": "value", ...}

Keys are artifactId.version, or groupId.artifactId.version with
--include-group-id. With --maven-config the versions are also written to
.mvn/maven.config as -Dkey=value lines so every following Maven invocation
sees them.

The result is recorded in .hashver/state.json for 'hashver status'.`,
	RunE: runCompute,
}

func init() {
	addHashFlags(computeCmd)
	computeCmd.Flags().BoolVar(&computeFlags.mavenConfig, "maven-config", false,
		"Also write .mvn/maven.config")
	computeCmd.Flags().BoolVar(&computeFlags.print, "print", false,
		"Print -Dkey=value lines to stdout instead of a summary")

	rootCmd.AddCommand(computeCmd)
}

func runCompute(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	res, err := s.compute(cmd.Context())
	if err != nil {
		return err
	}

	if err := s.writeVersions(res, computeFlags.mavenConfig); err != nil {
		return err
	}

	if err := incremental.NewJSONStore(s.root).Save(incremental.FromResult(res)); err != nil {
		s.logger.Warn("failed to record state", "error", err)
	}

	out := cmd.OutOrStdout()
	if computeFlags.print {
		fmt.Fprint(out, output.FormatMavenConfig(res.Versions))
		return nil
	}
	fmt.Fprintf(out, "hashver: %d hashversions written to %s\n",
		len(res.Versions), s.outputPath(s.cfg.Output.PropertiesFile))
	return nil
}

// writeVersions writes the properties and JSON files, and maven.config
// when requested by flag or configuration.
func (s *session) writeVersions(res *hashver.Result, mavenConfig bool) error {
	if err := output.WriteFile(s.outputPath(s.cfg.Output.PropertiesFile), output.FormatProperties(res.Versions)); err != nil {
		return err
	}
	if err := output.WriteFile(s.outputPath(s.cfg.Output.JSONFile), output.FormatJSON(res.Versions)); err != nil {
		return err
	}
	if mavenConfig || config.IsTrue(s.cfg.Output.MavenConfig) {
		if err := output.WriteFile(s.path(output.MavenConfigFile), output.FormatMavenConfig(res.Versions)); err != nil {
			return err
		}
	}
	return nil
}
