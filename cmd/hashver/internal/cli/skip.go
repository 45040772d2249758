package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/pkg/hashver"
	"github.com/albertocavalcante/hashver/pkg/maven"
	"github.com/albertocavalcante/hashver/pkg/output"
)

var skipFlags struct {
	methods  string
	modules  []string
	write    bool
	declared bool
}

var skipCmd = &cobra.Command{
	Use:   "skip-existing",
	Short: "List modules whose artifact does not exist yet",
	Long: `Computes the module hashversions, probes every module artifact under its
hashversion with the configured existence methods and prints the modules
that still need building as a Maven --projects value.

With --declared-versions the artifacts are probed under the versions the
project graph declares instead.

Methods (existence.methods, comma separated, tried in order):

  resolve    use the local repository copy, or download the artifact from
             the module repositories into the local repository
  local      look in the local repository only
  httpHead   send HEAD requests to the module repositories

Modules with pom packaging are always built. Probe failures count as
"not found" and are logged as warnings.`,
	RunE: runSkipExisting,
}

func init() {
	skipCmd.Flags().StringVar(&skipFlags.methods, "methods", "",
		"Existence check methods (overrides existence.methods)")
	skipCmd.Flags().StringSliceVar(&skipFlags.modules, "select", nil,
		"Only consider modules matching these groupId:artifactId globs")
	skipCmd.Flags().BoolVar(&skipFlags.write, "write", false,
		"Also write the list to target/hashver-projects-to-build")
	skipCmd.Flags().BoolVar(&skipFlags.declared, "declared-versions", false,
		"Probe the declared module versions instead of the hashversions")

	rootCmd.AddCommand(skipCmd)
}

func runSkipExisting(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	if skipFlags.methods != "" {
		s.cfg.Existence.Methods = skipFlags.methods
	}

	p, err := s.prober()
	if err != nil {
		return err
	}
	modules, err := s.selectModules(skipFlags.modules)
	if err != nil {
		return err
	}

	if !skipFlags.declared {
		res, err := s.compute(cmd.Context())
		if err != nil {
			return err
		}
		if modules, err = withHashVersions(modules, res); err != nil {
			return err
		}
	}

	remaining, err := p.Filter(cmd.Context(), modules)
	if err != nil {
		return err
	}

	ids := make([]string, len(remaining))
	for i, m := range remaining {
		ids[i] = m.ArtifactID
	}
	list := output.FormatProjectList(ids)

	if skipFlags.write {
		if err := output.WriteFile(s.outputPath(output.ProjectsToBuildFile), list); err != nil {
			return err
		}
	}
	s.logger.Info("modules to build", "count", len(remaining), "skipped", len(modules)-len(remaining))
	fmt.Fprintln(cmd.OutOrStdout(), list)
	return nil
}

// withHashVersions returns copies of modules whose version is the computed
// hashversion.
func withHashVersions(modules []*maven.Module, res *hashver.Result) ([]*maven.Module, error) {
	versions := make(map[string]string, len(res.Modules))
	for _, mv := range res.Modules {
		versions[mv.Module.Key()] = mv.HashVersion
	}

	out := make([]*maven.Module, len(modules))
	for i, m := range modules {
		hv, ok := versions[m.Key()]
		if !ok {
			return nil, fmt.Errorf("%w: no hashversion for module %s", hashver.ErrInternal, m.Key())
		}
		c := *m
		c.Version = hv
		out[i] = &c
	}
	return out, nil
}
