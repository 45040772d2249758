package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/cmd/hashver/internal/incremental"
	"github.com/albertocavalcante/hashver/cmd/hashver/internal/watch"
)

var watchFlags struct {
	verbose bool
	json    bool
	noColor bool
	write   bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute hashversions when project sources change",
	Long: `Watches the project for changes and recomputes hashversions after every
burst of edits, reporting the modules whose hashversion changed.

Example output:

  $ hashver watch

  hashver: watching 12 modules in /path/to/project
  hashver: ready

  [14:32:15] core/src/main/java/Foo.java changed, recomputing...
  [14:32:15] ~ core.version = Xb3f.Q9a1
  [14:32:15] ~ web.version = Xb3f.Z0c4

Paths matching watch.ignore globs are not watched. With --write the
property and JSON files are rewritten after every recomputation.

Press Ctrl+C to stop watching.`,
	RunE: runWatch,
}

func init() {
	addHashFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 0,
		"Debounce window (overrides watch.debounce)")
	watchCmd.Flags().BoolVar(&watchFlags.verbose, "verbose", false,
		"Show file-level changes")
	watchCmd.Flags().BoolVar(&watchFlags.json, "json", false,
		"Stream JSON events (for tooling integration)")
	watchCmd.Flags().BoolVar(&watchFlags.noColor, "no-color", false,
		"Disable colored output")
	watchCmd.Flags().BoolVar(&watchFlags.write, "write", false,
		"Write output files after every recomputation")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	debounce := s.cfg.Watch.Debounce
	if cmd.Flags().Changed("debounce") {
		debounce, err = cmd.Flags().GetDuration("debounce")
		if err != nil {
			return err
		}
	}

	// Include SIGHUP to handle terminal hangup
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	w, err := watch.New(watch.Config{
		Root:      s.root,
		Debounce:  debounce,
		Ignore:    s.cfg.Watch.Ignore,
		Verbose:   watchFlags.verbose,
		NoColor:   watchFlags.noColor,
		JSON:      watchFlags.json,
		Writer:    cmd.OutOrStdout(),
		Recompute: s.recomputeFunc(watchFlags.write),
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Run(ctx)
}

// recomputeFunc reloads the project graph and recomputes hashversions,
// optionally writing outputs and recording state.
func (s *session) recomputeFunc(write bool) watch.RecomputeFunc {
	return func(ctx context.Context) (map[string]string, error) {
		if err := s.reloadGraph(); err != nil {
			return nil, err
		}
		res, err := s.compute(ctx)
		if err != nil {
			return nil, err
		}
		if write {
			if err := s.writeVersions(res, false); err != nil {
				return nil, err
			}
			if err := incremental.NewJSONStore(s.root).Save(incremental.FromResult(res)); err != nil {
				s.logger.Warn("failed to record state", "error", err)
			}
		}
		return res.Versions, nil
	}
}
