package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/cmd/hashver/internal/incremental"
)

var statusFlags struct {
	verbose bool
	json    bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which modules changed since the last compute",
	Long: `Recomputes hashversions and compares them with the ones recorded by the
last 'hashver compute', without writing anything.

Modules are reported as new, modified (own sources or pom changed),
propagated (only dependencies or ancestors changed) or deleted.

The --json flag outputs the result as JSON for scripting.`,
	RunE: runStatus,
}

func init() {
	addHashFlags(statusCmd)
	statusCmd.Flags().BoolVar(&statusFlags.verbose, "verbose", false,
		"Show the change kind of every module")
	statusCmd.Flags().BoolVar(&statusFlags.json, "json", false,
		"Output as JSON")

	rootCmd.AddCommand(statusCmd)
}

// StatusOutput is the JSON output format for hashver status.
type StatusOutput struct {
	Stale      bool     `json:"stale"`
	Projects   []string `json:"projects"`
	New        []string `json:"new,omitempty"`
	Modified   []string `json:"modified,omitempty"`
	Propagated []string `json:"propagated,omitempty"`
	Deleted    []string `json:"deleted,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	store := incremental.NewJSONStore(s.root)
	if !store.Exists() {
		if statusFlags.json {
			return outputJSON(out, StatusOutput{
				Stale:    true,
				Projects: []string{},
				Error:    "no state found",
			})
		}
		fmt.Fprintln(out, "No state found. Run 'hashver compute' to record the current hashversions.")
		return nil
	}

	old, err := store.Load()
	if err != nil {
		return err
	}
	res, err := s.compute(cmd.Context())
	if err != nil {
		return err
	}
	cs := old.Diff(incremental.FromResult(res))

	if statusFlags.json {
		return outputJSON(out, StatusOutput{
			Stale:      !cs.IsEmpty(),
			Projects:   cs.AsProjects(),
			New:        cs.Added,
			Modified:   cs.Modified,
			Propagated: cs.Propagated,
			Deleted:    cs.Deleted,
		})
	}

	if cs.IsEmpty() {
		fmt.Fprintln(out, "Hashversions are up to date")
		return nil
	}

	affected := cs.Affected()
	fmt.Fprintf(out, "Changed modules (%d):\n", len(affected))
	for _, m := range affected {
		fmt.Fprintf(out, "  %s\n", m)
	}

	if statusFlags.verbose {
		printKeys(out, "New", "+", cs.Added)
		printKeys(out, "Modified", "~", cs.Modified)
		printKeys(out, "Propagated", ">", cs.Propagated)
		printKeys(out, "Deleted", "-", cs.Deleted)
	}

	fmt.Fprintln(out, "\nRun 'hashver compute' to record the new hashversions")
	return nil
}

func printKeys(w io.Writer, title, mark string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(keys))
	for _, k := range keys {
		fmt.Fprintf(w, "  %s %s\n", mark, k)
	}
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
