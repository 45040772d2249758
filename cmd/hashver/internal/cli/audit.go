package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/cmd/hashver/internal/audit"
	"github.com/albertocavalcante/hashver/internal/log"
	"github.com/albertocavalcante/hashver/pkg/config"
)

var auditFlags struct {
	modules []string
	json    bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check that module versions use hashversion properties",
	Long: `Reads every module pom.xml and reports versions that are not the
hashversion property expression: the project <version>, the <parent>
<version> and the <version> of dependencies on other project modules must
be ${artifactId.version} (or ${groupId.artifactId.version} with
--include-group-id).

Exits with an error when anything is reported.`,
	RunE: runAudit,
}

func init() {
	addHashFlags(auditCmd)
	auditCmd.Flags().StringSliceVar(&auditFlags.modules, "select", nil,
		"Only audit modules matching these groupId:artifactId globs")
	auditCmd.Flags().BoolVar(&auditFlags.json, "json", false,
		"Output findings as JSON")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	modules, err := s.selectModules(auditFlags.modules)
	if err != nil {
		return err
	}

	a := &audit.Auditor{
		IncludeGroupID: config.IsTrue(s.cfg.HashVer.IncludeGroupID),
		Logger:         log.Component("audit"),
	}
	findings, err := a.Audit(modules)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if auditFlags.json {
		if findings == nil {
			findings = []audit.Finding{}
		}
		if err := outputJSON(out, findings); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			fmt.Fprintln(out, f)
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("%d versions do not use hashversion properties", len(findings))
	}
	if !auditFlags.json {
		fmt.Fprintf(out, "hashver: %d modules audited, no findings\n", len(modules))
	}
	return nil
}
