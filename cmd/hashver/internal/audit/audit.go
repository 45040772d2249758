// Package audit checks that reactor descriptors take their versions from
// hashversion properties, so a build run with the computed properties
// produces artifacts under their hashversions.
package audit

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

// Finding is a version that is not the expected property expression.
type Finding struct {
	Module string `json:"module"`
	File   string `json:"file"`
	// Field is "version", "parent.version" or "dependency <g:a>".
	Field string `json:"field"`
	Value string `json:"value"`
	Want  string `json:"want"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s is %q, want %q (%s)", f.Module, f.Field, f.Value, f.Want, f.File)
}

// VersionExpr returns the property expression a module's version must use:
// ${artifactId.version}, or ${groupId.artifactId.version} when
// includeGroupID is set.
func VersionExpr(groupID, artifactID string, includeGroupID bool) string {
	if includeGroupID {
		return "${" + groupID + "." + artifactID + ".version}"
	}
	return "${" + artifactID + ".version}"
}

// Auditor checks module descriptors.
type Auditor struct {
	IncludeGroupID bool
	Logger         *slog.Logger
}

// Audit reads the descriptor of every module and returns the findings
// sorted by module and field. The project version and the parent version
// are always checked; dependency versions are checked only for
// dependencies on other reactor modules.
func (a *Auditor) Audit(modules []*maven.Module) ([]Finding, error) {
	reactor := make(map[string]bool, len(modules))
	for _, m := range modules {
		reactor[m.GroupArtifact()] = true
	}

	var findings []Finding
	for _, m := range modules {
		pom, err := maven.ReadPOM(m.Descriptor())
		if err != nil {
			return nil, fmt.Errorf("failed to audit module %s: %w", m.Key(), err)
		}
		findings = append(findings, a.auditPOM(m, pom, reactor)...)
	}

	slices.SortFunc(findings, func(x, y Finding) int {
		if c := strings.Compare(x.Module, y.Module); c != 0 {
			return c
		}
		return strings.Compare(x.Field, y.Field)
	})

	if a.Logger != nil {
		for _, f := range findings {
			a.Logger.Debug("version is not a hashversion property", "module", f.Module,
				"field", f.Field, "value", f.Value, "want", f.Want, "file", f.File)
		}
	}
	return findings, nil
}

func (a *Auditor) auditPOM(m *maven.Module, pom *maven.POM, reactor map[string]bool) []Finding {
	var findings []Finding
	check := func(field, value, want string) {
		if value != want {
			findings = append(findings, Finding{
				Module: m.ArtifactID,
				File:   m.Descriptor(),
				Field:  field,
				Value:  value,
				Want:   want,
			})
		}
	}

	check("version", pom.Version, VersionExpr(m.GroupID, m.ArtifactID, a.IncludeGroupID))

	if p := pom.Parent; p != nil {
		check("parent.version", p.Version, VersionExpr(p.GroupID, p.ArtifactID, a.IncludeGroupID))
	}

	for _, d := range pom.Dependencies {
		groupID := d.GroupID
		if groupID == "${project.groupId}" {
			groupID = pom.EffectiveGroupID()
		}
		if !reactor[groupID+":"+d.ArtifactID] {
			continue
		}
		check("dependency "+groupID+":"+d.ArtifactID, d.Version, VersionExpr(groupID, d.ArtifactID, a.IncludeGroupID))
	}
	return findings
}
