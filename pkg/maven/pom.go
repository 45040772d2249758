package maven

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// POM is the subset of a project descriptor read by hashver.
// Values are kept verbatim; property expressions are not interpolated.
type POM struct {
	XMLName    xml.Name   `xml:"project"`
	GroupID    string     `xml:"groupId"`
	ArtifactID string     `xml:"artifactId"`
	Version    string     `xml:"version"`
	Packaging  string     `xml:"packaging"`
	Name       string     `xml:"name"`
	Parent     *POMParent `xml:"parent"`
	Modules    []string   `xml:"modules>module"`

	Dependencies []POMDependency `xml:"dependencies>dependency"`
}

// POMDependency is a <dependency> element of a descriptor.
type POMDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// POMParent is the <parent> element of a descriptor.
type POMParent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

// ReadPOM parses the descriptor at path.
func ReadPOM(path string) (*POM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return ParsePOM(data)
}

// ParsePOM parses descriptor content.
func ParsePOM(data []byte) (*POM, error) {
	var p POM
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	p.trim()
	return &p, nil
}

func (p *POM) trim() {
	p.GroupID = strings.TrimSpace(p.GroupID)
	p.ArtifactID = strings.TrimSpace(p.ArtifactID)
	p.Version = strings.TrimSpace(p.Version)
	p.Packaging = strings.TrimSpace(p.Packaging)
	if p.Parent != nil {
		p.Parent.GroupID = strings.TrimSpace(p.Parent.GroupID)
		p.Parent.ArtifactID = strings.TrimSpace(p.Parent.ArtifactID)
		p.Parent.Version = strings.TrimSpace(p.Parent.Version)
	}
	for i := range p.Dependencies {
		d := &p.Dependencies[i]
		d.GroupID = strings.TrimSpace(d.GroupID)
		d.ArtifactID = strings.TrimSpace(d.ArtifactID)
		d.Version = strings.TrimSpace(d.Version)
		d.Scope = strings.TrimSpace(d.Scope)
	}
}

// EffectiveGroupID returns the declared groupId or the one inherited from
// the parent.
func (p *POM) EffectiveGroupID() string {
	if p.GroupID == "" && p.Parent != nil {
		return p.Parent.GroupID
	}
	return p.GroupID
}
